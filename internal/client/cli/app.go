package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/client/attachments"
	"github.com/dmitrijs2005/amanotes/internal/client/config"
	"github.com/dmitrijs2005/amanotes/internal/client/demoapi"
	"github.com/dmitrijs2005/amanotes/internal/client/docstore"
	"github.com/dmitrijs2005/amanotes/internal/client/federated"
	"github.com/dmitrijs2005/amanotes/internal/client/localstore"
	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/client/monitor"
	"github.com/dmitrijs2005/amanotes/internal/client/preferences"
	"github.com/dmitrijs2005/amanotes/internal/client/repositories/profiles"
	"github.com/dmitrijs2005/amanotes/internal/client/repositories/users"
	"github.com/dmitrijs2005/amanotes/internal/client/services"
	"github.com/dmitrijs2005/amanotes/internal/client/session"
	"github.com/dmitrijs2005/amanotes/internal/filex"
	"github.com/dmitrijs2005/amanotes/internal/logging"
)

type App struct {
	config   *config.Config
	out      io.Writer
	reader   *bufio.Reader
	auth     services.AuthService
	resolver *session.Resolver
	prefs    *preferences.Store
	monitor  *monitor.Monitor
	files    *attachments.Presigner
	logger   logging.Logger
	now      func() time.Time
}

func (a *App) mode() session.Mode {
	m, err := session.ParseMode(a.config.EffectiveMode(a.prefs.GetString(preferences.KeyMode)))
	if err != nil {
		return session.ModeLocal
	}
	return m
}

// NewApp opens every store the configuration names and returns the app
// together with a cleanup func that closes them in reverse order.
func NewApp(ctx context.Context, c *config.Config) (*App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	dir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("data dir: %w", err)
	}
	c.DataDir = dir

	logger, logCloser := logging.NewFileLogger(c.LogPath(), logging.ParseLevel(c.LogLevel))
	closers = append(closers, func() { _ = logCloser.Close() })

	store, err := localstore.Open(ctx, c.DatabasePath())
	if err != nil {
		cleanup()
		if errors.Is(err, localstore.ErrLocked) {
			return nil, nil, fmt.Errorf("another client is using %s", c.DataDir)
		}
		return nil, nil, err
	}
	closers = append(closers, func() { _ = store.Close() })

	prefs, err := preferences.Open(c.PreferencesPath())
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var (
		cloud    *docstore.Client
		profRepo profiles.Repository
	)
	if c.DatabaseDSN != "" {
		conn, err := docstore.Connect(ctx, c.DatabaseDSN)
		if err != nil {
			logger.Warn(ctx, "cloud store unavailable, continuing local only", "error", err)
		} else {
			closers = append(closers, func() { _ = conn.Close() })
			cloud = conn.Client()
			profRepo = profiles.NewCloudRepository(cloud)
		}
	}

	var files *attachments.Presigner
	s3cfg := attachments.Config{
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
	}
	if s3cfg.Enabled() {
		if files, err = attachments.NewPresigner(ctx, s3cfg); err != nil {
			logger.Warn(ctx, "object storage disabled", "error", err)
		}
	}

	var mon *monitor.Monitor
	prober, err := monitor.NewHealthProber(c.ServerEndpointAddr, 3*time.Second)
	if err != nil {
		logger.Warn(ctx, "health probe disabled", "error", err)
		mon = monitor.New(nil, c.OnlineCheckInterval, logger)
	} else {
		closers = append(closers, func() { _ = prober.Close() })
		mon = monitor.New(prober, c.OnlineCheckInterval, logger)
	}

	auth := services.NewAuthService(services.AuthDeps{
		Users:       users.NewSQLiteRepository(store.DB, store.Tracker),
		Demo:        demoapi.NewClient(c.DemoAPIURL, c.DemoAPITimeout),
		Provider:    federated.NewStaticProvider(c.GoogleIDToken),
		Exchange:    federated.NewJWTExchanger([]byte(c.FederatedSecret)),
		Profiles:    profRepo,
		TokenSecret: []byte(c.TokenSecret),
		Log:         logger.With("module", "auth"),
	})

	a := &App{
		config:  c,
		out:     os.Stdout,
		reader:  bufio.NewReader(os.Stdin),
		auth:    auth,
		prefs:   prefs,
		monitor: mon,
		files:   files,
		logger:  logger,
		now:     time.Now,
	}
	a.resolver = session.NewResolver(auth, store, cloud, a.mode, nil)
	return a, cleanup, nil
}

// Run restores the saved session, starts the connectivity monitor and
// blocks in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to Amanotes (type 'help' for commands)")
	if u, err := a.auth.CurrentUser(ctx); err == nil && u != nil {
		fmt.Fprintf(a.out, "Signed in as %s\n", displayUser(u))
	}

	if a.monitor != nil {
		go func() {
			_ = a.monitor.Run(ctx)
		}()
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) getStatus() string {
	var parts []string
	if u, err := a.auth.CurrentUser(context.Background()); err == nil && u != nil {
		parts = append(parts, u.Email)
	}
	parts = append(parts, string(a.mode()))
	if a.monitor != nil && !a.monitor.IsOnline() {
		parts = append(parts, "offline")
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (a *App) isLoggedIn() bool {
	u, err := a.auth.CurrentUser(context.Background())
	return err == nil && u != nil
}

func (a *App) services(ctx context.Context) (*session.Services, error) {
	return a.resolver.Services(ctx)
}

func displayUser(u *models.User) string {
	if u.Name != "" {
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	}
	return u.Email
}
