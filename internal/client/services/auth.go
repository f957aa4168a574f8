package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/client/demoapi"
	"github.com/dmitrijs2005/amanotes/internal/client/federated"
	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/client/repositories/profiles"
	"github.com/dmitrijs2005/amanotes/internal/client/repositories/users"
	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/dmitrijs2005/amanotes/internal/cryptox"
	"github.com/dmitrijs2005/amanotes/internal/logging"
	"github.com/dmitrijs2005/amanotes/internal/tokens"
	"github.com/google/uuid"
)

const (
	DemoDisplayName = "Demo User"

	minPasswordLen = 6
	minNameLen     = 2

	defaultTokenTTL = 30 * 24 * time.Hour
)

var ErrFederationUnavailable = errors.New("google sign-in is not configured")

type SessionKind int

const (
	SignedOut SessionKind = iota
	LocalSession
	FederatedSession
)

func (k SessionKind) String() string {
	switch k {
	case LocalSession:
		return "local"
	case FederatedSession:
		return "federated"
	default:
		return "signed out"
	}
}

type Session struct {
	Kind SessionKind
	User *models.User
}

// DemoAPI is the remote account service behind the shared demo login.
type DemoAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
	FindDisplayName(ctx context.Context, email string) (string, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Signup(ctx context.Context, name, email, password string) (*models.User, error)
	SignInWithGoogle(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
	// CurrentUser returns nil when nobody is signed in.
	CurrentUser(ctx context.Context) (*models.User, error)
	// Session reports the current state. A persisted local row restores a
	// LocalSession after restart.
	Session(ctx context.Context) (Session, error)
}

type AuthDeps struct {
	Users    users.Repository
	Demo     DemoAPI
	Provider federated.Provider
	Exchange federated.Exchanger
	// Profiles may be nil when no cloud backend is configured.
	Profiles profiles.Repository

	TokenSecret []byte
	TokenTTL    time.Duration
	Now         Clock
	Log         logging.Logger
}

type authService struct {
	AuthDeps

	mu        sync.Mutex
	federated *models.User
}

func NewAuthService(d AuthDeps) AuthService {
	d.Now = clockOrDefault(d.Now)
	if d.TokenTTL == 0 {
		d.TokenTTL = defaultTokenTTL
	}
	if d.Log == nil {
		d.Log = logging.NewNopLogger()
	}
	return &authService{AuthDeps: d}
}

// OwnerIDForEmail derives the stable cloud owner id of a local account.
func OwnerIDForEmail(email string) string {
	key := "mailto:" + strings.ToLower(strings.TrimSpace(email))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, common.Validation("email and password are required")
	}
	if !models.ValidEmail(email) {
		return nil, common.Validation("email is not valid")
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if u != nil {
		return s.loginLocal(ctx, u, password)
	}

	if email == demoapi.DemoEmail && password == demoapi.DemoPassword {
		return s.loginDemo(ctx, email, password)
	}
	return nil, common.ErrUserNotFound
}

func (s *authService) loginLocal(ctx context.Context, u *models.User, password string) (*models.User, error) {
	if len(password) < minPasswordLen {
		return nil, common.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if u.PasswordHash != "" {
		ok, err := cryptox.VerifyPassword(password, u.PasswordHash, u.PasswordSalt)
		if err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
		if !ok {
			return nil, common.ErrInvalidCredentials
		}
	}

	if u.OwnerID == "" {
		u.OwnerID = OwnerIDForEmail(u.Email)
	}
	tok, err := tokens.Sign(tokens.Claims{UserID: u.OwnerID, Email: u.Email, Name: u.Name}, s.TokenSecret, s.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	u.Token = tok
	u.UpdatedAt = s.Now()

	return s.install(ctx, u)
}

func (s *authService) loginDemo(ctx context.Context, email, password string) (*models.User, error) {
	if s.Demo == nil {
		return nil, common.ErrUserNotFound
	}
	tok, err := s.Demo.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("demo login: %w", err)
	}

	name := s.lookupName(ctx, email)
	if name == "" {
		name = DemoDisplayName
	}
	now := s.Now()
	u := &models.User{
		OwnerID:   OwnerIDForEmail(email),
		Name:      name,
		Email:     email,
		Token:     tok,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.install(ctx, u)
}

func (s *authService) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)

	var errs []error
	if len([]rune(name)) < minNameLen {
		errs = append(errs, common.Validation(fmt.Sprintf("name must be at least %d characters", minNameLen)))
	}
	if !models.ValidEmail(email) {
		errs = append(errs, common.Validation("email is not valid"))
	}
	if len(password) < minPasswordLen {
		errs = append(errs, common.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLen)))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	existing, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if existing != nil {
		return nil, common.ErrUserExists
	}

	ownerID := OwnerIDForEmail(email)
	tok, err := tokens.Sign(tokens.Claims{UserID: ownerID, Email: email, Name: name}, s.TokenSecret, s.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	hash, salt := cryptox.HashPassword(password)

	now := s.Now()
	u := &models.User{
		OwnerID:      ownerID,
		Name:         name,
		Email:        email,
		Token:        tok,
		PasswordHash: hash,
		PasswordSalt: salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.install(ctx, u); err != nil {
		return nil, err
	}

	if remote := s.lookupName(ctx, email); remote != "" && remote != u.Name {
		at := s.Now()
		if err := s.Users.UpdateName(ctx, u.ID, remote, at); err != nil {
			s.Log.Warn(ctx, "display name update failed", "email", email, "error", err)
		} else {
			u.Name, u.UpdatedAt = remote, at
		}
	}
	return u, nil
}

func (s *authService) SignInWithGoogle(ctx context.Context) (*models.User, error) {
	if s.Provider == nil || s.Exchange == nil {
		return nil, ErrFederationUnavailable
	}
	acct, err := s.Provider.SignIn(ctx)
	if err != nil {
		return nil, fmt.Errorf("google sign-in: %w", err)
	}
	cred, err := s.Exchange.Exchange(ctx, acct.IDToken)
	if err != nil {
		return nil, fmt.Errorf("google sign-in: %w", err)
	}

	now := s.Now()
	u := &models.User{
		ID:        cred.UID,
		OwnerID:   cred.UID,
		Name:      firstNonEmpty(cred.Name, acct.Name),
		Email:     firstNonEmpty(cred.Email, acct.Email),
		PhotoRef:  acct.PhotoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.upsertProfile(ctx, u); err != nil {
		return nil, fmt.Errorf("google sign-in: %w", err)
	}

	s.mu.Lock()
	s.federated = u
	s.mu.Unlock()

	s.Log.Info(ctx, "federated session started", "uid", u.OwnerID)
	return u, nil
}

func (s *authService) upsertProfile(ctx context.Context, u *models.User) error {
	if s.Profiles == nil {
		return nil
	}
	cur, err := s.Profiles.FindByOwner(ctx, u.OwnerID)
	if err != nil {
		return err
	}
	if cur == nil {
		_, err = s.Profiles.Insert(ctx, u)
		return err
	}

	cur.Name = firstNonEmpty(u.Name, cur.Name)
	cur.Email = firstNonEmpty(u.Email, cur.Email)
	cur.PhotoRef = firstNonEmpty(u.PhotoRef, cur.PhotoRef)
	cur.UpdatedAt = u.UpdatedAt
	if err := s.Profiles.Update(ctx, cur); err != nil {
		return err
	}
	u.Name, u.Email, u.PhotoRef, u.CreatedAt = cur.Name, cur.Email, cur.PhotoRef, cur.CreatedAt
	return nil
}

func (s *authService) Logout(ctx context.Context) error {
	if err := s.Users.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.mu.Lock()
	s.federated = nil
	s.mu.Unlock()

	if s.Provider != nil {
		if err := s.Provider.SignOut(ctx); err != nil {
			s.Log.Warn(ctx, "provider sign-out failed", "error", err)
		}
	}
	return nil
}

func (s *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return nil, err
	}
	return sess.User, nil
}

func (s *authService) Session(ctx context.Context) (Session, error) {
	s.mu.Lock()
	fu := s.federated
	s.mu.Unlock()
	if fu != nil {
		cp := *fu
		return Session{Kind: FederatedSession, User: &cp}, nil
	}

	u, err := s.Users.GetCurrent(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("current user: %w", err)
	}
	if u == nil {
		return Session{Kind: SignedOut}, nil
	}
	return Session{Kind: LocalSession, User: u}, nil
}

func (s *authService) install(ctx context.Context, u *models.User) (*models.User, error) {
	id, err := s.Users.ReplaceSession(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("install session: %w", err)
	}
	u.ID = id

	s.mu.Lock()
	s.federated = nil
	s.mu.Unlock()

	s.Log.Info(ctx, "local session started", "user_id", id)
	return u, nil
}

// lookupName asks the demo listing for a display name. Failures are logged
// and swallowed.
func (s *authService) lookupName(ctx context.Context, email string) string {
	if s.Demo == nil {
		return ""
	}
	name, err := s.Demo.FindDisplayName(ctx, email)
	if err != nil {
		s.Log.Warn(ctx, "display name lookup failed", "email", email, "error", err)
		return ""
	}
	return name
}

func firstNonEmpty(v ...string) string {
	for _, s := range v {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
