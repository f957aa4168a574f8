package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/amanotes/internal/client/preferences"
	"github.com/dmitrijs2005/amanotes/internal/client/session"
	"github.com/dmitrijs2005/amanotes/internal/cryptox"
)

// Register prompts for name, email and password and creates a local account.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	name, err := ask(a.reader, a.out, "Name", "")
	if err != nil {
		return err
	}
	email, err := ask(a.reader, a.out, "Email", "")
	if err != nil {
		return err
	}
	password, err := askSecret(a.out, "Password")
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	u, err := a.auth.Signup(ctx, name, email, string(password))
	if err != nil {
		return err
	}
	a.rememberEmail(ctx, u.Email)
	fmt.Fprintf(a.out, "Welcome, %s!\n", displayUser(u))
	return nil
}

// Login prompts for credentials. The last used email is offered as default.
func (a *App) Login(ctx context.Context) error {
	email, err := ask(a.reader, a.out, "Email", a.prefs.GetString(preferences.KeyLastEmail))
	if err != nil {
		return err
	}

	password, err := askSecret(a.out, "Password")
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	u, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		a.logger.Info(ctx, "login failed", "email", email, "error", err)
		return err
	}
	a.rememberEmail(ctx, u.Email)
	fmt.Fprintf(a.out, "Signed in as %s\n", displayUser(u))
	return nil
}

func (a *App) Google(ctx context.Context) error {
	u, err := a.auth.SignInWithGoogle(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in with Google as %s\n", displayUser(u))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	sess, err := a.auth.Session(ctx)
	if err != nil {
		return err
	}
	if sess.User == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s session)\n", displayUser(sess.User), sess.Kind)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	sess, err := a.auth.Session(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "session: %s\n", sess.Kind)
	fmt.Fprintf(a.out, "mode:    %s\n", a.mode())
	if a.monitor != nil {
		st := a.monitor.State()
		fmt.Fprintf(a.out, "online:  %t\nsyncing: %t\n", st.Online, st.Syncing)
	}
	if a.files != nil {
		fmt.Fprintln(a.out, "attachments: enabled")
	}
	return nil
}

func (a *App) setMode(args []string) error {
	if len(args) != 1 {
		fmt.Fprintf(a.out, "mode: %s\n", a.mode())
		return nil
	}
	m, err := session.ParseMode(args[0])
	if err != nil {
		return err
	}
	if err := a.prefs.Set(preferences.KeyMode, string(m)); err != nil {
		return err
	}
	// a saved choice outranks the startup flag from now on
	a.config.ModeExplicit = false
	fmt.Fprintf(a.out, "Mode set to %s\n", m)
	return nil
}

func (a *App) rememberEmail(ctx context.Context, email string) {
	if err := a.prefs.Set(preferences.KeyLastEmail, email); err != nil {
		a.logger.Warn(ctx, "saving preference failed", "error", err)
	}
}

