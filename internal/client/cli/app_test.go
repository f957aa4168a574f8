package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/client/config"
	"github.com/dmitrijs2005/amanotes/internal/client/localstore"
	"github.com/dmitrijs2005/amanotes/internal/client/preferences"
	"github.com/dmitrijs2005/amanotes/internal/client/repositories/users"
	"github.com/dmitrijs2005/amanotes/internal/client/services"
	"github.com/dmitrijs2005/amanotes/internal/client/session"
	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/dmitrijs2005/amanotes/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, input string) (*App, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	store, err := localstore.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	prefs, err := preferences.Open(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)

	auth := services.NewAuthService(services.AuthDeps{
		Users:       users.NewSQLiteRepository(store.DB, store.Tracker),
		TokenSecret: []byte("k"),
	})

	var out bytes.Buffer
	a := &App{
		config: &config.Config{Mode: "local"},
		out:    &out,
		reader: rdr(input),
		auth:   auth,
		prefs:  prefs,
		logger: logging.NewNopLogger(),
		now:    func() time.Time { return testNow },
	}
	a.resolver = session.NewResolver(auth, store, nil, a.mode, nil)

	origPw := askSecret
	askSecret = func(w io.Writer, label string) ([]byte, error) { return []byte("secret1"), nil }
	t.Cleanup(func() { askSecret = origPw })
	return a, &out
}

func run(t *testing.T, a *App, out *bytes.Buffer, line string) string {
	t.Helper()
	out.Reset()
	parts := strings.Fields(line)
	require.NoError(t, a.Exec(context.Background(), parts[0], parts[1:]), line)
	return out.String()
}

func TestApp_SignedOutCommandsNeedSession(t *testing.T) {
	a, _ := newTestApp(t, "")

	err := a.Exec(context.Background(), "notes", nil)
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.Equal(t, "Sign in first (login, register or google)", userMessage(err))
	require.False(t, a.isLoggedIn())
}

func TestApp_NotesFlow(t *testing.T) {
	input := strings.Join([]string{
		"Ann", "ann@example.com", // register
		"Groceries", "Home", "milk", "eggs", "", // addnote
		"Report", "", "draft", "", // addnote
	}, "\n") + "\n"
	a, out := newTestApp(t, input)

	assert.Contains(t, run(t, a, out, "register"), "Welcome, Ann <ann@example.com>!")
	require.True(t, a.isLoggedIn())
	assert.Equal(t, "ann@example.com", a.prefs.GetString(preferences.KeyLastEmail))

	assert.Contains(t, run(t, a, out, "addnote"), "Note 1 added")
	assert.Contains(t, run(t, a, out, "addnote"), "Note 2 added")

	got := run(t, a, out, "notes")
	assert.Contains(t, got, "Groceries")
	assert.Contains(t, got, "Report")

	got = run(t, a, out, "notes Home")
	assert.Contains(t, got, "Groceries")
	assert.NotContains(t, got, "Report")

	assert.Contains(t, run(t, a, out, "fav 1"), "marked as favorite")
	got = run(t, a, out, "favs")
	assert.Contains(t, got, "Groceries")
	assert.NotContains(t, got, "Report")

	assert.Contains(t, run(t, a, out, "search MILK"), "Groceries")
	assert.Equal(t, "General\nHome\n", run(t, a, out, "categories"))
	assert.Contains(t, run(t, a, out, "purgecat Home"), "Deleted 1 notes")
	assert.Contains(t, run(t, a, out, "delnote 2"), "Note 2 deleted")
	assert.Contains(t, run(t, a, out, "notes"), "No notes")
}

func TestApp_TasksFlow(t *testing.T) {
	a, out := newTestApp(t, "Ann\nann@example.com\n\n\n")
	run(t, a, out, "register")

	assert.Contains(t, run(t, a, out, "addtask write report"), "Task 1 added")
	assert.Contains(t, run(t, a, out, "addtask call bob"), "Task 2 added")
	assert.Contains(t, run(t, a, out, "done 1"), "Task 1 completed")

	got := run(t, a, out, "tasks pending")
	assert.Contains(t, got, "call bob")
	assert.NotContains(t, got, "write report")

	assert.Contains(t, run(t, a, out, "tasks done"), "[x]")
	assert.Contains(t, run(t, a, out, "purgetasks"), "Deleted 1 completed tasks")
	assert.Contains(t, run(t, a, out, "deltask 2"), "Task 2 deleted")
	assert.Contains(t, run(t, a, out, "tasks"), "No tasks")
}

func TestApp_ProjectsFlow(t *testing.T) {
	input := strings.Join([]string{
		"Ann", "ann@example.com",
		"Launch", "site", "high", "2025-03-01",
		"Docs", "", "", "",
	}, "\n") + "\n"
	a, out := newTestApp(t, input)
	run(t, a, out, "register")

	assert.Contains(t, run(t, a, out, "addproject"), "Project 1 added")
	assert.Contains(t, run(t, a, out, "addproject"), "Project 2 added")

	got := run(t, a, out, "projects high")
	assert.Contains(t, got, "Launch")
	assert.NotContains(t, got, "Docs")

	assert.Contains(t, run(t, a, out, "progress 1 100"), "100%, Completed")
	assert.Contains(t, run(t, a, out, "status 1 in_progress"), " 95%, InProgress")
	assert.Contains(t, run(t, a, out, "progress 2 150"), "100%, Completed")

	got = run(t, a, out, "due")
	assert.Contains(t, got, "Launch")
	assert.NotContains(t, got, "Docs")

	assert.Contains(t, run(t, a, out, "purgeprojects"), "Deleted 1 Completed projects")
	got = run(t, a, out, "projects")
	assert.Contains(t, got, "Launch")
	assert.NotContains(t, got, "Docs")
}

func TestApp_ModeSwitchWithoutCloud(t *testing.T) {
	a, out := newTestApp(t, "Ann\nann@example.com\n")
	run(t, a, out, "register")

	assert.Contains(t, run(t, a, out, "mode cloud"), "Mode set to cloud")
	assert.Equal(t, session.ModeCloud, a.mode())
	assert.Contains(t, a.getStatus(), "cloud")

	err := a.Exec(context.Background(), "notes", nil)
	require.ErrorIs(t, err, session.ErrCloudUnavailable)

	run(t, a, out, "mode local")
	run(t, a, out, "notes")
}

func TestApp_WhoamiStatusLogout(t *testing.T) {
	a, out := newTestApp(t, "Ann\nann@example.com\n")
	assert.Contains(t, run(t, a, out, "whoami"), "Not signed in")

	run(t, a, out, "register")
	assert.Contains(t, run(t, a, out, "whoami"), "Ann <ann@example.com> (local session)")
	got := run(t, a, out, "status")
	assert.Contains(t, got, "session: local")
	assert.Contains(t, got, "mode:    local")

	assert.Contains(t, run(t, a, out, "logout"), "Signed out")
	require.False(t, a.isLoggedIn())
}

func TestApp_Usage(t *testing.T) {
	a, _ := newTestApp(t, "")
	ctx := context.Background()

	require.ErrorContains(t, a.Exec(ctx, "fav", nil), "usage: fav <id>")
	require.ErrorContains(t, a.Exec(ctx, "progress", []string{"1"}), "usage: progress")
	require.ErrorIs(t, a.Exec(ctx, "mode", []string{"hybrid"}), common.ErrValidation)
	require.ErrorIs(t, a.Exec(ctx, "frobnicate", nil), errUnknownCommand)
}

func TestApp_Watch(t *testing.T) {
	a, out := newTestApp(t, "Ann\nann@example.com\n\n")
	run(t, a, out, "register")

	got := run(t, a, out, "watch tasks")
	assert.Contains(t, got, "Watching for changes")
	assert.Contains(t, got, "No tasks")
}
