package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	fail     map[string]error
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) Exec(ctx context.Context, cmd string, args []string) error {
	f.calls = append(f.calls, strings.TrimSpace(cmd+" "+strings.Join(args, " ")))
	if cmd == "login" {
		f.loggedIn = true
	}
	return f.fail[cmd]
}

func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	lines := capturePrint(t)

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"ADDNOTE",
		"fav 12",
		"progress 3 50",
		"exit",
		"notes",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))

	require.Equal(t, []string{"login", "addnote", "fav 12", "progress 3 50"}, exec.calls)
	require.Contains(t, *lines, helpSignedOut)
	require.Contains(t, *lines, helpSignedIn)
	require.Contains(t, *lines, "ama status > ")
	require.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	lines := capturePrint(t)

	exec := &fakeExec{fail: map[string]error{
		"notes": common.ErrUnauthorized,
		"login": fmt.Errorf("demo login: %w: boom", common.ErrTransport),
		"fav":   errors.New("note 1: not found"),
	}}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("notes\nlogin\nfav 1\nquit\n"))

	require.Equal(t, []string{"notes", "login", "fav 1"}, exec.calls)
	require.Contains(t, *lines, "Sign in first (login, register or google)")
	require.Contains(t, *lines, "Network problem: demo login: transport error: boom")
	require.Contains(t, *lines, "Error: note 1: not found")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	capturePrint(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("whoami"))

	require.Equal(t, []string{"whoami"}, exec.calls)
}
