package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/amanotes/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// errExit ends the REPL.
var errExit = errors.New("exit")

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Exec(ctx context.Context, cmd string, args []string) error
}

const (
	helpSignedOut = "Available commands: register, login, google, mode, status, help, exit"
	helpSignedIn  = `Available commands:
  notes [category] | favs | addnote | fav <id> | delnote <id> | search <text> | categories | purgecat <category> | attach <id> <file>
  tasks [pending|done] | addtask [title] | done <id> | deltask <id> | purgetasks
  projects [status] | addproject | progress <id> <0-100> | status <id> <status> | delproject <id> | purgeprojects [status] | due [when] | thumb <id> <image>
  watch <notes|tasks|projects> | mode <local|cloud> | status | whoami | logout | exit`
)

// runREPL starts a simple read–eval–print loop for the Amanotes client.
//
// It reads a line from r, parses the first token as the command, and
// dispatches to a.Exec. The loop exits on EOF or when the user types "exit"
// or "quit". Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ama %s > ", statusFn()))
		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if err := a.Exec(ctx, cmd, args); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			printlnFn(userMessage(err))
		}
	}
}

// userMessage turns an error into a short line for the terminal.
func userMessage(err error) string {
	switch {
	case errors.Is(err, errUnknownCommand):
		return err.Error()
	case errors.Is(err, common.ErrUnauthorized):
		return "Sign in first (login, register or google)"
	case errors.Is(err, common.ErrTransport):
		return "Network problem: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
