package cli

import (
	"context"
	"errors"
	"fmt"
)

var errUnknownCommand = errors.New("unknown command")

// Exec runs one REPL command.
func (a *App) Exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "google":
		return a.Google(ctx)
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.Whoami(ctx)
	case "mode":
		return a.setMode(args)
	case "status":
		if len(args) == 2 {
			return a.setProjectStatus(ctx, args)
		}
		return a.Status(ctx)

	case "notes", "l", "list":
		return a.listNotes(ctx, args)
	case "favs":
		return a.listFavorites(ctx)
	case "addnote":
		return a.addNote(ctx)
	case "fav":
		return a.toggleFavorite(ctx, args)
	case "delnote":
		return a.deleteNote(ctx, args)
	case "search":
		return a.search(ctx, args)
	case "categories":
		return a.categories(ctx)
	case "purgecat":
		return a.purgeCategory(ctx, args)
	case "attach":
		return a.attach(ctx, args)

	case "tasks":
		return a.listTasks(ctx, args)
	case "addtask":
		return a.addTask(ctx, args)
	case "done":
		return a.toggleTask(ctx, args)
	case "deltask":
		return a.deleteTask(ctx, args)
	case "purgetasks":
		return a.purgeTasks(ctx)

	case "projects":
		return a.listProjects(ctx, args)
	case "addproject":
		return a.addProject(ctx)
	case "progress":
		return a.setProgress(ctx, args)
	case "delproject":
		return a.deleteProject(ctx, args)
	case "purgeprojects":
		return a.purgeProjects(ctx, args)
	case "due":
		return a.due(ctx, args)
	case "thumb":
		return a.thumbnail(ctx, args)

	case "watch":
		return a.watch(ctx, args)
	}
	return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
}

func usage(s string) error {
	return fmt.Errorf("usage: %s", s)
}
