package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/live"
)

// watch re-renders a list on every change until the user presses Enter.
func (a *App) watch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("watch <notes|tasks|projects>")
	}
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}

	switch args[0] {
	case "notes":
		sub, err := svc.Notes.WatchAll(ctx)
		if err != nil {
			return err
		}
		return follow(a, sub, a.printNotes)
	case "tasks":
		sub, err := svc.Tasks.WatchAll(ctx)
		if err != nil {
			return err
		}
		return follow(a, sub, a.printTasks)
	case "projects":
		sub, err := svc.Projects.WatchAll(ctx)
		if err != nil {
			return err
		}
		return follow(a, sub, func(ps []models.Project) { a.printProjects(ctx, ps) })
	}
	return usage("watch <notes|tasks|projects>")
}

func follow[T any](a *App, sub *live.Subscription[T], render func([]T)) error {
	first, ok := <-sub.C()
	if !ok {
		return sub.Err()
	}
	render(first)
	fmt.Fprintln(a.out, "Watching for changes, press Enter to stop")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for rows := range sub.C() {
			fmt.Fprintln(a.out, "---")
			render(rows)
		}
	}()

	_, _ = a.reader.ReadString('\n')
	closeErr := sub.Close()
	<-done
	if err := sub.Err(); err != nil {
		return err
	}
	return closeErr
}
