package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/live"
)

func (a *App) printTasks(tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks")
		return
	}
	now := a.now()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tTITLE\tPROJECT\tCREATED")
	for _, t := range tasks {
		done := "[ ]"
		if t.Completed {
			done = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, done, t.Title, t.ProjectID, ago(t.CreatedAt, now))
	}
	_ = tw.Flush()
}

func (a *App) listTasks(ctx context.Context, args []string) error {
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	var sub *live.Subscription[models.Task]
	switch {
	case len(args) == 0:
		sub, err = svc.Tasks.WatchAll(ctx)
	case args[0] == "pending":
		sub, err = svc.Tasks.WatchPending(ctx)
	case args[0] == "done":
		sub, err = svc.Tasks.WatchCompleted(ctx)
	case args[0] == "project" && len(args) == 2:
		sub, err = svc.Tasks.WatchByProject(ctx, args[1])
	default:
		sub, err = svc.Tasks.WatchSearch(ctx, strings.Join(args, " "))
	}
	if err != nil {
		return err
	}
	tasks, err := live.First(ctx, sub)
	if err != nil {
		return err
	}
	a.printTasks(tasks)
	return nil
}

func (a *App) addTask(ctx context.Context, args []string) error {
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	title := strings.Join(args, " ")
	if title == "" {
		if title, err = ask(a.reader, a.out, "Title", ""); err != nil {
			return err
		}
	}
	project, err := ask(a.reader, a.out, "Project ID (optional)", "")
	if err != nil {
		return err
	}

	id, err := svc.Tasks.Insert(ctx, models.Task{Title: title, ProjectID: project})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Task %s added\n", id)
	return nil
}

func (a *App) toggleTask(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("done <id>")
	}
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	done, err := svc.Tasks.ToggleCompleted(ctx, args[0])
	if err != nil {
		return err
	}
	if done {
		fmt.Fprintf(a.out, "Task %s completed\n", args[0])
	} else {
		fmt.Fprintf(a.out, "Task %s reopened\n", args[0])
	}
	return nil
}

func (a *App) deleteTask(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("deltask <id>")
	}
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	if err := svc.Tasks.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Task %s deleted\n", args[0])
	return nil
}

func (a *App) purgeTasks(ctx context.Context) error {
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	n, err := svc.Tasks.DeleteCompleted(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %d completed tasks\n", n)
	return nil
}
