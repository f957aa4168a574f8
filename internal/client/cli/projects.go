package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/client/attachments"
	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/live"
)

func (a *App) printProjects(ctx context.Context, projects []models.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(a.out, "No projects")
		return
	}
	now := a.now()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPRIORITY\tPROGRESS\tDUE")
	for _, p := range projects {
		due := "-"
		if p.DueDate != nil {
			due = ago(*p.DueDate, now)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Status, p.Priority, percent(p.Progress), due)
	}
	_ = tw.Flush()

	if a.files == nil {
		return
	}
	for _, p := range projects {
		if p.ThumbnailRef == "" {
			continue
		}
		link, err := a.files.GetURL(ctx, p.ThumbnailRef)
		if err != nil {
			a.logger.Warn(ctx, "thumbnail link failed", "project", p.ID, "error", err)
			continue
		}
		fmt.Fprintf(a.out, "%s thumbnail: %s\n", p.ID, link)
	}
}

func (a *App) listProjects(ctx context.Context, args []string) error {
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	var sub *live.Subscription[models.Project]
	if len(args) == 0 {
		sub, err = svc.Projects.WatchAll(ctx)
	} else if st, perr := models.ParseStatus(strings.Join(args, " ")); perr == nil {
		sub, err = svc.Projects.WatchByStatus(ctx, st)
	} else if pr, perr := models.ParsePriority(args[0]); perr == nil {
		sub, err = svc.Projects.WatchByPriority(ctx, pr)
	} else {
		sub, err = svc.Projects.WatchSearch(ctx, strings.Join(args, " "))
	}
	if err != nil {
		return err
	}
	projects, err := live.First(ctx, sub)
	if err != nil {
		return err
	}
	a.printProjects(ctx, projects)
	return nil
}

func (a *App) addProject(ctx context.Context) error {
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	title, err := ask(a.reader, a.out, "Title", "")
	if err != nil {
		return err
	}
	desc, err := ask(a.reader, a.out, "Description", "")
	if err != nil {
		return err
	}
	prio, err := ask(a.reader, a.out, "Priority (Low, Medium, High, Urgent)", string(models.PriorityMedium))
	if err != nil {
		return err
	}
	priority, err := models.ParsePriority(prio)
	if err != nil {
		return err
	}
	dueText, err := ask(a.reader, a.out, "Due (e.g. 2025-06-01, next friday)", "none")
	if err != nil {
		return err
	}
	due, err := parseDue(dueText, a.now())
	if err != nil {
		return err
	}

	id, err := svc.Projects.Insert(ctx, models.Project{Title: title, Description: desc, Priority: priority, DueDate: due})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Project %s added\n", id)
	return nil
}

// setProgress takes a percentage, e.g. "progress 7 40".
func (a *App) setProgress(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("progress <id> <0-100>")
	}
	pct, err := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
	if err != nil {
		return usage("progress <id> <0-100>")
	}
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	p, err := svc.Projects.UpdateProgress(ctx, args[0], pct/100)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Project %s: %s, %s\n", p.ID, percent(p.Progress), p.Status)
	return nil
}

func (a *App) setProjectStatus(ctx context.Context, args []string) error {
	st, err := models.ParseStatus(args[1])
	if err != nil {
		return err
	}
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	p, err := svc.Projects.UpdateStatus(ctx, args[0], st)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Project %s: %s, %s\n", p.ID, percent(p.Progress), p.Status)
	return nil
}

func (a *App) deleteProject(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delproject <id>")
	}
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	if err := svc.Projects.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Project %s deleted\n", args[0])
	return nil
}

// purgeProjects deletes completed projects, or those with the given status.
func (a *App) purgeProjects(ctx context.Context, args []string) error {
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	st := models.StatusCompleted
	if len(args) > 0 {
		if st, err = models.ParseStatus(strings.Join(args, " ")); err != nil {
			return err
		}
	}
	n, err := svc.Projects.DeleteByStatus(ctx, st)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %d %s projects\n", n, st)
	return nil
}

// due lists projects due before the given moment, or overdue ones.
func (a *App) due(ctx context.Context, args []string) error {
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	var sub *live.Subscription[models.Project]
	if len(args) == 0 {
		sub, err = svc.Projects.WatchOverdue(ctx)
	} else {
		var t *time.Time
		if t, err = parseDue(strings.Join(args, " "), a.now()); err != nil {
			return err
		}
		if t == nil {
			return usage("due [when]")
		}
		sub, err = svc.Projects.WatchDueBefore(ctx, *t)
	}
	if err != nil {
		return err
	}
	projects, err := live.First(ctx, sub)
	if err != nil {
		return err
	}
	a.printProjects(ctx, projects)
	return nil
}

func (a *App) thumbnail(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("thumb <project-id> <image>")
	}
	if a.files == nil {
		return attachments.ErrNotConfigured
	}
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	p, err := svc.Projects.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("project %s not found", args[0])
	}
	body, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	key, err := a.files.Upload(ctx, "thumbnails", svc.User.OwnerID, filepath.Base(args[1]), body)
	if err != nil {
		return err
	}
	p.ThumbnailRef = key
	if err := svc.Projects.Update(ctx, *p); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Thumbnail set for project %s\n", p.ID)
	return nil
}
