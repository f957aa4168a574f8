package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/amanotes/internal/client/attachments"
	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/dmitrijs2005/amanotes/internal/live"
)

func (a *App) printNotes(notes []models.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(a.out, "No notes")
		return
	}
	now := a.now()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFAV\tTITLE\tCATEGORY\tUPDATED")
	for _, n := range notes {
		fav := ""
		if n.Favorite {
			fav = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.ID, fav, n.Title, n.Category, ago(n.UpdatedAt, now))
	}
	_ = tw.Flush()
}

func (a *App) listNotes(ctx context.Context, args []string) error {
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	var sub *live.Subscription[models.Note]
	if len(args) > 0 {
		sub, err = svc.Notes.WatchByCategory(ctx, strings.Join(args, " "))
	} else {
		sub, err = svc.Notes.WatchAll(ctx)
	}
	if err != nil {
		return err
	}
	notes, err := live.First(ctx, sub)
	if err != nil {
		return err
	}
	a.printNotes(notes)
	return nil
}

func (a *App) listFavorites(ctx context.Context) error {
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	sub, err := svc.Notes.WatchFavorites(ctx)
	if err != nil {
		return err
	}
	notes, err := live.First(ctx, sub)
	if err != nil {
		return err
	}
	a.printNotes(notes)
	return nil
}

func (a *App) addNote(ctx context.Context) error {
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	title, err := ask(a.reader, a.out, "Title", "")
	if err != nil {
		return err
	}
	category, err := ask(a.reader, a.out, "Category", common.DefaultCategory)
	if err != nil {
		return err
	}
	content, err := AskText(a.reader, a.out, "Content")
	if err != nil {
		return err
	}

	id, err := svc.Notes.Insert(ctx, models.Note{Title: title, Category: category, Content: content})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Note %s added\n", id)
	return nil
}

func (a *App) toggleFavorite(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("fav <id>")
	}
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	fav, err := svc.Notes.ToggleFavorite(ctx, args[0])
	if err != nil {
		return err
	}
	if fav {
		fmt.Fprintf(a.out, "Note %s marked as favorite\n", args[0])
	} else {
		fmt.Fprintf(a.out, "Note %s removed from favorites\n", args[0])
	}
	return nil
}

func (a *App) deleteNote(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delnote <id>")
	}
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	if err := svc.Notes.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Note %s deleted\n", args[0])
	return nil
}

func (a *App) search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("search <text>")
	}
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	sub, err := svc.Notes.WatchSearch(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	notes, err := live.First(ctx, sub)
	if err != nil {
		return err
	}
	a.printNotes(notes)
	return nil
}

func (a *App) categories(ctx context.Context) error {
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	cats, err := svc.Notes.Categories(ctx)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		fmt.Fprintln(a.out, "No categories")
		return nil
	}
	for _, c := range cats {
		fmt.Fprintln(a.out, c)
	}
	return nil
}

func (a *App) purgeCategory(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("purgecat <category>")
	}
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	cat := strings.Join(args, " ")
	n, err := svc.Notes.DeleteByCategory(ctx, cat)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %d notes from %q\n", n, cat)
	return nil
}

// attach uploads a file to object storage and links it to a note.
func (a *App) attach(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("attach <note-id> <file>")
	}
	if a.files == nil {
		return attachments.ErrNotConfigured
	}
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	n, err := svc.Notes.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if n == nil {
		return fmt.Errorf("note %s not found", args[0])
	}

	body, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	key, err := a.files.Upload(ctx, "notes", svc.User.OwnerID, filepath.Base(args[1]), body)
	if err != nil {
		return err
	}
	n.AttachmentRef = key
	if err := svc.Notes.Update(ctx, *n); err != nil {
		return err
	}

	link, err := a.files.GetURL(ctx, key)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Attached %s\n%s\n", filepath.Base(args[1]), link)
	return nil
}
