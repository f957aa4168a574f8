package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/client/repositories/notes"
	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/stretchr/testify/require"
)

func newNoteService(t *testing.T) (NoteService, *stepClock) {
	s := openStore(t)
	clk := newStepClock()
	return NewNoteService(notes.NewSQLiteRepository(s.DB, s.Tracker), clk.Now), clk
}

func TestNoteService_InsertDefaultsAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newNoteService(t)

	id, err := svc.Insert(ctx, models.Note{Title: "Groceries", Content: "milk"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Groceries", got.Title)
	require.Equal(t, "milk", got.Content)
	require.Equal(t, common.DefaultCategory, got.Category)
	require.False(t, got.CreatedAt.IsZero())
	require.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestNoteService_InsertRejectsBlankTitle(t *testing.T) {
	svc, _ := newNoteService(t)

	_, err := svc.Insert(context.Background(), models.Note{Title: "   "})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestNoteService_UpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	svc, _ := newNoteService(t)

	id, err := svc.Insert(ctx, models.Note{Title: "a"})
	require.NoError(t, err)
	orig, err := svc.Get(ctx, id)
	require.NoError(t, err)

	upd := *orig
	upd.Title = "b"
	upd.CreatedAt = orig.CreatedAt.AddDate(-1, 0, 0)
	require.NoError(t, svc.Update(ctx, upd))

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "b", got.Title)
	require.Equal(t, orig.CreatedAt, got.CreatedAt)
	require.True(t, got.UpdatedAt.After(orig.UpdatedAt))
}

func TestNoteService_UpdateMissing(t *testing.T) {
	svc, _ := newNoteService(t)

	err := svc.Update(context.Background(), models.Note{ID: "42", Title: "x"})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestNoteService_GetMissingIsNil(t *testing.T) {
	svc, _ := newNoteService(t)

	got, err := svc.Get(context.Background(), "999")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestNoteService_ToggleFavoriteTwice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newNoteService(t)

	id, err := svc.Insert(ctx, models.Note{Title: "a"})
	require.NoError(t, err)
	before, err := svc.Get(ctx, id)
	require.NoError(t, err)

	fav, err := svc.ToggleFavorite(ctx, id)
	require.NoError(t, err)
	require.True(t, fav)

	fav, err = svc.ToggleFavorite(ctx, id)
	require.NoError(t, err)
	require.False(t, fav)

	after, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.False(t, after.Favorite)
	require.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestNoteService_DeleteByCategory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newNoteService(t)

	for _, n := range []models.Note{
		{Title: "a", Category: "Work"},
		{Title: "b", Category: "Work"},
		{Title: "c", Category: "Home"},
	} {
		_, err := svc.Insert(ctx, n)
		require.NoError(t, err)
	}

	n, err := svc.DeleteByCategory(ctx, "Work")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Home"}, cats)
}
