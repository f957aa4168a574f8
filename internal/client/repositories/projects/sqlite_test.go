package projects

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/client/localstore"
	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/dmitrijs2005/amanotes/internal/live"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	s, err := localstore.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewSQLiteRepository(s.DB, s.Tracker)
}

func at(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func dueAt(sec int64) *time.Time {
	d := at(sec)
	return &d
}

func add(t *testing.T, r *SQLiteRepository, p models.Project) string {
	t.Helper()
	if p.Status == "" {
		p.Status = models.StatusPlanning
	}
	if p.Priority == "" {
		p.Priority = models.PriorityMedium
	}
	id, err := r.Insert(context.Background(), &p)
	require.NoError(t, err)
	return id
}

func recv(t *testing.T, sub *live.Subscription[models.Project]) []string {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "stream closed: %v", sub.Err())
		out := make([]string, len(v))
		for i, p := range v {
			out[i] = p.Title
		}
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for projects")
		return nil
	}
}

func TestInsertGetByID_RoundTrip(t *testing.T) {
	r := setupRepo(t)
	in := models.Project{
		Title:        "Launch",
		Description:  "v1 release",
		Status:       models.StatusInProgress,
		Priority:     models.PriorityHigh,
		Progress:     0.4,
		DueDate:      dueAt(5000),
		ThumbnailRef: "thumbs/launch.png",
		CreatedAt:    at(1),
		UpdatedAt:    at(2),
	}
	id := add(t, r, in)

	got, err := r.GetByID(context.Background(), id)
	require.NoError(t, err)
	in.ID = id
	assert.Equal(t, in, *got)

	noDue := add(t, r, models.Project{Title: "x", CreatedAt: at(1), UpdatedAt: at(1)})
	got, err = r.GetByID(context.Background(), noDue)
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)

	got, err = r.GetByID(context.Background(), "31337")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetProgressStatus_WritesBoth(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	id := add(t, r, models.Project{Title: "p", Progress: 0.2, CreatedAt: at(1), UpdatedAt: at(1)})

	require.NoError(t, r.SetProgressStatus(ctx, id, 1, models.StatusCompleted, at(3)))

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Progress)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, at(3), got.UpdatedAt)
	assert.Equal(t, at(1), got.CreatedAt)

	require.ErrorIs(t, r.SetProgressStatus(ctx, "0", 0.5, models.StatusOnHold, at(4)), common.ErrNotFound)
}

func TestSetProgressStatus_RejectsOutOfRange(t *testing.T) {
	r := setupRepo(t)
	id := add(t, r, models.Project{Title: "p", CreatedAt: at(1), UpdatedAt: at(1)})

	err := r.SetProgressStatus(context.Background(), id, 1.5, models.StatusCompleted, at(2))
	require.Error(t, err)
}

func TestDeleteByStatus_RemovesOnlyMatching(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	add(t, r, models.Project{Title: "done-1", Status: models.StatusCompleted, Progress: 1, CreatedAt: at(1), UpdatedAt: at(1)})
	add(t, r, models.Project{Title: "done-2", Status: models.StatusCompleted, Progress: 1, CreatedAt: at(2), UpdatedAt: at(2)})
	add(t, r, models.Project{Title: "plan", Status: models.StatusPlanning, CreatedAt: at(3), UpdatedAt: at(3)})

	n, err := r.DeleteByStatus(ctx, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := r.WatchAll(ctx)
	require.NoError(t, err)
	defer all.Close()
	assert.Equal(t, []string{"plan"}, recv(t, all))
}

func TestWatchFilters(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	add(t, r, models.Project{Title: "a", Priority: models.PriorityUrgent, DueDate: dueAt(300), CreatedAt: at(1), UpdatedAt: at(1)})
	add(t, r, models.Project{Title: "b", Status: models.StatusOnHold, DueDate: dueAt(100), CreatedAt: at(2), UpdatedAt: at(2)})
	add(t, r, models.Project{Title: "c", Priority: models.PriorityUrgent, DueDate: dueAt(900), CreatedAt: at(3), UpdatedAt: at(3)})
	add(t, r, models.Project{Title: "d", Description: "Budget review", CreatedAt: at(4), UpdatedAt: at(4)})

	urgent, err := r.WatchByPriority(ctx, models.PriorityUrgent)
	require.NoError(t, err)
	defer urgent.Close()
	assert.Equal(t, []string{"c", "a"}, recv(t, urgent))

	onHold, err := r.WatchByStatus(ctx, models.StatusOnHold)
	require.NoError(t, err)
	defer onHold.Close()
	assert.Equal(t, []string{"b"}, recv(t, onHold))

	due, err := r.WatchDueBefore(ctx, at(300))
	require.NoError(t, err)
	defer due.Close()
	assert.Equal(t, []string{"b", "a"}, recv(t, due))

	search, err := r.WatchSearch(ctx, "BUDGET")
	require.NoError(t, err)
	defer search.Close()
	assert.Equal(t, []string{"d"}, recv(t, search))
}
