// Package tasks provides persistence for tasks. Listings are ordered by
// CreatedAt, newest first.
package tasks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/live"
)

type Repository interface {
	Insert(ctx context.Context, t *models.Task) (string, error)
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id string) error
	// GetByID returns nil, nil when no task has the id.
	GetByID(ctx context.Context, id string) (*models.Task, error)

	SetCompleted(ctx context.Context, id string, completed bool, updatedAt time.Time) error
	// DeleteCompleted removes every completed task and returns how many.
	DeleteCompleted(ctx context.Context) (int, error)

	WatchAll(ctx context.Context) (*live.Subscription[models.Task], error)
	WatchByCompleted(ctx context.Context, completed bool) (*live.Subscription[models.Task], error)
	WatchByProject(ctx context.Context, projectID string) (*live.Subscription[models.Task], error)
	WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Task], error)
}
