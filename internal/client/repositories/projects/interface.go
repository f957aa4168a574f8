// Package projects provides persistence for projects.
//
// Progress and status are written together by SetProgressStatus so the
// coupling between the two fields is stored in a single write.
package projects

import (
	"context"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/live"
)

type Repository interface {
	Insert(ctx context.Context, p *models.Project) (string, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id string) error
	// GetByID returns nil, nil when no project has the id.
	GetByID(ctx context.Context, id string) (*models.Project, error)

	// SetProgressStatus stores both fields in one write.
	SetProgressStatus(ctx context.Context, id string, progress float64, status models.ProjectStatus, updatedAt time.Time) error
	DeleteByStatus(ctx context.Context, status models.ProjectStatus) (int, error)

	// WatchAll orders by UpdatedAt, newest first.
	WatchAll(ctx context.Context) (*live.Subscription[models.Project], error)
	WatchByStatus(ctx context.Context, status models.ProjectStatus) (*live.Subscription[models.Project], error)
	WatchByPriority(ctx context.Context, priority models.Priority) (*live.Subscription[models.Project], error)
	// WatchDueBefore lists projects due on or before t, earliest first.
	WatchDueBefore(ctx context.Context, t time.Time) (*live.Subscription[models.Project], error)
	// WatchSearch matches q case-insensitively against title or description.
	WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Project], error)
}
