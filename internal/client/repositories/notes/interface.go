package notes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/live"
)

type Repository interface {
	// Insert stores n and returns the store-assigned id.
	Insert(ctx context.Context, n *models.Note) (string, error)
	// Update rewrites every mutable field of the note with n.ID.
	Update(ctx context.Context, n *models.Note) error
	Delete(ctx context.Context, id string) error
	// GetByID returns nil, nil when no note has the id.
	GetByID(ctx context.Context, id string) (*models.Note, error)

	SetFavorite(ctx context.Context, id string, favorite bool, updatedAt time.Time) error
	// DeleteByCategory removes every note in category and returns how many.
	DeleteByCategory(ctx context.Context, category string) (int, error)
	Categories(ctx context.Context) ([]string, error)

	WatchAll(ctx context.Context) (*live.Subscription[models.Note], error)
	WatchByCategory(ctx context.Context, category string) (*live.Subscription[models.Note], error)
	WatchFavorites(ctx context.Context) (*live.Subscription[models.Note], error)
	// WatchSearch matches q case-insensitively against title or content.
	WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Note], error)
}
