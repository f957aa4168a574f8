// Package users persists the local session: the single on-device user row.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/client/models"
)

type Repository interface {
	// GetCurrent returns the session row, or nil when signed out.
	GetCurrent(ctx context.Context) (*models.User, error)
	// GetByEmail matches case-insensitively; nil when absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// ReplaceSession clears any existing row and stores u, atomically.
	ReplaceSession(ctx context.Context, u *models.User) (string, error)
	UpdateName(ctx context.Context, id, name string, updatedAt time.Time) error
	Clear(ctx context.Context) error
}
