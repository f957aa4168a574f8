package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/client/localstore"
	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/dbx"
	"github.com/dmitrijs2005/amanotes/internal/timex"
)

// SQLiteRepository needs the *sql.DB itself for the session transaction.
type SQLiteRepository struct {
	db      *sql.DB
	tracker *localstore.Tracker
}

func NewSQLiteRepository(db *sql.DB, tracker *localstore.Tracker) *SQLiteRepository {
	return &SQLiteRepository{db: db, tracker: tracker}
}

const selectUsers = `SELECT id, owner_id, name, email, photo_ref, token, password_hash, password_salt, created_at, updated_at FROM users`

func (r *SQLiteRepository) one(ctx context.Context, query string, args ...any) (*models.User, error) {
	var (
		u                models.User
		id               int64
		created, updated int64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&id, &u.OwnerID, &u.Name, &u.Email, &u.PhotoRef,
		&u.Token, &u.PasswordHash, &u.PasswordSalt, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	u.ID = strconv.FormatInt(id, 10)
	u.CreatedAt = timex.FromMillis(created)
	u.UpdatedAt = timex.FromMillis(updated)
	return &u, nil
}

func (r *SQLiteRepository) GetCurrent(ctx context.Context) (*models.User, error) {
	return r.one(ctx, selectUsers+` ORDER BY id LIMIT 1`)
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.one(ctx, selectUsers+` WHERE email = ? COLLATE NOCASE ORDER BY id LIMIT 1`, email)
}

func (r *SQLiteRepository) ReplaceSession(ctx context.Context, u *models.User) (string, error) {
	var id int64
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO users (owner_id, name, email, photo_ref, token, password_hash, password_salt, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.OwnerID, u.Name, u.Email, u.PhotoRef, u.Token, u.PasswordHash, u.PasswordSalt,
			timex.ToMillis(u.CreatedAt), timex.ToMillis(u.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return "", err
	}
	r.tracker.Invalidate(localstore.TableUsers)
	return strconv.FormatInt(id, 10), nil
}

func (r *SQLiteRepository) UpdateName(ctx context.Context, id, name string, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET name = ?, updated_at = ? WHERE id = ?`, name, timex.ToMillis(updatedAt), id)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if err := dbx.ExpectOne(res); err != nil {
		return err
	}
	r.tracker.Invalidate(localstore.TableUsers)
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	r.tracker.Invalidate(localstore.TableUsers)
	return nil
}
