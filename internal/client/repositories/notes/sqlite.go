package notes

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
	"github.com/dmitrijs2005/amanotes/internal/live"
	"github.com/dmitrijs2005/amanotes/internal/timex"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db      dbx.DBTX
	tracker *localstore.Tracker
}

func NewSQLiteRepository(db dbx.DBTX, tracker *localstore.Tracker) *SQLiteRepository {
	return &SQLiteRepository{db: db, tracker: tracker}
}

const selectNotes = `SELECT id, title, content, category, is_favorite, attachment_ref, created_at, updated_at FROM notes`

func (r *SQLiteRepository) Insert(ctx context.Context, n *models.Note) (string, error) {
	query := `INSERT INTO notes (title, content, category, is_favorite, attachment_ref, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, n.Title, n.Content, n.Category, n.Favorite, n.AttachmentRef,
		timex.ToMillis(n.CreatedAt), timex.ToMillis(n.UpdatedAt))
	if err != nil {
		return "", fmt.Errorf("failed to insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("failed to get note id: %w", err)
	}
	r.tracker.Invalidate(localstore.TableNotes)
	return strconv.FormatInt(id, 10), nil
}

func (r *SQLiteRepository) Update(ctx context.Context, n *models.Note) error {
	query := `UPDATE notes SET title = ?, content = ?, category = ?, is_favorite = ?, attachment_ref = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, n.Title, n.Content, n.Category, n.Favorite, n.AttachmentRef,
		timex.ToMillis(n.UpdatedAt), n.ID)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	if err := dbx.ExpectOne(res); err != nil {
		return err
	}
	r.tracker.Invalidate(localstore.TableNotes)
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if err := dbx.ExpectOne(res); err != nil {
		return err
	}
	r.tracker.Invalidate(localstore.TableNotes)
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	row := r.db.QueryRowContext(ctx, selectNotes+` WHERE id = ?`, id)
	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) SetFavorite(ctx context.Context, id string, favorite bool, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notes SET is_favorite = ?, updated_at = ? WHERE id = ?`,
		favorite, timex.ToMillis(updatedAt), id)
	if err != nil {
		return fmt.Errorf("failed to update favorite: %w", err)
	}
	if err := dbx.ExpectOne(res); err != nil {
		return err
	}
	r.tracker.Invalidate(localstore.TableNotes)
	return nil
}

func (r *SQLiteRepository) DeleteByCategory(ctx context.Context, category string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE category = ?`, category)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		r.tracker.Invalidate(localstore.TableNotes)
	}
	return int(n), nil
}

func (r *SQLiteRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM notes ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) WatchAll(ctx context.Context) (*live.Subscription[models.Note], error) {
	return r.watch(ctx, "", nil)
}

func (r *SQLiteRepository) WatchByCategory(ctx context.Context, category string) (*live.Subscription[models.Note], error) {
	return r.watch(ctx, `WHERE category = ?`, []any{category})
}

func (r *SQLiteRepository) WatchFavorites(ctx context.Context) (*live.Subscription[models.Note], error) {
	return r.watch(ctx, `WHERE is_favorite = 1`, nil)
}

func (r *SQLiteRepository) WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Note], error) {
	p := localstore.LikePattern(q)
	return r.watch(ctx, `WHERE fold(title) LIKE ? ESCAPE '\' OR fold(content) LIKE ? ESCAPE '\'`, []any{p, p})
}

func (r *SQLiteRepository) watch(ctx context.Context, where string, args []any) (*live.Subscription[models.Note], error) {
	query := selectNotes + " " + where + " ORDER BY updated_at DESC, id DESC"
	src := r.tracker.Observe(localstore.TableNotes)
	return live.Watch(ctx, src, func(ctx context.Context) ([]models.Note, error) {
		return r.list(ctx, query, args...)
	}), nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	result := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*models.Note, error) {
	var (
		n                models.Note
		id               int64
		created, updated int64
	)
	if err := s.Scan(&id, &n.Title, &n.Content, &n.Category, &n.Favorite, &n.AttachmentRef, &created, &updated); err != nil {
		return nil, err
	}
	n.ID = strconv.FormatInt(id, 10)
	n.CreatedAt = timex.FromMillis(created)
	n.UpdatedAt = timex.FromMillis(updated)
	return &n, nil
}
