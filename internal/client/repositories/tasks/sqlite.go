package tasks

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

type SQLiteRepository struct {
	db      dbx.DBTX
	tracker *localstore.Tracker
}

func NewSQLiteRepository(db dbx.DBTX, tracker *localstore.Tracker) *SQLiteRepository {
	return &SQLiteRepository{db: db, tracker: tracker}
}

const selectTasks = `SELECT id, title, is_completed, project_id, created_at, updated_at FROM tasks`

func (r *SQLiteRepository) Insert(ctx context.Context, t *models.Task) (string, error) {
	query := `INSERT INTO tasks (title, is_completed, project_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, t.Title, t.Completed, t.ProjectID,
		timex.ToMillis(t.CreatedAt), timex.ToMillis(t.UpdatedAt))
	if err != nil {
		return "", fmt.Errorf("failed to insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("failed to get task id: %w", err)
	}
	r.tracker.Invalidate(localstore.TableTasks)
	return strconv.FormatInt(id, 10), nil
}

func (r *SQLiteRepository) exec(ctx context.Context, what, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	if err := dbx.ExpectOne(res); err != nil {
		return err
	}
	r.tracker.Invalidate(localstore.TableTasks)
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, t *models.Task) error {
	return r.exec(ctx, "update task",
		`UPDATE tasks SET title = ?, is_completed = ?, project_id = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Completed, t.ProjectID, timex.ToMillis(t.UpdatedAt), t.ID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, "delete task", `DELETE FROM tasks WHERE id = ?`, id)
}

func (r *SQLiteRepository) SetCompleted(ctx context.Context, id string, completed bool, updatedAt time.Time) error {
	return r.exec(ctx, "update completion",
		`UPDATE tasks SET is_completed = ?, updated_at = ? WHERE id = ?`,
		completed, timex.ToMillis(updatedAt), id)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, selectTasks+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) DeleteCompleted(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE is_completed = 1`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete completed tasks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		r.tracker.Invalidate(localstore.TableTasks)
	}
	return int(n), nil
}

func (r *SQLiteRepository) WatchAll(ctx context.Context) (*live.Subscription[models.Task], error) {
	return r.watch(ctx, "")
}

func (r *SQLiteRepository) WatchByCompleted(ctx context.Context, completed bool) (*live.Subscription[models.Task], error) {
	return r.watch(ctx, `WHERE is_completed = ?`, completed)
}

func (r *SQLiteRepository) WatchByProject(ctx context.Context, projectID string) (*live.Subscription[models.Task], error) {
	return r.watch(ctx, `WHERE project_id = ?`, projectID)
}

func (r *SQLiteRepository) WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Task], error) {
	return r.watch(ctx, `WHERE fold(title) LIKE ? ESCAPE '\'`, localstore.LikePattern(q))
}

func (r *SQLiteRepository) watch(ctx context.Context, where string, args ...any) (*live.Subscription[models.Task], error) {
	query := selectTasks + " " + where + " ORDER BY created_at DESC, id DESC"
	return live.Watch(ctx, r.tracker.Observe(localstore.TableTasks), func(ctx context.Context) ([]models.Task, error) {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to select tasks: %w", err)
		}
		defer rows.Close()

		result := []models.Task{}
		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				return nil, err
			}
			result = append(result, *t)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return result, nil
	}), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	var (
		t                models.Task
		id               int64
		created, updated int64
	)
	if err := s.Scan(&id, &t.Title, &t.Completed, &t.ProjectID, &created, &updated); err != nil {
		return nil, err
	}
	t.ID = strconv.FormatInt(id, 10)
	t.CreatedAt = timex.FromMillis(created)
	t.UpdatedAt = timex.FromMillis(updated)
	return &t, nil
}
