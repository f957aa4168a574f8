package projects

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

const selectProjects = `SELECT id, title, description, status, priority, progress, due_date, thumbnail_ref, created_at, updated_at FROM projects`

func dueArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timex.ToMillis(*t)
}

func (r *SQLiteRepository) Insert(ctx context.Context, p *models.Project) (string, error) {
	query := `INSERT INTO projects (title, description, status, priority, progress, due_date, thumbnail_ref, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, p.Title, p.Description, string(p.Status), string(p.Priority), p.Progress,
		dueArg(p.DueDate), p.ThumbnailRef, timex.ToMillis(p.CreatedAt), timex.ToMillis(p.UpdatedAt))
	if err != nil {
		return "", fmt.Errorf("failed to insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("failed to get project id: %w", err)
	}
	r.tracker.Invalidate(localstore.TableProjects)
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
	r.tracker.Invalidate(localstore.TableProjects)
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, p *models.Project) error {
	return r.exec(ctx, "update project",
		`UPDATE projects SET title = ?, description = ?, status = ?, priority = ?, progress = ?, due_date = ?,
			thumbnail_ref = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Description, string(p.Status), string(p.Priority), p.Progress, dueArg(p.DueDate),
		p.ThumbnailRef, timex.ToMillis(p.UpdatedAt), p.ID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, "delete project", `DELETE FROM projects WHERE id = ?`, id)
}

func (r *SQLiteRepository) SetProgressStatus(ctx context.Context, id string, progress float64, status models.ProjectStatus, updatedAt time.Time) error {
	return r.exec(ctx, "update progress",
		`UPDATE projects SET progress = ?, status = ?, updated_at = ? WHERE id = ?`,
		progress, string(status), timex.ToMillis(updatedAt), id)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, selectProjects+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) DeleteByStatus(ctx context.Context, status models.ProjectStatus) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE status = ?`, string(status))
	if err != nil {
		return 0, fmt.Errorf("failed to delete projects: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		r.tracker.Invalidate(localstore.TableProjects)
	}
	return int(n), nil
}

const recentFirst = "ORDER BY updated_at DESC, id DESC"

func (r *SQLiteRepository) WatchAll(ctx context.Context) (*live.Subscription[models.Project], error) {
	return r.watch(ctx, recentFirst)
}

func (r *SQLiteRepository) WatchByStatus(ctx context.Context, status models.ProjectStatus) (*live.Subscription[models.Project], error) {
	return r.watch(ctx, `WHERE status = ? `+recentFirst, string(status))
}

func (r *SQLiteRepository) WatchByPriority(ctx context.Context, priority models.Priority) (*live.Subscription[models.Project], error) {
	return r.watch(ctx, `WHERE priority = ? `+recentFirst, string(priority))
}

func (r *SQLiteRepository) WatchDueBefore(ctx context.Context, t time.Time) (*live.Subscription[models.Project], error) {
	return r.watch(ctx, `WHERE due_date IS NOT NULL AND due_date <= ? ORDER BY due_date ASC, id ASC`, timex.ToMillis(t))
}

func (r *SQLiteRepository) WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Project], error) {
	p := localstore.LikePattern(q)
	return r.watch(ctx, `WHERE fold(title) LIKE ? ESCAPE '\' OR fold(description) LIKE ? ESCAPE '\' `+recentFirst, p, p)
}

func (r *SQLiteRepository) watch(ctx context.Context, tail string, args ...any) (*live.Subscription[models.Project], error) {
	query := selectProjects + " " + tail
	return live.Watch(ctx, r.tracker.Observe(localstore.TableProjects), func(ctx context.Context) ([]models.Project, error) {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to select projects: %w", err)
		}
		defer rows.Close()

		result := []models.Project{}
		for rows.Next() {
			p, err := scanProject(rows)
			if err != nil {
				return nil, err
			}
			result = append(result, *p)
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

func scanProject(s scanner) (*models.Project, error) {
	var (
		p                models.Project
		id               int64
		status, prio     string
		due              sql.NullInt64
		created, updated int64
	)
	if err := s.Scan(&id, &p.Title, &p.Description, &status, &prio, &p.Progress, &due, &p.ThumbnailRef, &created, &updated); err != nil {
		return nil, err
	}
	p.ID = strconv.FormatInt(id, 10)
	p.Status = models.ProjectStatus(status)
	p.Priority = models.Priority(prio)
	if due.Valid {
		d := timex.FromMillis(due.Int64)
		p.DueDate = &d
	}
	p.CreatedAt = timex.FromMillis(created)
	p.UpdatedAt = timex.FromMillis(updated)
	return &p, nil
}
