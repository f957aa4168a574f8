package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/client/repositories/projects"
	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/dmitrijs2005/amanotes/internal/live"
)

// ProjectService owns the progress/status coupling. Progress is clamped to
// [0,1] on every write. Reaching 1.0 moves a project to Completed, and
// leaving Completed sets progress to 0.95.
//
// Narrow updates read the current row and then store progress and status
// with one write. The read is not part of that write, so a concurrent
// writer may interleave; the last write wins.
type ProjectService interface {
	Insert(ctx context.Context, p models.Project) (string, error)
	Update(ctx context.Context, p models.Project) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Project, error)
	// UpdateProgress returns the stored project.
	UpdateProgress(ctx context.Context, id string, progress float64) (*models.Project, error)
	// UpdateStatus returns the stored project.
	UpdateStatus(ctx context.Context, id string, status models.ProjectStatus) (*models.Project, error)
	DeleteByStatus(ctx context.Context, status models.ProjectStatus) (int, error)
	DeleteCompleted(ctx context.Context) (int, error)

	WatchAll(ctx context.Context) (*live.Subscription[models.Project], error)
	WatchByStatus(ctx context.Context, status models.ProjectStatus) (*live.Subscription[models.Project], error)
	WatchByPriority(ctx context.Context, priority models.Priority) (*live.Subscription[models.Project], error)
	WatchDueBefore(ctx context.Context, t time.Time) (*live.Subscription[models.Project], error)
	WatchOverdue(ctx context.Context) (*live.Subscription[models.Project], error)
	WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Project], error)
}

type projectService struct {
	repo projects.Repository
	now  Clock
}

func NewProjectService(repo projects.Repository, now Clock) ProjectService {
	return &projectService{repo: repo, now: clockOrDefault(now)}
}

func (s *projectService) Insert(ctx context.Context, p models.Project) (string, error) {
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return "", err
	}
	p.Progress, p.Status = models.ReconcileProgress(p.Status, p.Progress)
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now

	id, err := s.repo.Insert(ctx, &p)
	if err != nil {
		return "", fmt.Errorf("insert project: %w", err)
	}
	return id, nil
}

// Update applies the same reconciliation as the narrow updates: leaving
// Completed wins over the submitted progress, then progress is clamped and
// may complete the project.
func (s *projectService) Update(ctx context.Context, p models.Project) error {
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return err
	}
	cur, err := s.mustGet(ctx, p.ID)
	if err != nil {
		return err
	}

	if cur.Status == models.StatusCompleted && p.Status != models.StatusCompleted {
		p.Progress, p.Status = models.ReconcileStatus(cur.Status, p.Progress, p.Status)
	} else {
		p.Progress, p.Status = models.ReconcileProgress(p.Status, p.Progress)
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, &p); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

func (s *projectService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (s *projectService) Get(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *projectService) mustGet(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("project %s: %w", id, common.ErrNotFound)
	}
	return p, nil
}

func (s *projectService) store(ctx context.Context, p *models.Project, progress float64, status models.ProjectStatus) (*models.Project, error) {
	now := s.now()
	if err := s.repo.SetProgressStatus(ctx, p.ID, progress, status, now); err != nil {
		return nil, fmt.Errorf("update project %s: %w", p.ID, err)
	}
	p.Progress, p.Status, p.UpdatedAt = progress, status, now
	return p, nil
}

func (s *projectService) UpdateProgress(ctx context.Context, id string, progress float64) (*models.Project, error) {
	p, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	newProgress, newStatus := models.ReconcileProgress(p.Status, progress)
	return s.store(ctx, p, newProgress, newStatus)
}

func (s *projectService) UpdateStatus(ctx context.Context, id string, status models.ProjectStatus) (*models.Project, error) {
	status, err := models.ParseStatus(string(status))
	if err != nil {
		return nil, err
	}
	p, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	newProgress, newStatus := models.ReconcileStatus(p.Status, p.Progress, status)
	return s.store(ctx, p, newProgress, newStatus)
}

func (s *projectService) DeleteByStatus(ctx context.Context, status models.ProjectStatus) (int, error) {
	n, err := s.repo.DeleteByStatus(ctx, status)
	if err != nil {
		return n, fmt.Errorf("delete %s projects: %w", status, err)
	}
	return n, nil
}

func (s *projectService) DeleteCompleted(ctx context.Context) (int, error) {
	return s.DeleteByStatus(ctx, models.StatusCompleted)
}

func (s *projectService) WatchAll(ctx context.Context) (*live.Subscription[models.Project], error) {
	return s.repo.WatchAll(ctx)
}

func (s *projectService) WatchByStatus(ctx context.Context, status models.ProjectStatus) (*live.Subscription[models.Project], error) {
	return s.repo.WatchByStatus(ctx, status)
}

func (s *projectService) WatchByPriority(ctx context.Context, priority models.Priority) (*live.Subscription[models.Project], error) {
	return s.repo.WatchByPriority(ctx, priority)
}

func (s *projectService) WatchDueBefore(ctx context.Context, t time.Time) (*live.Subscription[models.Project], error) {
	return s.repo.WatchDueBefore(ctx, t)
}

func (s *projectService) WatchOverdue(ctx context.Context) (*live.Subscription[models.Project], error) {
	return s.repo.WatchDueBefore(ctx, s.now())
}

func (s *projectService) WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Project], error) {
	return s.repo.WatchSearch(ctx, q)
}
