package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/client/repositories/tasks"
	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/dmitrijs2005/amanotes/internal/live"
)

type TaskService interface {
	Insert(ctx context.Context, t models.Task) (string, error)
	Update(ctx context.Context, t models.Task) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Task, error)
	// ToggleCompleted flips the flag and returns the new value.
	ToggleCompleted(ctx context.Context, id string) (bool, error)
	DeleteCompleted(ctx context.Context) (int, error)

	WatchAll(ctx context.Context) (*live.Subscription[models.Task], error)
	WatchPending(ctx context.Context) (*live.Subscription[models.Task], error)
	WatchCompleted(ctx context.Context) (*live.Subscription[models.Task], error)
	WatchByProject(ctx context.Context, projectID string) (*live.Subscription[models.Task], error)
	WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Task], error)
}

type taskService struct {
	repo tasks.Repository
	now  Clock
}

func NewTaskService(repo tasks.Repository, now Clock) TaskService {
	return &taskService{repo: repo, now: clockOrDefault(now)}
}

func (s *taskService) Insert(ctx context.Context, t models.Task) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	now := s.now()
	t.CreatedAt, t.UpdatedAt = now, now

	id, err := s.repo.Insert(ctx, &t)
	if err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

func (s *taskService) Update(ctx context.Context, t models.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	cur, err := s.mustGet(ctx, t.ID)
	if err != nil {
		return err
	}
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, &t); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *taskService) Get(ctx context.Context, id string) (*models.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *taskService) mustGet(ctx context.Context, id string) (*models.Task, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("task %s: %w", id, common.ErrNotFound)
	}
	return t, nil
}

func (s *taskService) ToggleCompleted(ctx context.Context, id string) (bool, error) {
	t, err := s.mustGet(ctx, id)
	if err != nil {
		return false, err
	}
	done := !t.Completed
	if err := s.repo.SetCompleted(ctx, id, done, s.now()); err != nil {
		return false, fmt.Errorf("toggle completion: %w", err)
	}
	return done, nil
}

func (s *taskService) DeleteCompleted(ctx context.Context) (int, error) {
	n, err := s.repo.DeleteCompleted(ctx)
	if err != nil {
		return n, fmt.Errorf("delete completed tasks: %w", err)
	}
	return n, nil
}

func (s *taskService) WatchAll(ctx context.Context) (*live.Subscription[models.Task], error) {
	return s.repo.WatchAll(ctx)
}

func (s *taskService) WatchPending(ctx context.Context) (*live.Subscription[models.Task], error) {
	return s.repo.WatchByCompleted(ctx, false)
}

func (s *taskService) WatchCompleted(ctx context.Context) (*live.Subscription[models.Task], error) {
	return s.repo.WatchByCompleted(ctx, true)
}

func (s *taskService) WatchByProject(ctx context.Context, projectID string) (*live.Subscription[models.Task], error) {
	return s.repo.WatchByProject(ctx, projectID)
}

func (s *taskService) WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Task], error) {
	return s.repo.WatchSearch(ctx, q)
}
