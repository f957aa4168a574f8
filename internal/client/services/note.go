package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/client/repositories/notes"
	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/dmitrijs2005/amanotes/internal/live"
)

type NoteService interface {
	Insert(ctx context.Context, n models.Note) (string, error)
	Update(ctx context.Context, n models.Note) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Note, error)
	// ToggleFavorite flips the flag and returns the new value.
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	DeleteByCategory(ctx context.Context, category string) (int, error)
	Categories(ctx context.Context) ([]string, error)

	WatchAll(ctx context.Context) (*live.Subscription[models.Note], error)
	WatchByCategory(ctx context.Context, category string) (*live.Subscription[models.Note], error)
	WatchFavorites(ctx context.Context) (*live.Subscription[models.Note], error)
	WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Note], error)
}

type noteService struct {
	repo notes.Repository
	now  Clock
}

func NewNoteService(repo notes.Repository, now Clock) NoteService {
	return &noteService{repo: repo, now: clockOrDefault(now)}
}

func (s *noteService) Insert(ctx context.Context, n models.Note) (string, error) {
	n.ApplyDefaults()
	if err := n.Validate(); err != nil {
		return "", err
	}
	now := s.now()
	n.CreatedAt, n.UpdatedAt = now, now

	id, err := s.repo.Insert(ctx, &n)
	if err != nil {
		return "", fmt.Errorf("insert note: %w", err)
	}
	return id, nil
}

func (s *noteService) Update(ctx context.Context, n models.Note) error {
	n.ApplyDefaults()
	if err := n.Validate(); err != nil {
		return err
	}
	cur, err := s.mustGet(ctx, n.ID)
	if err != nil {
		return err
	}
	n.CreatedAt = cur.CreatedAt
	n.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, &n); err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

func (s *noteService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

func (s *noteService) Get(ctx context.Context, id string) (*models.Note, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

func (s *noteService) mustGet(ctx context.Context, id string) (*models.Note, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("note %s: %w", id, common.ErrNotFound)
	}
	return n, nil
}

func (s *noteService) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	n, err := s.mustGet(ctx, id)
	if err != nil {
		return false, err
	}
	fav := !n.Favorite
	if err := s.repo.SetFavorite(ctx, id, fav, s.now()); err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return fav, nil
}

func (s *noteService) DeleteByCategory(ctx context.Context, category string) (int, error) {
	n, err := s.repo.DeleteByCategory(ctx, category)
	if err != nil {
		return n, fmt.Errorf("delete category %q: %w", category, err)
	}
	return n, nil
}

func (s *noteService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *noteService) WatchAll(ctx context.Context) (*live.Subscription[models.Note], error) {
	return s.repo.WatchAll(ctx)
}

func (s *noteService) WatchByCategory(ctx context.Context, category string) (*live.Subscription[models.Note], error) {
	return s.repo.WatchByCategory(ctx, category)
}

func (s *noteService) WatchFavorites(ctx context.Context) (*live.Subscription[models.Note], error) {
	return s.repo.WatchFavorites(ctx)
}

func (s *noteService) WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Note], error) {
	return s.repo.WatchSearch(ctx, q)
}
