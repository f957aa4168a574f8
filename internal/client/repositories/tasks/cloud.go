package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/client/docstore"
	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/dmitrijs2005/amanotes/internal/live"
	"github.com/dmitrijs2005/amanotes/internal/timex"
)

const Collection = "tasks"

type CloudRepository struct {
	coll    *docstore.Collection
	ownerID string
}

func NewCloudRepository(c *docstore.Client, ownerID string) *CloudRepository {
	return &CloudRepository{coll: c.Collection(Collection), ownerID: ownerID}
}

type taskDoc struct {
	OwnerID   string `json:"ownerId"`
	Title     string `json:"title"`
	Completed bool   `json:"isCompleted"`
	ProjectID string `json:"projectId,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func (r *CloudRepository) toDoc(t *models.Task) taskDoc {
	return taskDoc{
		OwnerID:   r.ownerID,
		Title:     t.Title,
		Completed: t.Completed,
		ProjectID: t.ProjectID,
		CreatedAt: timex.ToMillis(t.CreatedAt),
		UpdatedAt: timex.ToMillis(t.UpdatedAt),
	}
}

func fromDocs(docs []docstore.Document) ([]models.Task, error) {
	result := make([]models.Task, 0, len(docs))
	for _, d := range docs {
		var v taskDoc
		if err := d.Decode(&v); err != nil {
			return nil, err
		}
		result = append(result, models.Task{
			ID:        d.ID,
			OwnerID:   d.OwnerID,
			Title:     v.Title,
			Completed: v.Completed,
			ProjectID: v.ProjectID,
			CreatedAt: timex.FromMillis(v.CreatedAt),
			UpdatedAt: timex.FromMillis(v.UpdatedAt),
		})
	}
	return result, nil
}

func (r *CloudRepository) Insert(ctx context.Context, t *models.Task) (string, error) {
	return r.coll.Add(ctx, r.ownerID, r.toDoc(t))
}

func (r *CloudRepository) Update(ctx context.Context, t *models.Task) error {
	return r.coll.Set(ctx, t.ID, r.ownerID, r.toDoc(t))
}

func (r *CloudRepository) Delete(ctx context.Context, id string) error {
	return r.coll.Delete(ctx, id, r.ownerID)
}

func (r *CloudRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	d, err := r.coll.Get(ctx, id, r.ownerID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ts, err := fromDocs([]docstore.Document{*d})
	if err != nil {
		return nil, err
	}
	return &ts[0], nil
}

func (r *CloudRepository) SetCompleted(ctx context.Context, id string, completed bool, updatedAt time.Time) error {
	return r.coll.Merge(ctx, id, r.ownerID, map[string]any{
		"isCompleted": completed,
		"updatedAt":   timex.ToMillis(updatedAt),
	})
}

func (r *CloudRepository) DeleteCompleted(ctx context.Context) (int, error) {
	return r.coll.Query(r.ownerID).Where("isCompleted", docstore.OpEq, true).DeleteAll(ctx)
}

func (r *CloudRepository) recent() *docstore.Query {
	return r.coll.Query(r.ownerID).OrderBy("createdAt", docstore.Desc)
}

func (r *CloudRepository) WatchAll(ctx context.Context) (*live.Subscription[models.Task], error) {
	return docstore.Watch(ctx, r.recent(), fromDocs)
}

func (r *CloudRepository) WatchByCompleted(ctx context.Context, completed bool) (*live.Subscription[models.Task], error) {
	return docstore.Watch(ctx, r.recent().Where("isCompleted", docstore.OpEq, completed), fromDocs)
}

func (r *CloudRepository) WatchByProject(ctx context.Context, projectID string) (*live.Subscription[models.Task], error) {
	return docstore.Watch(ctx, r.recent().Where("projectId", docstore.OpEq, projectID), fromDocs)
}

func (r *CloudRepository) WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Task], error) {
	return docstore.Watch(ctx, r.recent(), func(docs []docstore.Document) ([]models.Task, error) {
		all, err := fromDocs(docs)
		if err != nil {
			return nil, err
		}
		result := make([]models.Task, 0, len(all))
		for _, t := range all {
			if docstore.MatchText(q, t.Title) {
				result = append(result, t)
			}
		}
		return result, nil
	})
}
