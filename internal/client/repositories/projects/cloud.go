package projects

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

const Collection = "projects"

type CloudRepository struct {
	coll    *docstore.Collection
	ownerID string
}

func NewCloudRepository(c *docstore.Client, ownerID string) *CloudRepository {
	return &CloudRepository{coll: c.Collection(Collection), ownerID: ownerID}
}

type projectDoc struct {
	OwnerID      string  `json:"ownerId"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	Progress     float64 `json:"progress"`
	DueDate      *int64  `json:"dueDate,omitempty"`
	ThumbnailRef string  `json:"thumbnailRef,omitempty"`
	CreatedAt    int64   `json:"createdAt"`
	UpdatedAt    int64   `json:"updatedAt"`
}

func (r *CloudRepository) toDoc(p *models.Project) projectDoc {
	d := projectDoc{
		OwnerID:      r.ownerID,
		Title:        p.Title,
		Description:  p.Description,
		Status:       string(p.Status),
		Priority:     string(p.Priority),
		Progress:     p.Progress,
		ThumbnailRef: p.ThumbnailRef,
		CreatedAt:    timex.ToMillis(p.CreatedAt),
		UpdatedAt:    timex.ToMillis(p.UpdatedAt),
	}
	if p.DueDate != nil {
		ms := timex.ToMillis(*p.DueDate)
		d.DueDate = &ms
	}
	return d
}

func fromDocs(docs []docstore.Document) ([]models.Project, error) {
	result := make([]models.Project, 0, len(docs))
	for _, d := range docs {
		var v projectDoc
		if err := d.Decode(&v); err != nil {
			return nil, err
		}
		p := models.Project{
			ID:           d.ID,
			OwnerID:      d.OwnerID,
			Title:        v.Title,
			Description:  v.Description,
			Status:       models.ProjectStatus(v.Status),
			Priority:     models.Priority(v.Priority),
			Progress:     v.Progress,
			ThumbnailRef: v.ThumbnailRef,
			CreatedAt:    timex.FromMillis(v.CreatedAt),
			UpdatedAt:    timex.FromMillis(v.UpdatedAt),
		}
		if v.DueDate != nil {
			due := timex.FromMillis(*v.DueDate)
			p.DueDate = &due
		}
		result = append(result, p)
	}
	return result, nil
}

func (r *CloudRepository) Insert(ctx context.Context, p *models.Project) (string, error) {
	return r.coll.Add(ctx, r.ownerID, r.toDoc(p))
}

func (r *CloudRepository) Update(ctx context.Context, p *models.Project) error {
	return r.coll.Set(ctx, p.ID, r.ownerID, r.toDoc(p))
}

func (r *CloudRepository) Delete(ctx context.Context, id string) error {
	return r.coll.Delete(ctx, id, r.ownerID)
}

func (r *CloudRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	d, err := r.coll.Get(ctx, id, r.ownerID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ps, err := fromDocs([]docstore.Document{*d})
	if err != nil {
		return nil, err
	}
	return &ps[0], nil
}

func (r *CloudRepository) SetProgressStatus(ctx context.Context, id string, progress float64, status models.ProjectStatus, updatedAt time.Time) error {
	return r.coll.Merge(ctx, id, r.ownerID, map[string]any{
		"progress":  progress,
		"status":    string(status),
		"updatedAt": timex.ToMillis(updatedAt),
	})
}

func (r *CloudRepository) DeleteByStatus(ctx context.Context, status models.ProjectStatus) (int, error) {
	return r.coll.Query(r.ownerID).Where("status", docstore.OpEq, string(status)).DeleteAll(ctx)
}

func (r *CloudRepository) recent() *docstore.Query {
	return r.coll.Query(r.ownerID).OrderBy("updatedAt", docstore.Desc)
}

func (r *CloudRepository) WatchAll(ctx context.Context) (*live.Subscription[models.Project], error) {
	return docstore.Watch(ctx, r.recent(), fromDocs)
}

func (r *CloudRepository) WatchByStatus(ctx context.Context, status models.ProjectStatus) (*live.Subscription[models.Project], error) {
	return docstore.Watch(ctx, r.recent().Where("status", docstore.OpEq, string(status)), fromDocs)
}

func (r *CloudRepository) WatchByPriority(ctx context.Context, priority models.Priority) (*live.Subscription[models.Project], error) {
	return docstore.Watch(ctx, r.recent().Where("priority", docstore.OpEq, string(priority)), fromDocs)
}

func (r *CloudRepository) WatchDueBefore(ctx context.Context, t time.Time) (*live.Subscription[models.Project], error) {
	q := r.coll.Query(r.ownerID).
		Where("dueDate", docstore.OpLe, timex.ToMillis(t)).
		OrderBy("dueDate", docstore.Asc)
	return docstore.Watch(ctx, q, fromDocs)
}

func (r *CloudRepository) WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Project], error) {
	return docstore.Watch(ctx, r.recent(), func(docs []docstore.Document) ([]models.Project, error) {
		all, err := fromDocs(docs)
		if err != nil {
			return nil, err
		}
		result := make([]models.Project, 0, len(all))
		for _, p := range all {
			if docstore.MatchText(q, p.Title, p.Description) {
				result = append(result, p)
			}
		}
		return result, nil
	})
}
