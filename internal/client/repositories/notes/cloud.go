package notes

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/client/docstore"
	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/dmitrijs2005/amanotes/internal/live"
	"github.com/dmitrijs2005/amanotes/internal/timex"
)

const Collection = "notes"

// CloudRepository stores notes as documents owned by a single user.
type CloudRepository struct {
	coll    *docstore.Collection
	ownerID string
}

func NewCloudRepository(c *docstore.Client, ownerID string) *CloudRepository {
	return &CloudRepository{coll: c.Collection(Collection), ownerID: ownerID}
}

type noteDoc struct {
	OwnerID       string `json:"ownerId"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Category      string `json:"category"`
	Favorite      bool   `json:"isFavorite"`
	AttachmentRef string `json:"attachmentRef,omitempty"`
	CreatedAt     int64  `json:"createdAt"`
	UpdatedAt     int64  `json:"updatedAt"`
}

func (r *CloudRepository) toDoc(n *models.Note) noteDoc {
	return noteDoc{
		OwnerID:       r.ownerID,
		Title:         n.Title,
		Content:       n.Content,
		Category:      n.Category,
		Favorite:      n.Favorite,
		AttachmentRef: n.AttachmentRef,
		CreatedAt:     timex.ToMillis(n.CreatedAt),
		UpdatedAt:     timex.ToMillis(n.UpdatedAt),
	}
}

func fromDoc(d docstore.Document) (models.Note, error) {
	var v noteDoc
	if err := d.Decode(&v); err != nil {
		return models.Note{}, err
	}
	return models.Note{
		ID:            d.ID,
		OwnerID:       d.OwnerID,
		Title:         v.Title,
		Content:       v.Content,
		Category:      v.Category,
		Favorite:      v.Favorite,
		AttachmentRef: v.AttachmentRef,
		CreatedAt:     timex.FromMillis(v.CreatedAt),
		UpdatedAt:     timex.FromMillis(v.UpdatedAt),
	}, nil
}

func fromDocs(docs []docstore.Document) ([]models.Note, error) {
	result := make([]models.Note, 0, len(docs))
	for _, d := range docs {
		n, err := fromDoc(d)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, nil
}

func (r *CloudRepository) Insert(ctx context.Context, n *models.Note) (string, error) {
	return r.coll.Add(ctx, r.ownerID, r.toDoc(n))
}

func (r *CloudRepository) Update(ctx context.Context, n *models.Note) error {
	return r.coll.Set(ctx, n.ID, r.ownerID, r.toDoc(n))
}

func (r *CloudRepository) Delete(ctx context.Context, id string) error {
	return r.coll.Delete(ctx, id, r.ownerID)
}

func (r *CloudRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	d, err := r.coll.Get(ctx, id, r.ownerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	n, err := fromDoc(*d)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *CloudRepository) SetFavorite(ctx context.Context, id string, favorite bool, updatedAt time.Time) error {
	return r.coll.Merge(ctx, id, r.ownerID, map[string]any{
		"isFavorite": favorite,
		"updatedAt":  timex.ToMillis(updatedAt),
	})
}

func (r *CloudRepository) DeleteByCategory(ctx context.Context, category string) (int, error) {
	return r.coll.Query(r.ownerID).Where("category", docstore.OpEq, category).DeleteAll(ctx)
}

func (r *CloudRepository) Categories(ctx context.Context) ([]string, error) {
	docs, err := r.coll.Query(r.ownerID).Get(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var result []string
	for _, d := range docs {
		n, err := fromDoc(d)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[n.Category]; !ok {
			seen[n.Category] = struct{}{}
			result = append(result, n.Category)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (r *CloudRepository) recent() *docstore.Query {
	return r.coll.Query(r.ownerID).OrderBy("updatedAt", docstore.Desc)
}

func (r *CloudRepository) WatchAll(ctx context.Context) (*live.Subscription[models.Note], error) {
	return docstore.Watch(ctx, r.recent(), fromDocs)
}

func (r *CloudRepository) WatchByCategory(ctx context.Context, category string) (*live.Subscription[models.Note], error) {
	return docstore.Watch(ctx, r.recent().Where("category", docstore.OpEq, category), fromDocs)
}

func (r *CloudRepository) WatchFavorites(ctx context.Context) (*live.Subscription[models.Note], error) {
	return docstore.Watch(ctx, r.recent().Where("isFavorite", docstore.OpEq, true), fromDocs)
}

func (r *CloudRepository) WatchSearch(ctx context.Context, q string) (*live.Subscription[models.Note], error) {
	return docstore.Watch(ctx, r.recent(), func(docs []docstore.Document) ([]models.Note, error) {
		all, err := fromDocs(docs)
		if err != nil {
			return nil, err
		}
		result := make([]models.Note, 0, len(all))
		for _, n := range all {
			if docstore.MatchText(q, n.Title, n.Content) {
				result = append(result, n)
			}
		}
		return result, nil
	})
}
