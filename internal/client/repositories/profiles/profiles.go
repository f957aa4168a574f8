// Package profiles stores federated user profiles in the cloud "users"
// collection, one document per owner.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/amanotes/internal/client/docstore"
	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/dmitrijs2005/amanotes/internal/timex"
)

const Collection = "users"

type Repository interface {
	// FindByOwner returns the profile of ownerID, or nil.
	FindByOwner(ctx context.Context, ownerID string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) (string, error)
	Update(ctx context.Context, u *models.User) error
}

type CloudRepository struct {
	coll *docstore.Collection
}

func NewCloudRepository(c *docstore.Client) *CloudRepository {
	return &CloudRepository{coll: c.Collection(Collection)}
}

type profileDoc struct {
	OwnerID   string `json:"ownerId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	PhotoRef  string `json:"photoUrl,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func toDoc(u *models.User) profileDoc {
	return profileDoc{
		OwnerID:   u.OwnerID,
		Name:      u.Name,
		Email:     u.Email,
		PhotoRef:  u.PhotoRef,
		CreatedAt: timex.ToMillis(u.CreatedAt),
		UpdatedAt: timex.ToMillis(u.UpdatedAt),
	}
}

func (r *CloudRepository) FindByOwner(ctx context.Context, ownerID string) (*models.User, error) {
	docs, err := r.coll.Query(ownerID).Where("ownerId", docstore.OpEq, ownerID).Limit(1).Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	var v profileDoc
	if err := docs[0].Decode(&v); err != nil {
		return nil, err
	}
	return &models.User{
		ID:        docs[0].ID,
		OwnerID:   v.OwnerID,
		Name:      v.Name,
		Email:     v.Email,
		PhotoRef:  v.PhotoRef,
		CreatedAt: timex.FromMillis(v.CreatedAt),
		UpdatedAt: timex.FromMillis(v.UpdatedAt),
	}, nil
}

func (r *CloudRepository) Insert(ctx context.Context, u *models.User) (string, error) {
	if u.OwnerID == "" {
		return "", common.Validation("profile without owner id")
	}
	return r.coll.Add(ctx, u.OwnerID, toDoc(u))
}

func (r *CloudRepository) Update(ctx context.Context, u *models.User) error {
	return r.coll.Set(ctx, u.ID, u.OwnerID, toDoc(u))
}
