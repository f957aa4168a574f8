package users

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/client/localstore"
	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*SQLiteRepository, *localstore.Store) {
	t.Helper()
	s, err := localstore.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewSQLiteRepository(s.DB, s.Tracker), s
}

func countUsers(t *testing.T, s *localstore.Store) int {
	t.Helper()
	var n int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	return n
}

func TestReplaceSession_KeepsSingleRow(t *testing.T) {
	r, s := setupRepo(t)
	ctx := context.Background()
	now := time.Unix(100, 0).UTC()

	_, err := r.ReplaceSession(ctx, &models.User{OwnerID: "o1", Name: "Ann", Email: "ann@example.com", Token: "t1", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	id2, err := r.ReplaceSession(ctx, &models.User{OwnerID: "o2", Name: "Bob", Email: "bob@example.com", Token: "t2", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	assert.Equal(t, 1, countUsers(t, s))

	cur, err := r.GetCurrent(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, id2, cur.ID)
	assert.Equal(t, "Bob", cur.Name)
	assert.Equal(t, "t2", cur.Token)
	assert.Equal(t, now, cur.CreatedAt)
}

func TestGetByEmail_CaseInsensitive(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	_, err := r.ReplaceSession(ctx, &models.User{OwnerID: "o", Name: "Ada", Email: "Ada@B.com", PasswordHash: "h", PasswordSalt: "s"})
	require.NoError(t, err)

	u, err := r.GetByEmail(ctx, "ada@b.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "h", u.PasswordHash)
	assert.Equal(t, "s", u.PasswordSalt)

	u, err = r.GetByEmail(ctx, "nobody@b.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUpdateNameAndClear(t *testing.T) {
	r, s := setupRepo(t)
	ctx := context.Background()

	id, err := r.ReplaceSession(ctx, &models.User{OwnerID: "o", Name: "x", Email: "x@y.io"})
	require.NoError(t, err)

	require.NoError(t, r.UpdateName(ctx, id, "Eve Holt", time.Unix(5, 0)))
	cur, err := r.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Eve Holt", cur.Name)

	require.NoError(t, r.Clear(ctx))
	assert.Equal(t, 0, countUsers(t, s))
	require.ErrorIs(t, r.UpdateName(ctx, id, "z", time.Now()), common.ErrNotFound)

	cur, err = r.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}
