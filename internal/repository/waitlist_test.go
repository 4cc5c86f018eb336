package repository

import (
	"context"
	"testing"
	"time"

	"icarus/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitlistRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewWaitlistRepository(db)
	ctx := context.Background()

	now := time.Now()
	first := &models.WaitlistEntry{Email: "first@x.com", Source: "waitlist-page", CreatedAt: now.Add(-time.Hour)}
	second := &models.WaitlistEntry{Email: "second@x.com", Name: models.StringPtr("Second"), Source: "landing", CreatedAt: now}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	err := repo.Create(ctx, &models.WaitlistEntry{Email: "first@x.com", Source: "waitlist-page"})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	found, err := repo.GetByEmail(ctx, "second@x.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Second", *found.Name)

	missing, err := repo.GetByEmail(ctx, "nope@x.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second@x.com", entries[0].Email)
	assert.Equal(t, "first@x.com", entries[1].Email)

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
