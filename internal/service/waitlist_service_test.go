package service

import (
	"context"
	"testing"

	"icarus/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitlistService_Join(t *testing.T) {
	t.Parallel()
	s, _ := newServices(t)
	ctx := context.Background()

	_, _, err := s.waitlist.Join(ctx, JoinWaitlistInput{Email: "   "})
	assertCode(t, err, models.CodeValidation)

	_, _, err = s.waitlist.Join(ctx, JoinWaitlistInput{Email: "nope"})
	assertCode(t, err, models.CodeValidation)

	entry, created, err := s.waitlist.Join(ctx, JoinWaitlistInput{Email: " Early@Bird.com ", Name: "Early", Role: "artist"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "early@bird.com", entry.Email)
	assert.Equal(t, defaultWaitlistSource, entry.Source)
	require.NotNil(t, entry.Role)
	assert.Equal(t, "artist", *entry.Role)

	again, created, err := s.waitlist.Join(ctx, JoinWaitlistInput{Email: "early@bird.com", Source: "landing"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, entry.ID, again.ID)
	assert.Equal(t, defaultWaitlistSource, again.Source)

	_, created, err = s.waitlist.Join(ctx, JoinWaitlistInput{Email: "late@bird.com", Source: "landing"})
	require.NoError(t, err)
	assert.True(t, created)

	entries, count, err := s.waitlist.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.Len(t, entries, 2)
	assert.Equal(t, "late@bird.com", entries[0].Email)
}

func TestWaitlistService_List_Empty(t *testing.T) {
	t.Parallel()
	s, _ := newServices(t)
	entries, count, err := s.waitlist.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Zero(t, count)
}
