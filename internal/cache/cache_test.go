package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = Close() })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	useMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedUser) func() error {
		return func() error {
			calls++
			*dest = cachedUser{ID: 7, Name: "Ada"}
			return nil
		}
	}

	var first cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &first, UserTTL, fetch(&first)))
	var second cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &second, UserTTL, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	InvalidateUser(ctx, 7)
	var third cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &third, UserTTL, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := useMiniredis(t)
	boom := errors.New("boom")

	var dest cachedUser
	err := Aside(context.Background(), UserKey(1), &dest, UserTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(UserKey(1)))
}

func TestAside_WithoutRedisCallsFetch(t *testing.T) {
	SetClient(nil)
	var dest cachedUser
	err := Aside(context.Background(), UserKey(1), &dest, UserTTL, func() error {
		dest.ID = 1
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), dest.ID)
}

func TestSessionRevocation(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()

	revoked, err := IsSessionRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, RevokeSession(ctx, "abc", time.Hour))
	revoked, err = IsSessionRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(time.Hour + time.Second)
	revoked, err = IsSessionRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInitRedis_UnreachableLeavesClientNil(t *testing.T) {
	InitRedis("redis://:bad@127.0.0.1:1/0")
	assert.Nil(t, GetClient())
}
