package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix        = "user:%d"
	CategoryStatsPrefix  = "user:%d:category_stats"
	RevokedSessionPrefix = "session:revoked:%s"
)

const (
	UserTTL          = 5 * time.Minute
	CategoryStatsTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func CategoryStatsKey(userID uint) string {
	return fmt.Sprintf(CategoryStatsPrefix, userID)
}

func RevokedSessionKey(jti string) string {
	return fmt.Sprintf(RevokedSessionPrefix, jti)
}

// Aside reads key into dest; on a miss it calls fetch, which must fill dest,
// and stores the result for ttl. Cache failures never fail the call.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client != nil {
		raw, err := client.Get(ctx, key).Bytes()
		if err == nil && json.Unmarshal(raw, dest) == nil {
			return nil
		}
	}

	if err := fetch(); err != nil {
		return err
	}

	if client != nil {
		if b, err := json.Marshal(dest); err == nil {
			client.Set(ctx, key, b, ttl)
		}
	}
	return nil
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID), CategoryStatsKey(userID))
}

func InvalidateCategoryStats(ctx context.Context, userID uint) {
	Invalidate(ctx, CategoryStatsKey(userID))
}

// RevokeSession blacklists a session id until its token would have expired anyway.
func RevokeSession(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return client.Set(ctx, RevokedSessionKey(jti), 1, ttl).Err()
}

// IsSessionRevoked reports whether jti was revoked. Without Redis nothing is revoked.
func IsSessionRevoked(ctx context.Context, jti string) (bool, error) {
	if client == nil || jti == "" {
		return false, nil
	}
	err := client.Get(ctx, RevokedSessionKey(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
