package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rehire/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix           = "user:%d"
	ProfileSummaryKeyPrefix = "profile_summary:%d"
)

const (
	UserTTL           = 5 * time.Minute
	ProfileSummaryTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ProfileSummaryKey(userID uint) string {
	return fmt.Sprintf(ProfileSummaryKeyPrefix, userID)
}

// Aside reads key into dest, or on a miss calls fetch (which must populate
// dest) and stores the result with ttl. Cache failures degrade to fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues("hit").Inc()
			return nil
		}
		// Corrupt entry, refetch and overwrite.
	case errors.Is(err, redis.Nil):
	default:
		observability.CacheLookups.WithLabelValues("error").Inc()
		return fetch()
	}

	observability.CacheLookups.WithLabelValues("miss").Inc()
	if err := fetch(); err != nil {
		return err
	}

	if b, err := json.Marshal(dest); err == nil {
		_ = client.Set(ctx, key, b, ttl).Err()
	}
	return nil
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateUser drops every cached view of userID.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID), ProfileSummaryKey(userID))
}
