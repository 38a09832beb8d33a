package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// postingKeyPrefix namespaces posting-time keys in Redis.
const postingKeyPrefix = "posting:"

// postingTTL bounds how long a posting record is kept. The eligibility
// filter falls back to the shift's own posted_at after expiry, so the
// TTL only needs to comfortably outlive the reopen window.
const postingTTL = 7 * 24 * time.Hour

// RedisPostingLog records when each booking's shift entered the
// available pool, keyed by booking id. The language reopen rule in the
// eligibility filter reads it on every visibility check, which is why
// it lives in Redis rather than the primary database.
type RedisPostingLog struct {
	rdb *redis.Client
}

// NewRedisPostingLog returns a posting log backed by the given client.
func NewRedisPostingLog(rdb *redis.Client) *RedisPostingLog {
	return &RedisPostingLog{rdb: rdb}
}

// RecordPosted stores the posting instant for a booking.
func (l *RedisPostingLog) RecordPosted(ctx context.Context, bookingID string, at time.Time) error {
	return l.rdb.Set(ctx, postingKeyPrefix+bookingID, at.UTC().Unix(), postingTTL).Err()
}

// PostedAt returns the recorded posting instant for a booking. The
// second return value is false when no record exists (expired or never
// written); callers fall back to the shift record itself.
func (l *RedisPostingLog) PostedAt(ctx context.Context, bookingID string) (time.Time, bool, error) {
	raw, err := l.rdb.Get(ctx, postingKeyPrefix+bookingID).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(unix, 0).UTC(), true, nil
}
