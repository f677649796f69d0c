package database

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRegistry stores active-login JTIs in Redis under per-subject
// keys with a TTL matching the token lifetime.
type SessionRegistry struct {
	rdb *redis.Client
}

// NewSessionRegistry creates a Redis-backed session registry.
func NewSessionRegistry(rdb *redis.Client) *SessionRegistry {
	return &SessionRegistry{rdb: rdb}
}

func (r *SessionRegistry) Set(ctx context.Context, key, jti string, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, jti, ttl).Err()
}

func (r *SessionRegistry) Lookup(ctx context.Context, key string) (string, bool, error) {
	jti, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return jti, true, nil
}

func (r *SessionRegistry) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}
