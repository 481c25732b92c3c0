package cachedresults

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/travigo/transferboard/pkg/refresh"
)

const latestStateKey = "transferboard:transfers:latest"

// RedisStore shares the latest state between processes. Entries expire so a
// stopped scheduler does not leave a stale table behind forever.
type RedisStore struct {
	Cache *cache.Cache[string]
}

func NewRedisStore(client *redis.Client, expiration time.Duration) *RedisStore {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &RedisStore{
		Cache: cache.New[string](redisStore),
	}
}

func (r *RedisStore) Publish(ctx context.Context, state refresh.State) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return r.Cache.Set(ctx, latestStateKey, string(stateJSON))
}

func (r *RedisStore) Latest(ctx context.Context) (refresh.State, error) {
	var state refresh.State

	stateJSON, err := r.Cache.Get(ctx, latestStateKey)
	if errors.Is(err, store.NotFound{}) || errors.Is(err, redis.Nil) || (err == nil && stateJSON == "") {
		return state, ErrNoSnapshot
	}
	if err != nil {
		return state, err
	}

	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return state, fmt.Errorf("decode cached transfer table: %w", err)
	}

	return state, nil
}
