package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/port"
)

// RedisAdapter backs the result cache with redis so that every
// short-lived compute instance within one TTL window shares the same
// upstream fetch. Errors from compute are returned to the caller and
// never written to redis.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute port.ComputeFunc) (domain.DerivedPrice, error) {
	dataStr, err := r.client.Get(ctx, key).Result()
	if err == nil {
		var cached domain.DerivedPrice
		if err := json.Unmarshal([]byte(dataStr), &cached); err == nil {
			return cached, nil
		}
		// Undecodable entry: treat as a miss and overwrite below.
		slog.Warn("Discarding undecodable cache entry", "key", key)
	} else if err != redis.Nil {
		// Redis being down must not take the price path down with it.
		slog.Warn("Cache read failed, computing directly", "key", key, "error", err)
	}

	value, err := compute(ctx)
	if err != nil {
		return domain.DerivedPrice{}, err
	}

	if err := r.Set(ctx, key, value, ttl); err != nil {
		slog.Warn("Failed to store computed price in cache", "key", key, "error", err)
	}
	return value, nil
}

func (r *RedisAdapter) Set(ctx context.Context, key string, value domain.DerivedPrice, ttl time.Duration) error {
	dataBytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal derived price: %w", err)
	}
	if err := r.client.Set(ctx, key, dataBytes, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// Ping checks Redis connection health
func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
