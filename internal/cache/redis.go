package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "chunk:hash:"

// Redis is a shared digest Store for teams running the auditor against
// the same checkout from several machines.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the Redis at url and verifies the connection.
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis connection failed: %w", err)
	}

	return &Redis{client: client}, nil
}

func (r *Redis) Lookup(ctx context.Context, chunkID string) (string, bool, error) {
	val, err := r.client.Get(ctx, redisKeyPrefix+chunkID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *Redis) Record(ctx context.Context, chunkID, digest string) error {
	return r.client.Set(ctx, redisKeyPrefix+chunkID, digest, 0).Err()
}

func (r *Redis) Forget(ctx context.Context, prefix string) error {
	pattern := redisKeyPrefix + prefix + "*"
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *Redis) Close() error { return r.client.Close() }
