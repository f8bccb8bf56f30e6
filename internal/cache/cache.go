package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rivalscope/rivalscope/pkg/models"
)

// Cache is the caching interface. All cache operations go through here.
// Implementations must be safe for concurrent use.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	SetJobProgress(ctx context.Context, tenantID uuid.UUID, progress models.JobProgress, ttl time.Duration) error
	GetJobProgress(ctx context.Context, tenantID, jobID uuid.UUID) (*models.JobProgress, bool, error)
	IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)
}

// RedisCache implements the Cache interface using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// SetJobProgress stores a polling snapshot so progress reads skip Postgres
// between job updates. Keys carry the tenant so a snapshot is only readable
// by the tenant that owns the job.
func (c *RedisCache) SetJobProgress(ctx context.Context, tenantID uuid.UUID, progress models.JobProgress, ttl time.Duration) error {
	payload, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, JobProgressKey(tenantID, progress.ID), payload, ttl).Err()
}

func (c *RedisCache) GetJobProgress(ctx context.Context, tenantID, jobID uuid.UUID) (*models.JobProgress, bool, error) {
	val, err := c.client.Get(ctx, JobProgressKey(tenantID, jobID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var progress models.JobProgress
	if err := json.Unmarshal(val, &progress); err != nil {
		return nil, false, err
	}
	return &progress, true, nil
}

func (c *RedisCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
