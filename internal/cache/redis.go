package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nkiryanov/officebook/config"
	"github.com/nkiryanov/officebook/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client       *redis.Client
	resourcesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, resourcesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:       redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		resourcesTTL: resourcesTTL,
	}
}

func (c *RedisCache) GetResources(ctx context.Context) ([]domain.Resource, error) {
	data, err := c.client.Get(ctx, resourcesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var resources []domain.Resource
	if err := json.Unmarshal(data, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

func (c *RedisCache) SetResources(ctx context.Context, resources []domain.Resource) error {
	payload, err := json.Marshal(resources)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resourcesKey(), payload, c.resourcesTTL).Err()
}

// AcquireAdmissionLock serializes admissions per resource: the conflict scan
// and the booking insert run under this lock so two overlapping requests
// cannot both pass the scan.
func (c *RedisCache) AcquireAdmissionLock(ctx context.Context, resourceID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, admissionLockKey(resourceID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseAdmissionLock(ctx context.Context, resourceID string) error {
	return c.client.Del(ctx, admissionLockKey(resourceID)).Err()
}

func resourcesKey() string {
	return "cache:resources"
}

func admissionLockKey(resourceID string) string {
	return fmt.Sprintf("lock:resource:%s:admission", resourceID)
}
