package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"clinic-scheduling-api/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Redis key prefix for cached weekly schedules
	RedisAvailabilityKeyPrefix = "availability:provider:"

	// Timeout for individual Redis operations
	redisCacheTimeout = 500 * time.Millisecond
)

// AvailabilityCache is a read-through cache in front of the availability store.
// A cache error is never fatal; it reads as a miss.
type AvailabilityCache interface {
	Get(ctx context.Context, providerID uuid.UUID) (*entity.ProviderAvailability, bool)
	Set(ctx context.Context, availability *entity.ProviderAvailability)
	Invalidate(ctx context.Context, providerID uuid.UUID)
}

type redisAvailabilityCache struct {
	client *redis.Client
	log    *logrus.Logger
	ttl    time.Duration
}

func NewRedisAvailabilityCache(client *redis.Client, log *logrus.Logger, ttl time.Duration) AvailabilityCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisAvailabilityCache{client: client, log: log, ttl: ttl}
}

func availabilityKey(providerID uuid.UUID) string {
	return RedisAvailabilityKeyPrefix + providerID.String()
}

func (c *redisAvailabilityCache) Get(ctx context.Context, providerID uuid.UUID) (*entity.ProviderAvailability, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, availabilityKey(providerID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnf("Failed to read availability cache for provider %s: %+v", providerID, err)
		}
		return nil, false
	}

	var availability entity.ProviderAvailability
	if err := json.Unmarshal(raw, &availability); err != nil {
		c.log.Warnf("Failed to decode availability cache for provider %s: %+v", providerID, err)
		return nil, false
	}
	for i := range availability.Days {
		availability.Days[i].ProviderID = availability.ProviderID
	}
	return &availability, true
}

func (c *redisAvailabilityCache) Set(ctx context.Context, availability *entity.ProviderAvailability) {
	raw, err := json.Marshal(availability)
	if err != nil {
		c.log.Warnf("Failed to encode availability for provider %s: %+v", availability.ProviderID, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	if err := c.client.Set(ctx, availabilityKey(availability.ProviderID), raw, c.ttl).Err(); err != nil {
		c.log.Warnf("Failed to write availability cache for provider %s: %+v", availability.ProviderID, err)
	}
}

func (c *redisAvailabilityCache) Invalidate(ctx context.Context, providerID uuid.UUID) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	if err := c.client.Del(ctx, availabilityKey(providerID)).Err(); err != nil {
		c.log.Warnf("Failed to invalidate availability cache for provider %s: %+v", providerID, err)
	}
}

type noopAvailabilityCache struct{}

// NewNoopAvailabilityCache is used when Redis is not configured.
func NewNoopAvailabilityCache() AvailabilityCache {
	return noopAvailabilityCache{}
}

func (noopAvailabilityCache) Get(context.Context, uuid.UUID) (*entity.ProviderAvailability, bool) {
	return nil, false
}

func (noopAvailabilityCache) Set(context.Context, *entity.ProviderAvailability) {}

func (noopAvailabilityCache) Invalidate(context.Context, uuid.UUID) {}
