// Package explain caches fraud explanations so repeated detail views do not
// re-run the hosted model.
package explain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"claimsight/internal/claims/models"
)

// Cache stores generated explanations by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Key identifies a claim's explanation. The explanation is built only from
// fields fixed at submission, so triage and comments do not invalidate it.
func Key(claim *models.Claim) string {
	return claim.ID
}

// LRU is an in-process cache with per-entry expiry.
type LRU struct {
	lru *expirable.LRU[string, string]
}

func NewLRU(size int, ttl time.Duration) *LRU {
	if size <= 0 {
		size = 1
	}
	return &LRU{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (c *LRU) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.lru.Get(key)
	return v, ok, nil
}

func (c *LRU) Set(_ context.Context, key, value string) error {
	c.lru.Add(key, value)
	return nil
}

const redisKeyPrefix = "claimsight:explanation:"

// Redis shares explanations across instances.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (c *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get explanation: %w", err)
	}
	return v, true, nil
}

func (c *Redis) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, redisKeyPrefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("set explanation: %w", err)
	}
	return nil
}
