// Package cache holds a read-through cache of visitor projections. Only masked
// data is ever cached, since VisitorView never carries the raw identifier.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"visitorreg/internal/visitor/models"
	id "visitorreg/pkg/domain"
	"visitorreg/pkg/platform/sentinel"
)

const visitorKeyPrefix = "visitor:"

// RedisCache stores VisitorView JSON under visitor:<id> with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed visitor cache.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) key(visitorID id.VisitorID) string {
	return visitorKeyPrefix + visitorID.String()
}

// Find returns the cached view or sentinel.ErrNotFound on a miss.
func (c *RedisCache) Find(ctx context.Context, visitorID id.VisitorID) (*models.VisitorView, error) {
	data, err := c.client.Get(ctx, c.key(visitorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cached visitor: %w", err)
	}
	var view models.VisitorView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("decode cached visitor: %w", err)
	}
	return &view, nil
}

func (c *RedisCache) Save(ctx context.Context, view *models.VisitorView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("encode visitor: %w", err)
	}
	if err := c.client.Set(ctx, c.key(view.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache visitor: %w", err)
	}
	return nil
}

// Invalidate drops the cached view after a transition.
func (c *RedisCache) Invalidate(ctx context.Context, visitorID id.VisitorID) error {
	if err := c.client.Del(ctx, c.key(visitorID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached visitor: %w", err)
	}
	return nil
}
