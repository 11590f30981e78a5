// Package cache keeps user profiles in Redis so repeated profile reads skip
// the credential store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/hongminglow/mposter-be/internal/models"
)

const keyProfilePrefix = "profile:user:"

// ProfileCache caches user profiles. Reads fill it only where no entry exists
// and writes overwrite, so a slow read can never replace a newer profile.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfileCache connects to the Redis server at addr and checks it responds.
func NewProfileCache(ctx context.Context, addr string, ttl time.Duration) (*ProfileCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &ProfileCache{client: client, ttl: ttl}, nil
}

// Get returns the cached profile for id. A miss is reported as ok == false
// with a nil error.
func (c *ProfileCache) Get(ctx context.Context, id string) (models.Profile, bool, error) {
	val, err := c.client.Get(ctx, keyProfilePrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, err
	}
	var p models.Profile
	if err := json.Unmarshal(val, &p); err != nil {
		return models.Profile{}, false, fmt.Errorf("decode cached profile: %w", err)
	}
	return p, true, nil
}

// Fill stores p only if nothing is cached under its id yet. It reports whether
// p was stored.
func (c *ProfileCache) Fill(ctx context.Context, p models.Profile) (bool, error) {
	data, err := encode(p)
	if err != nil {
		return false, err
	}
	return c.client.SetNX(ctx, keyProfilePrefix+p.ID, data, c.ttl).Result()
}

// Put stores p under its id, replacing any cached entry.
func (c *ProfileCache) Put(ctx context.Context, p models.Profile) error {
	data, err := encode(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyProfilePrefix+p.ID, data, c.ttl).Err()
}

func encode(p models.Profile) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return data, nil
}

// Invalidate drops the cached profile for id.
func (c *ProfileCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, keyProfilePrefix+id).Err()
}

// Close releases the Redis connection pool.
func (c *ProfileCache) Close() error {
	return c.client.Close()
}
