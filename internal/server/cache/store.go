// Package cache keeps recently composed packages close to the API so reads
// do not have to reassemble them from the tables.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is a byte-oriented key/value store with expiry.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// JSONCache stores values JSON-encoded in a Store with a fixed TTL.
type JSONCache struct {
	Store Store
	TTL   time.Duration
}

func NewJSONCache(s Store, ttl time.Duration) *JSONCache {
	return &JSONCache{Store: s, TTL: ttl}
}

// Get decodes the value stored under key into dst. found is false when the
// key is absent or expired.
func (c *JSONCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, found, err := c.Store.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.Store.Set(ctx, key, b, c.TTL)
}

func (c *JSONCache) Delete(ctx context.Context, key string) error {
	return c.Store.Delete(ctx, key)
}
