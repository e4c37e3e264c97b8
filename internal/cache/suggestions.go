// Package cache stores AI suggestion lists in Redis so repeated seeds don't hit the generator.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// SuggestionCache is a cache-aside store keyed by normalized seed title.
type SuggestionCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	hits     atomic.Uint64
	misses   atomic.Uint64
	failures atomic.Uint64
}

type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Errors uint64 `json:"errors"`
}

func NewSuggestionCache(client *redis.Client, prefix string, ttl time.Duration) *SuggestionCache {
	return &SuggestionCache{client: client, prefix: prefix, ttl: ttl}
}

// Key normalizes the seed so "Buy Milk " and "buy milk" share an entry.
func (c *SuggestionCache) Key(seed string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(seed), " "))
	sum := sha1.Sum([]byte(norm))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get reports a miss as (nil, false, nil).
func (c *SuggestionCache) Get(ctx context.Context, seed string) ([]string, bool, error) {
	data, err := c.client.Get(ctx, c.Key(seed)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.misses.Add(1)
			return nil, false, nil
		}
		c.failures.Add(1)
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		c.failures.Add(1)
		return nil, false, fmt.Errorf("cache unmarshal: %w", err)
	}
	c.hits.Add(1)
	return out, true, nil
}

func (c *SuggestionCache) Set(ctx context.Context, seed string, suggestions []string) error {
	data, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.Key(seed), data, c.ttl).Err(); err != nil {
		c.failures.Add(1)
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *SuggestionCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Errors: c.failures.Load()}
}

// NewRedisClient connects and pings; callers fall back to no cache on error.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}
