package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MissCache always misses; handlers fall through to the service.
type MissCache struct{}

func (c *MissCache) Get(ctx context.Context, key string, dest any) error {
	return redis.Nil
}

func (c *MissCache) Set(ctx context.Context, key string, value any, exp time.Duration) error {
	return nil
}

func (c *MissCache) Close() error {
	return nil
}

// TrackingCache records hits and misses and stores values in memory with
// the same JSON round-trip as the redis cache.
type TrackingCache struct {
	mu       sync.Mutex
	GetCalls int
	SetCalls int
	data     map[string]entry
}

type entry struct {
	payload []byte
	expiry  time.Time
}

func NewTrackingCache() *TrackingCache {
	return &TrackingCache{data: make(map[string]entry)}
}

func (c *TrackingCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.GetCalls++
	e, ok := c.data[key]
	if !ok || time.Now().After(e.expiry) {
		return redis.Nil
	}
	return json.Unmarshal(e.payload, dest)
}

func (c *TrackingCache) Set(ctx context.Context, key string, value any, exp time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.SetCalls++
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = entry{payload: payload, expiry: time.Now().Add(exp)}
	return nil
}

func (c *TrackingCache) Close() error {
	return nil
}

// Counts returns the number of Get and Set calls seen so far.
func (c *TrackingCache) Counts() (gets, sets int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.GetCalls, c.SetCalls
}
