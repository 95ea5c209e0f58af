package cache

import (
	"context"
	"sync"
	"time"
)

// maxMemoryEntries bounds the memory cache; expired entries are swept first
const maxMemoryEntries = 1024

// Memory is a small in-memory TTL cache
type Memory[T any] struct {
	mu   sync.RWMutex
	data map[string]entry[T]
	ttl  time.Duration
	now  func() time.Time
}

type entry[T any] struct {
	value T
	exp   time.Time
}

// NewMemory returns an empty cache whose entries live for ttl
func NewMemory[T any](ttl time.Duration) *Memory[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory[T]{data: make(map[string]entry[T]), ttl: ttl, now: time.Now}
}

// Get returns the cached value or false if absent/expired
func (c *Memory[T]) Get(_ context.Context, key string) (T, bool) {
	var zero T

	c.mu.RLock()
	item, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || c.now().After(item.exp) {
		return zero, false
	}
	return item.value, true
}

// Set stores a value for the cache TTL
func (c *Memory[T]) Set(_ context.Context, key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[key]; !exists && len(c.data) >= maxMemoryEntries {
		c.evictLocked()
	}
	c.data[key] = entry[T]{value: value, exp: c.now().Add(c.ttl)}
}

// evictLocked drops expired entries, or the entry closest to expiry when none are
func (c *Memory[T]) evictLocked() {
	now := c.now()
	var oldestKey string
	var oldest time.Time
	for key, item := range c.data {
		if now.After(item.exp) {
			delete(c.data, key)
			continue
		}
		if oldestKey == "" || item.exp.Before(oldest) {
			oldestKey, oldest = key, item.exp
		}
	}
	if len(c.data) >= maxMemoryEntries && oldestKey != "" {
		delete(c.data, oldestKey)
	}
}
