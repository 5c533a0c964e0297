package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache is a fixed-capacity in-process cache. Least recently used entries
// are evicted once the capacity is reached; TTLs are ignored.
type LRUCache struct {
	entries *lru.Cache[string, []byte]
}

func NewLRUCache(size int) (*LRUCache, error) {
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &LRUCache{entries: entries}, nil
}

func (c *LRUCache) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := c.entries.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	return val, nil
}

func (c *LRUCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	c.entries.Add(key, data)
	return nil
}

// Len reports the number of cached entries.
func (c *LRUCache) Len() int {
	return c.entries.Len()
}
