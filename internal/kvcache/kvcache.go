// Package kvcache is a small durable key-value cache backed by a JSON file.
// It persists which committed breakfast order belongs to which device so a
// device can re-open its own order across sessions.
package kvcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Cache is safe for concurrent use. Every mutation is written through to
// disk before returning.
type Cache struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// Open loads the cache file, creating an empty cache when the file does not
// exist yet.
func Open(path string) (*Cache, error) {
	c := &Cache{path: path, data: map[string]string{}}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache %s: %w", path, err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.data); err != nil {
			return nil, fmt.Errorf("parse cache %s: %w", path, err)
		}
	}
	return c, nil
}

// Get returns the value for key and whether it was present.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

// Set stores key=value durably.
func (c *Cache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return c.flush()
}

// Remove deletes key durably. Removing an absent key is a no-op.
func (c *Cache) Remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; !ok {
		return nil
	}
	delete(c.data, key)
	return c.flush()
}

// flush writes the cache atomically: temp file then rename.
// Callers hold c.mu.
func (c *Cache) flush() error {
	raw, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}
