// Package modelcache holds loaded translation models for the life of the
// process, keyed by model identifier.
package modelcache

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/valpere/transhub/internal/translator"
)

// Loader produces the model for id on a cache miss.
type Loader func(ctx context.Context, id string) (translator.Model, error)

// Cache is populated lazily and never evicts. Concurrent first callers for
// the same id share a single load; a failed load is not stored, so the
// next call tries again.
type Cache struct {
	mu     sync.RWMutex
	models map[string]translator.Model
	group  singleflight.Group
}

func New() *Cache {
	return &Cache{models: make(map[string]translator.Model)}
}

func (c *Cache) Get(ctx context.Context, id string, load Loader) (translator.Model, error) {
	c.mu.RLock()
	m, ok := c.models[id]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		c.mu.RLock()
		m, ok := c.models[id]
		c.mu.RUnlock()
		if ok {
			return m, nil
		}

		m, err := load(ctx, id)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.models[id] = m
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(translator.Model), nil
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}

// IDs returns the loaded model identifiers, sorted.
func (c *Cache) IDs() []string {
	c.mu.RLock()
	ids := make([]string, 0, len(c.models))
	for id := range c.models {
		ids = append(ids, id)
	}
	c.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Close releases models that hold resources and empties the cache.
func (c *Cache) Close() error {
	c.mu.Lock()
	models := c.models
	c.models = make(map[string]translator.Model)
	c.mu.Unlock()

	var errs []error
	for _, m := range models {
		if closer, ok := m.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
