package templates

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of templates Cached keeps by default.
const DefaultCacheSize = 256

// Cached keeps recently fetched templates in a bounded LRU and collapses
// concurrent fetches of one title into a single call. Failed fetches are
// not cached.
type Cached struct {
	src   Source
	cache *lru.Cache[string, string]
	group singleflight.Group
}

// NewCached wraps src with a cache of size entries.
func NewCached(src Source, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating template cache: %w", err)
	}
	return &Cached{src: src, cache: cache}, nil
}

// Fetch implements Source.
func (c *Cached) Fetch(ctx context.Context, title string) (string, error) {
	key := NormalizeTitle(title)
	if text, ok := c.cache.Get(key); ok {
		return text, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		text, err := c.src.Fetch(ctx, key)
		if err != nil {
			return "", err
		}
		c.cache.Add(key, text)
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Len returns the number of cached templates.
func (c *Cached) Len() int {
	return c.cache.Len()
}

// Purge empties the cache.
func (c *Cached) Purge() {
	c.cache.Purge()
}
