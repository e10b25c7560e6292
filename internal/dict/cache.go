package dict

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"gramlint/internal/token"
)

// DefaultCacheSize is the number of forms kept by NewCached when size <= 0.
const DefaultCacheSize = 1 << 14

// Cached memoizes lookups of a slower backend (e.g. Compiled).
// The LRU is internally synchronized, so one Cached can serve all sessions.
type Cached struct {
	base  Dictionary
	cache *lru.Cache[string, []token.Reading]
}

func NewCached(base Dictionary, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, []token.Reading](size)
	if err != nil {
		return nil, err
	}
	return &Cached{base: base, cache: c}, nil
}

func (c *Cached) Lookup(form string) []token.Reading {
	if rs, ok := c.cache.Get(form); ok {
		return rs
	}
	rs := c.base.Lookup(form)
	c.cache.Add(form, rs)
	return rs
}

// Len returns the number of cached forms.
func (c *Cached) Len() int { return c.cache.Len() }
