package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	gocache "github.com/patrickmn/go-cache"

	"github.com/xenking/petrobahia/internal/domain/pricing"
)

const cacheKey = "catalog"

// Loader loads a fresh catalog, typically from a store.
type Loader func(ctx context.Context) (*pricing.Catalog, error)

// Cached serves a loaded catalog for ttl before loading it again. Each
// returned catalog is immutable, so requests in flight keep a consistent
// view while a refresh happens.
type Cached struct {
	load  Loader
	ttl   time.Duration
	cache *gocache.Cache
	mu    sync.Mutex // serializes loads
}

// NewCached wraps load. A non-positive ttl caches forever.
func NewCached(load Loader, ttl time.Duration) *Cached {
	expiration := ttl
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	return &Cached{
		load:  load,
		ttl:   expiration,
		cache: gocache.New(expiration, 0),
	}
}

func (c *Cached) Catalog(ctx context.Context) (*pricing.Catalog, error) {
	if v, ok := c.cache.Get(cacheKey); ok {
		return v.(*pricing.Catalog), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.cache.Get(cacheKey); ok {
		return v.(*pricing.Catalog), nil
	}

	loaded, err := c.load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load catalog")
	}
	c.cache.Set(cacheKey, loaded, c.ttl)
	return loaded, nil
}

// Invalidate drops the cached catalog; the next call loads a fresh one.
func (c *Cached) Invalidate() {
	c.cache.Delete(cacheKey)
}
