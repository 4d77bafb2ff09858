// Package fetch serves entity lists through a keyed cache.
//
// Watch returns a Handle at once and resolves it in the background.
// Concurrent watchers of one key share a single load; resolved pages stay
// cached until their entity is invalidated or the TTL passes. Failed loads
// are never cached and nothing is retried or polled.
package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Key identifies one list request.
type Key struct {
	Tenant string
	Entity string
	Filter string // canonical encoding of the exact-match filters
	Limit  int64
	Offset int64
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s?%s&limit=%d&offset=%d", k.Tenant, k.Entity, k.Filter, k.Limit, k.Offset)
}

// Loader performs the underlying list call.
type Loader[T any] func(ctx context.Context) (models.Paginated[T], error)

// Options configures a Cache.
type Options struct {
	Size        int           // max cached pages; <= 0 means unbounded
	TTL         time.Duration // <= 0 means pages never expire
	LoadTimeout time.Duration // per load; <= 0 means no limit
}

type scope struct{ tenant, entity string }

// Cache holds resolved pages and in-flight loads.
type Cache struct {
	mu    sync.Mutex
	pages *expirable.LRU[Key, any]
	gens  map[scope]uint64
	group singleflight.Group

	loadTimeout time.Duration
	log         *zap.Logger
}

// New builds a Cache.
func New(opts Options, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := opts.Size
	if size < 0 {
		size = 0
	}
	return &Cache{
		pages:       expirable.NewLRU[Key, any](size, nil, opts.TTL),
		gens:        make(map[scope]uint64),
		loadTimeout: opts.LoadTimeout,
		log:         logger,
	}
}

// Watch returns a handle for key without blocking. A cached page resolves
// the handle immediately; otherwise the handle joins the in-flight load
// for key or starts one.
//
// The load runs detached from ctx so one watcher giving up does not fail
// the others sharing it.
func Watch[T any](ctx context.Context, c *Cache, key Key, load Loader[T]) *Handle[T] {
	h := newHandle[T](key)
	sc := scope{key.Tenant, key.Entity}

	c.mu.Lock()
	if v, ok := c.pages.Get(key); ok {
		if p, ok := v.(models.Paginated[T]); ok {
			c.mu.Unlock()
			h.resolve(&p, nil)
			return h
		}
	}
	gen := c.gens[sc]
	ch := c.group.DoChan(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(lctx, c.loadTimeout)
			defer cancel()
		}
		p, err := load(lctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gens[sc] == gen {
			c.pages.Add(key, p)
		}
		c.mu.Unlock()
		return p, nil
	})
	c.mu.Unlock()

	go func() {
		res := <-ch
		if res.Err != nil {
			c.log.Debug("fetch load failed", zap.Stringer("key", key), zap.Error(res.Err))
			h.resolve(nil, res.Err)
			return
		}
		p, ok := res.Val.(models.Paginated[T])
		if !ok {
			h.resolve(nil, fmt.Errorf("fetch: %s loaded as %T", key, res.Val))
			return
		}
		h.resolve(&p, nil)
	}()
	return h
}

// Invalidate drops every cached page of entity for tenant. Loads already
// in flight still resolve their handles but are not cached.
func (c *Cache) Invalidate(tenant, entity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[scope{tenant, entity}]++
	for _, k := range c.pages.Keys() {
		if k.Tenant == tenant && k.Entity == entity {
			c.pages.Remove(k)
		}
	}
}

// Len reports the number of cached pages.
func (c *Cache) Len() int {
	return c.pages.Len()
}
