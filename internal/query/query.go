// Package query keeps the last known server state per query key. Reads are
// memoized and deduplicated while in flight; successful mutations invalidate
// every entry under the affected key prefixes so the next read re-fetches.
package query

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type entry struct {
	value any
	fresh bool
}

// Client is an in-memory cache of read results. The zero value is not usable;
// construct with New. A Client is safe for concurrent use.
type Client struct {
	mu      sync.Mutex
	entries map[string]*entry
	keys    map[string]Key // every key ever read, stored or in flight
	epochs  map[string]uint64
	group   singleflight.Group
	logger  *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger routes cache diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Client {
	c := &Client{
		entries: map[string]*entry{},
		keys:    map[string]Key{},
		epochs:  map[string]uint64{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Fetch returns the cached value for key when it is fresh, otherwise calls fn.
// Concurrent calls for the same key share one call to fn. A failed read
// leaves any previous entry in place.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if c == nil {
		return zero, errors.New("query: nil client")
	}
	id := key.String()
	if v, ok := c.lookup(id); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
		return zero, errors.Errorf("query: cached value for %s has type %T", id, v)
	}

	epoch := c.register(key, id)
	v, err, shared := c.group.Do(id, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.store(id, epoch, value)
		return value, nil
	})
	if err != nil {
		return zero, errors.Wrapf(err, "fetch %s", id)
	}
	if shared {
		c.logger.Debug("query: shared in-flight read", zap.String("key", id))
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.Errorf("query: result for %s has type %T", id, v)
	}
	return typed, nil
}

// Mutate runs fn and, only when it succeeds, invalidates every entry under
// the given prefixes.
func Mutate[T any](ctx context.Context, c *Client, fn func(context.Context) (T, error), invalidate ...Key) (T, error) {
	out, err := fn(ctx)
	if err != nil {
		return out, err
	}
	if c != nil {
		c.Invalidate(invalidate...)
	}
	return out, nil
}

// Invalidate marks every entry whose key starts with one of the prefixes as
// stale and detaches in-flight reads for those keys. It returns the number of
// entries marked.
func (c *Client) Invalidate(prefixes ...Key) int {
	if c == nil || len(prefixes) == 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	marked := 0
	for id, key := range c.keys {
		if !matchesAny(key, prefixes) {
			continue
		}
		c.epochs[id]++
		c.group.Forget(id)
		if e, ok := c.entries[id]; ok && e.fresh {
			e.fresh = false
			marked++
		}
	}
	for _, prefix := range prefixes {
		c.logger.Debug("query: invalidated", zap.String("prefix", prefix.String()), zap.Int("entries", marked))
	}
	return marked
}

// Peek returns the cached value for key, fresh or stale.
func (c *Client) Peek(key Key) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// IsFresh reports whether key holds a value that Fetch would serve without a
// network call.
func (c *Client) IsFresh(key Key) bool {
	_, ok := c.lookup(key.String())
	return ok
}

// Len returns the number of entries held, fresh or stale.
func (c *Client) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Client) lookup(id string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok || !e.fresh {
		return nil, false
	}
	return e.value, true
}

// register records key so that Invalidate reaches reads still in flight, and
// returns the epoch the read started in.
func (c *Client) register(key Key, id string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.keys[id]; !ok {
		c.keys[id] = append(Key(nil), key...)
	}
	return c.epochs[id]
}

func (c *Client) store(id string, epoch uint64, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epochs[id] != epoch {
		// Invalidated while the read was in flight; the value is already stale.
		c.logger.Debug("query: dropped stale read", zap.String("key", id))
		return
	}
	c.entries[id] = &entry{value: value, fresh: true}
}

func matchesAny(key Key, prefixes []Key) bool {
	for _, p := range prefixes {
		if key.HasPrefix(p) {
			return true
		}
	}
	return false
}
