package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/i474232898/weath3r-terminal/internal/market"
)

// DefaultEventTTL is how long a fetched event list is served without asking
// upstream again.
const DefaultEventTTL = 60 * time.Second

// EventFetcher loads the full upstream event list.
type EventFetcher interface {
	FetchEvents(ctx context.Context) ([]market.Event, error)
}

type cacheEntry struct {
	events     []market.Event
	capturedAt time.Time
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits    uint64        `json:"hits"`
	Misses  uint64        `json:"misses"`
	Fetches uint64        `json:"fetches"`
	Cached  bool          `json:"cached"`
	Age     time.Duration `json:"ageNs"`
}

// EventCache is a concurrency-safe, single-slot, time-boxed cache in front of
// an EventFetcher. It implements market.EventSource.
type EventCache struct {
	mu    sync.RWMutex
	entry *cacheEntry

	fetcher  EventFetcher
	ttl      time.Duration
	now      func() time.Time
	coalesce bool
	group    singleflight.Group

	hits    atomic.Uint64
	misses  atomic.Uint64
	fetches atomic.Uint64
}

// Option configures an EventCache.
type Option func(*EventCache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *EventCache) {
		c.now = now
	}
}

// WithCoalescing makes concurrent misses share a single upstream fetch.
func WithCoalescing(on bool) Option {
	return func(c *EventCache) {
		c.coalesce = on
	}
}

// NewEventCache creates an EventCache. If ttl is <= 0, DefaultEventTTL is used.
func NewEventCache(fetcher EventFetcher, ttl time.Duration, opts ...Option) *EventCache {
	if ttl <= 0 {
		ttl = DefaultEventTTL
	}
	c := &EventCache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events returns the cached list while it is fresh and otherwise fetches a
// new one. Fetch errors are returned unchanged; stale data is never served.
func (c *EventCache) Events(ctx context.Context) ([]market.Event, error) {
	if events, ok := c.fresh(); ok {
		c.hits.Add(1)
		return events, nil
	}
	c.misses.Add(1)

	if !c.coalesce {
		return c.fill(ctx)
	}

	// The shared fetch must not die with whichever caller happened to start it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do("events", func() (interface{}, error) {
		if events, ok := c.fresh(); ok {
			return events, nil
		}
		return c.fill(shared)
	})
	if err != nil {
		return nil, err
	}
	return v.([]market.Event), nil
}

// Invalidate drops the cached entry.
func (c *EventCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}

// Stats returns counters and the age of the current entry.
func (c *EventCache) Stats() Stats {
	s := Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Fetches: c.fetches.Load(),
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry != nil {
		s.Cached = true
		s.Age = c.now().Sub(c.entry.capturedAt)
	}
	return s
}

func (c *EventCache) fresh() ([]market.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil || c.now().Sub(c.entry.capturedAt) >= c.ttl {
		return nil, false
	}
	return c.entry.events, true
}

// fill fetches and, when the result is non-empty, replaces the entry
// wholesale. Empty results are returned but not cached.
func (c *EventCache) fill(ctx context.Context) ([]market.Event, error) {
	c.fetches.Add(1)

	events, err := c.fetcher.FetchEvents(ctx)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return []market.Event{}, nil
	}

	entry := &cacheEntry{events: events, capturedAt: c.now()}

	c.mu.Lock()
	c.entry = entry
	c.mu.Unlock()

	return events, nil
}
