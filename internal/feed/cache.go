package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

var snapshotReloads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "store_snapshot_reloads_total",
	Help: "Snapshot reloads by cache name and result.",
}, []string{"cache", "result"})

// Cache holds the last loaded snapshot of a screen's data. Invalidations are
// coalesced: while a reload runs, any number of Invalidate calls cause at most
// one more reload. A failed reload keeps the previous snapshot.
type Cache[T any] struct {
	name  string
	load  func(ctx context.Context) (T, error)
	log   *slog.Logger
	group singleflight.Group
	dirty chan struct{}

	mu       sync.RWMutex
	val      T
	loaded   bool
	onReload []func(T)
}

func NewCache[T any](name string, load func(ctx context.Context) (T, error), logger *slog.Logger) *Cache[T] {
	return &Cache[T]{
		name:  name,
		load:  load,
		log:   logger,
		dirty: make(chan struct{}, 1),
	}
}

// OnReload registers fn to run after every successful load.
func (c *Cache[T]) OnReload(fn func(T)) {
	c.mu.Lock()
	c.onReload = append(c.onReload, fn)
	c.mu.Unlock()
}

// Get returns the current snapshot, loading it on first use. Concurrent first
// callers share one load.
func (c *Cache[T]) Get(ctx context.Context) (T, error) {
	c.mu.RLock()
	if c.loaded {
		v := c.val
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()
	return c.reload(ctx)
}

// Invalidate schedules a reload. Never blocks.
func (c *Cache[T]) Invalidate() {
	select {
	case c.dirty <- struct{}{}:
	default:
	}
}

// Run serves invalidations until ctx is done.
func (c *Cache[T]) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.dirty:
			if _, err := c.reload(ctx); err != nil {
				c.log.Error("snapshot reload failed, keeping previous", slog.String("cache", c.name), slog.Any("error", err))
			}
		}
	}
}

func (c *Cache[T]) reload(ctx context.Context) (T, error) {
	v, err, _ := c.group.Do("load", func() (any, error) {
		v, err := c.load(ctx)
		if err != nil {
			snapshotReloads.WithLabelValues(c.name, "error").Inc()
			return v, err
		}
		snapshotReloads.WithLabelValues(c.name, "ok").Inc()
		c.mu.Lock()
		c.val, c.loaded = v, true
		hooks := append([]func(T){}, c.onReload...)
		c.mu.Unlock()
		for _, fn := range hooks {
			fn(v)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
