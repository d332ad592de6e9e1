// Package live provides a generic in-memory snapshot that is refreshed
// periodically in the background or synchronously on demand.
package live

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/looplj/ecagate/internal/log"
)

// Cache holds the latest snapshot returned by RefreshFunc.
//
// The cached value must be treated as immutable: callers MUST NOT mutate
// what GetData returns. A failed refresh keeps serving the previous snapshot.
type Cache[T any] struct {
	mu         sync.RWMutex
	data       T
	lastUpdate time.Time

	sf singleflight.Group

	refreshFunc func(ctx context.Context) (T, error)
	//nolint:predeclared // Checked.
	onSwap func(old, new T)
	name   string

	refreshInterval time.Duration
	refreshTimeout  time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
}

// Options defines the configuration for Cache.
type Options[T any] struct {
	// Name is used for logging purposes.
	Name string

	// RefreshFunc returns a full new snapshot.
	RefreshFunc func(ctx context.Context) (T, error)

	// OnSwap is called after data is swapped. May be nil.
	//nolint:predeclared // Checked.
	OnSwap func(old, new T)

	// InitialValue is served until the first successful refresh.
	InitialValue T

	// RefreshInterval enables periodic refresh. Zero disables the background worker.
	RefreshInterval time.Duration

	// RefreshTimeout bounds each background refresh. Defaults to 30s.
	RefreshTimeout time.Duration
}

// NewCache creates a new Cache. The first load is left to the caller.
func NewCache[T any](opts Options[T]) *Cache[T] {
	if opts.RefreshFunc == nil {
		panic("live.Cache: RefreshFunc is required")
	}

	timeout := opts.RefreshTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Cache[T]{
		data:            opts.InitialValue,
		refreshFunc:     opts.RefreshFunc,
		onSwap:          opts.OnSwap,
		name:            opts.Name,
		refreshInterval: opts.RefreshInterval,
		refreshTimeout:  timeout,
		stopCh:          make(chan struct{}),
	}

	if opts.RefreshInterval > 0 {
		go c.worker()

		log.Debug(context.Background(), "live cache started with periodic refresh",
			log.String("name", c.name),
			log.Duration("interval", opts.RefreshInterval))
	}

	return c
}

// GetData returns the current cached data.
func (c *Cache[T]) GetData() T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.data
}

// GetLastUpdate returns the time of the last successful refresh, zero if none.
func (c *Cache[T]) GetLastUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastUpdate
}

// Snapshot returns the current data together with the time it was loaded.
func (c *Cache[T]) Snapshot() (T, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.data, c.lastUpdate
}

// Load performs a synchronous refresh. Concurrent callers share one refresh.
func (c *Cache[T]) Load(ctx context.Context) error {
	_, err, shared := c.sf.Do("load", func() (any, error) {
		return nil, c.refresh(ctx)
	})

	if shared {
		log.Debug(ctx, "live cache load deduplicated via singleflight", log.String("name", c.name))
	}

	if err != nil {
		log.Warn(ctx, "live cache load failed", log.String("name", c.name), log.Cause(err))
	}

	return err
}

func (c *Cache[T]) refresh(ctx context.Context) error {
	newData, err := c.refreshFunc(ctx)
	if err != nil {
		return err
	}

	now := time.Now()

	c.mu.Lock()
	old := c.data
	c.data = newData
	c.lastUpdate = now
	c.mu.Unlock()

	if c.onSwap != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error(ctx, "live cache onSwap callback panicked",
						log.String("name", c.name),
						log.Any("panic", r))
				}
			}()

			c.onSwap(old, newData)
		}()
	}

	log.Info(ctx, "cache refreshed", log.String("name", c.name), log.Time("update_time", now))

	return nil
}

// Stop gracefully stops the background worker.
func (c *Cache[T]) Stop() {
	c.stopOnce.Do(func() {
		log.Info(context.Background(), "live cache stopping", log.String("name", c.name))
		close(c.stopCh)
	})
}

func (c *Cache[T]) worker() {
	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			log.Debug(context.Background(), "live cache worker stopped", log.String("name", c.name))
			return
		case <-ticker.C:
			c.doRefresh()
		}
	}
}

func (c *Cache[T]) doRefresh() {
	defer func() {
		if r := recover(); r != nil {
			log.Error(context.Background(), "live cache refresh panicked",
				log.String("name", c.name),
				log.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
	defer cancel()

	_ = c.Load(ctx)
}
