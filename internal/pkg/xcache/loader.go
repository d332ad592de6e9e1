package xcache

import (
	"context"
	"errors"

	"github.com/eko/gocache/lib/v4/store"
	"golang.org/x/sync/singleflight"

	"github.com/looplj/ecagate/internal/log"
)

// LoadFunc computes the value for a key on a cache miss.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Loader is a get-or-compute front for a Cache. Concurrent misses on the same
// key share a single LoadFunc call.
type Loader[T any] struct {
	cache   Cache[T]
	group   singleflight.Group
	skip    func(T) bool
	options []Option
}

type LoaderOption[T any] func(*Loader[T])

// WithSkip prevents values for which skip returns true from being stored.
// The value is still returned to every waiting caller.
func WithSkip[T any](skip func(T) bool) LoaderOption[T] {
	return func(l *Loader[T]) {
		l.skip = skip
	}
}

// WithSetOptions passes store options, e.g. expiration, to every Set.
func WithSetOptions[T any](options ...Option) LoaderOption[T] {
	return func(l *Loader[T]) {
		l.options = append(l.options, options...)
	}
}

func NewLoader[T any](cache Cache[T], opts ...LoaderOption[T]) *Loader[T] {
	l := &Loader[T]{cache: cache}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Get returns the cached value for key, computing and storing it with load on a miss.
// Errors from load are returned as is and never cached.
//
// The shared load runs detached from the cancellation of the caller that
// started it, so every waiter only observes its own ctx ending.
func (l *Loader[T]) Get(ctx context.Context, key string, load LoadFunc[T]) (T, error) {
	var zero T

	if value, ok := l.lookup(ctx, key); ok {
		return value, nil
	}

	flight := l.group.DoChan(key, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)

		// Another flight may have stored the value between lookup and DoChan.
		if value, ok := l.lookup(loadCtx, key); ok {
			return value, nil
		}

		value, err := load(loadCtx)
		if err != nil {
			return value, err
		}

		if l.skip == nil || !l.skip(value) {
			if err := l.cache.Set(loadCtx, key, value, l.options...); err != nil {
				log.Warn(loadCtx, "failed to store cache entry", log.String("key", key), log.Cause(err))
			}
		}

		return value, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-flight:
		if res.Shared {
			log.Debug(ctx, "cache load shared", log.String("key", key))
		}

		if res.Err != nil {
			return zero, res.Err
		}

		value, _ := res.Val.(T)

		return value, nil
	}
}

func (l *Loader[T]) lookup(ctx context.Context, key string) (T, bool) {
	value, err := l.cache.Get(ctx, key)
	if err == nil {
		return value, true
	}

	if !errors.Is(err, store.NotFound{}) {
		log.Warn(ctx, "cache lookup failed", log.String("key", key), log.Cause(err))
	}

	var zero T

	return zero, false
}

// Delete drops a single key.
func (l *Loader[T]) Delete(ctx context.Context, key string) error {
	return l.cache.Delete(ctx, key)
}

// Clear drops every entry of the underlying cache.
func (l *Loader[T]) Clear(ctx context.Context) error {
	return l.cache.Clear(ctx)
}
