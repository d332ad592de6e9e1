package xcache

import (
	"context"
	"errors"

	"github.com/eko/gocache/lib/v4/store"
)

// ErrCacheDisabled is the cause of every miss reported by a disabled cache.
var ErrCacheDisabled = errors.New("cache disabled")

// disabledCache backs ModeNone. Every lookup misses and writes are dropped, so a
// Loader in front of it calls through to the upstream on each request.
type disabledCache[T any] struct{}

func NewNoop[T any]() Cache[T] {
	return disabledCache[T]{}
}

func (disabledCache[T]) Get(context.Context, any) (T, error) {
	var zero T
	return zero, store.NotFoundWithCause(ErrCacheDisabled)
}

func (disabledCache[T]) Set(context.Context, any, T, ...Option) error {
	return nil
}

func (disabledCache[T]) Delete(context.Context, any) error {
	return nil
}

func (disabledCache[T]) Invalidate(context.Context, ...store.InvalidateOption) error {
	return nil
}

func (disabledCache[T]) Clear(context.Context) error {
	return nil
}

func (disabledCache[T]) GetType() string {
	return "noop"
}
