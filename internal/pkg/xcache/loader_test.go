package xcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_CachesValue(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader[*profile](NewMemoryWithOptions[*profile](time.Minute, time.Minute))

	var calls int32

	load := func(context.Context) (*profile, error) {
		atomic.AddInt32(&calls, 1)
		return &profile{Name: "alice"}, nil
	}

	for range 3 {
		value, err := loader.Get(ctx, "user|a@example.org", load)
		require.NoError(t, err)
		assert.Equal(t, "alice", value.Name)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestLoader_SingleFlight(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader[*profile](NewNoop[*profile]())

	var (
		calls   int32
		release = make(chan struct{})
		started = make(chan struct{})
		once    sync.Once
	)

	load := func(context.Context) (*profile, error) {
		atomic.AddInt32(&calls, 1)
		once.Do(func() { close(started) })
		<-release

		return &profile{Name: "bob"}, nil
	}

	const workers = 10

	var wg sync.WaitGroup

	results := make([]*profile, workers)

	for i := range workers {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			value, err := loader.Get(ctx, "user|b@example.org", load)
			assert.NoError(t, err)

			results[i] = value
		}(i)
	}

	<-started
	// Let the other callers join the in-flight load before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, "bob", r.Name)
	}
}

func TestLoader_SkipDoesNotStore(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(
		NewMemoryWithOptions[*profile](time.Minute, time.Minute),
		WithSkip(func(p *profile) bool { return p == nil }),
	)

	var calls int32

	load := func(context.Context) (*profile, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	}

	for range 2 {
		value, err := loader.Get(ctx, "user|ghost@example.org", load)
		require.NoError(t, err)
		assert.Nil(t, value)
	}

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestLoader_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader[string](NewMemoryWithOptions[string](time.Minute, time.Minute))

	_, err := loader.Get(ctx, "k", func(context.Context) (string, error) {
		return "", errors.New("directory unavailable")
	})
	require.EqualError(t, err, "directory unavailable")

	value, err := loader.Get(ctx, "k", func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
}

func TestLoader_Clear(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader[string](NewMemoryWithOptions[string](time.Minute, time.Minute))

	_, err := loader.Get(ctx, "k", func(context.Context) (string, error) { return "v1", nil })
	require.NoError(t, err)

	require.NoError(t, loader.Clear(ctx))

	value, err := loader.Get(ctx, "k", func(context.Context) (string, error) { return "v2", nil })
	require.NoError(t, err)
	assert.Equal(t, "v2", value)

	require.NoError(t, loader.Delete(ctx, "k"))

	value, err = loader.Get(ctx, "k", func(context.Context) (string, error) { return "v3", nil })
	require.NoError(t, err)
	assert.Equal(t, "v3", value)
}

func TestLoader_LeaderCancellationDoesNotFailWaiters(t *testing.T) {
	loader := NewLoader[*profile](NewMemoryWithOptions[*profile](time.Minute, time.Minute))

	var (
		calls   int32
		release = make(chan struct{})
		started = make(chan struct{})
	)

	load := func(ctx context.Context) (*profile, error) {
		atomic.AddInt32(&calls, 1)
		close(started)

		select {
		case <-release:
			return &profile{Name: "carol"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)

	go func() {
		_, err := loader.Get(leaderCtx, "user|c@example.org", load)
		leaderErr <- err
	}()

	<-started

	waiter := make(chan *profile, 1)
	waiterErr := make(chan error, 1)

	go func() {
		value, err := loader.Get(context.Background(), "user|c@example.org", load)
		waiter <- value
		waiterErr <- err
	}()

	// Let the waiter join the in-flight load before the leader goes away.
	time.Sleep(50 * time.Millisecond)
	cancelLeader()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(release)

	value := <-waiter
	require.NoError(t, <-waiterErr)
	require.NotNil(t, value)
	assert.Equal(t, "carol", value.Name)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	cached, err := loader.Get(context.Background(), "user|c@example.org", func(context.Context) (*profile, error) {
		return nil, errors.New("must be served from cache")
	})
	require.NoError(t, err)
	assert.Equal(t, "carol", cached.Name)
}

func TestLoader_SetOptionsExpiration(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(
		NewMemoryWithOptions[string](time.Minute, time.Minute),
		WithSetOptions[string](WithExpiration(20*time.Millisecond)),
	)

	var calls int32

	load := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "v", nil
	}

	_, err := loader.Get(ctx, "k", load)
	require.NoError(t, err)
	_, err = loader.Get(ctx, "k", load)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	time.Sleep(50 * time.Millisecond)

	_, err = loader.Get(ctx, "k", load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
