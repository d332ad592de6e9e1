package live

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Load(t *testing.T) {
	var calls int32

	cache := NewCache(Options[[]string]{
		Name: "projects",
		RefreshFunc: func(ctx context.Context) ([]string, error) {
			n := atomic.AddInt32(&calls, 1)
			if n == 2 {
				return nil, errors.New("catalog unavailable")
			}

			return []string{"ee4j.jakartaee-platform"}, nil
		},
	})
	defer cache.Stop()

	assert.Empty(t, cache.GetData())
	assert.True(t, cache.GetLastUpdate().IsZero())

	require.NoError(t, cache.Load(context.Background()))
	assert.Equal(t, []string{"ee4j.jakartaee-platform"}, cache.GetData())

	updated := cache.GetLastUpdate()
	assert.False(t, updated.IsZero())

	// A failed refresh keeps the previous snapshot.
	require.Error(t, cache.Load(context.Background()))
	assert.Equal(t, []string{"ee4j.jakartaee-platform"}, cache.GetData())
	assert.Equal(t, updated, cache.GetLastUpdate())
}

func TestCache_SingleFlight(t *testing.T) {
	var calls int32

	cache := NewCache(Options[string]{
		Name: "test_sf",
		RefreshFunc: func(ctx context.Context) (string, error) {
			atomic.AddInt32(&calls, 1)
			time.Sleep(100 * time.Millisecond)

			return "data", nil
		},
	})
	defer cache.Stop()

	done := make(chan struct{})

	for range 5 {
		go func() {
			_ = cache.Load(context.Background())

			done <- struct{}{}
		}()
	}

	for range 5 {
		<-done
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "data", cache.GetData())
}

func TestCache_PeriodicRefresh(t *testing.T) {
	var calls int32

	cache := NewCache(Options[string]{
		Name: "test_periodic",
		RefreshFunc: func(ctx context.Context) (string, error) {
			atomic.AddInt32(&calls, 1)
			return "periodic_data", nil
		},
		RefreshInterval: 50 * time.Millisecond,
	})
	defer cache.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "periodic_data", cache.GetData())
}

func TestCache_OnSwap(t *testing.T) {
	var oldValue, newValue string

	cache := NewCache(Options[string]{
		Name:         "test_onswap",
		InitialValue: "old_data",
		RefreshFunc: func(ctx context.Context) (string, error) {
			return "new_data", nil
		},
		OnSwap: func(old, new string) {
			oldValue = old
			newValue = new
		},
	})
	defer cache.Stop()

	require.NoError(t, cache.Load(context.Background()))
	assert.Equal(t, "old_data", oldValue)
	assert.Equal(t, "new_data", newValue)
}

func TestCache_Snapshot(t *testing.T) {
	cache := NewCache(Options[string]{
		Name:         "test_snapshot",
		InitialValue: "initial",
		RefreshFunc: func(ctx context.Context) (string, error) {
			return "loaded", nil
		},
	})
	defer cache.Stop()

	data, at := cache.Snapshot()
	assert.Equal(t, "initial", data)
	assert.True(t, at.IsZero())

	require.NoError(t, cache.Load(context.Background()))

	data, at = cache.Snapshot()
	assert.Equal(t, "loaded", data)
	assert.Equal(t, cache.GetLastUpdate(), at)
}

func TestCache_OnSwapPanicIsRecovered(t *testing.T) {
	cache := NewCache(Options[string]{
		Name: "test_onswap_panic",
		RefreshFunc: func(ctx context.Context) (string, error) {
			return "v", nil
		},
		OnSwap: func(old, new string) {
			panic("boom")
		},
	})
	defer cache.Stop()

	require.NoError(t, cache.Load(context.Background()))
	assert.Equal(t, "v", cache.GetData())
}

func TestCache_Stop(t *testing.T) {
	var calls int32

	cache := NewCache(Options[string]{
		Name: "test_stop",
		RefreshFunc: func(ctx context.Context) (string, error) {
			atomic.AddInt32(&calls, 1)
			return "data", nil
		},
		RefreshInterval: 20 * time.Millisecond,
	})

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 1
	}, time.Second, 5*time.Millisecond)

	cache.Stop()
	cache.Stop()

	time.Sleep(50 * time.Millisecond)

	before := atomic.LoadInt32(&calls)

	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, before, atomic.LoadInt32(&calls))
}

func TestCache_RefreshFuncRequired(t *testing.T) {
	assert.Panics(t, func() {
		NewCache(Options[string]{Name: "test_no_refreshfunc"})
	})
}
