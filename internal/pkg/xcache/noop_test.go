package xcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()
	cache := NewNoop[string]()

	require.NoError(t, cache.Set(ctx, "user|a@example.org", "alice"))

	_, err := cache.Get(ctx, "user|a@example.org")
	assert.ErrorIs(t, err, ErrCacheDisabled)

	assert.NoError(t, cache.Delete(ctx, "user|a@example.org"))
	assert.NoError(t, cache.Invalidate(ctx))
	assert.NoError(t, cache.Clear(ctx))
	assert.Equal(t, "noop", cache.GetType())
}
