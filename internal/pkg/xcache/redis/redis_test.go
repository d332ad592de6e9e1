package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	lib_store "github.com/eko/gocache/lib/v4/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis "github.com/redis/go-redis/v9"
)

type user struct {
	Name string `json:"name"`
	Mail string `json:"mail"`
}

func newStore(t *testing.T, prefix string, options ...lib_store.Option) (*RedisStore[*user], *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore[*user](client, prefix, options...), mr
}

func TestRedisStore_SetGet(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t, "ecagate:")

	err := store.Set(ctx, "user|a@example.org", &user{Name: "alice", Mail: "a@example.org"})
	require.NoError(t, err)
	assert.True(t, mr.Exists("ecagate:user|a@example.org"))

	value, err := store.Get(ctx, "user|a@example.org")
	require.NoError(t, err)

	got, ok := value.(*user)
	require.True(t, ok)
	assert.Equal(t, "alice", got.Name)
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := newStore(t, "ecagate:")

	_, err := store.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, lib_store.NotFound{})
}

func TestRedisStore_GetWithTTL(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t, "ecagate:", lib_store.WithExpiration(time.Minute))

	require.NoError(t, store.Set(ctx, "k", &user{Name: "bob"}))

	value, ttl, err := store.GetWithTTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "bob", value.(*user).Name)
	assert.Equal(t, time.Minute, ttl)
}

func TestRedisStore_NonStringKey(t *testing.T) {
	store, _ := newStore(t, "ecagate:")

	err := store.Set(context.Background(), 42, &user{})
	require.Error(t, err)

	_, err = store.Get(context.Background(), 42)
	assert.ErrorIs(t, err, lib_store.NotFound{})
}

func TestRedisStore_ClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t, "ecagate:")

	require.NoError(t, mr.Set("other:key", "x"))
	require.NoError(t, store.Set(ctx, "a", &user{Name: "a"}))
	require.NoError(t, store.Set(ctx, "b", &user{Name: "b"}))

	require.NoError(t, store.Clear(ctx))

	assert.False(t, mr.Exists("ecagate:a"))
	assert.False(t, mr.Exists("ecagate:b"))
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisStore_ClearWithoutPrefix(t *testing.T) {
	store, _ := newStore(t, "")
	require.Error(t, store.Clear(context.Background()))
}

func TestRedisStore_InvalidateTags(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t, "ecagate:")

	require.NoError(t, store.Set(ctx, "a", &user{Name: "a"}, lib_store.WithTags([]string{"users"})))
	require.NoError(t, store.Set(ctx, "b", &user{Name: "b"}))

	require.NoError(t, store.Invalidate(ctx, lib_store.WithInvalidateTags([]string{"users"})))

	assert.False(t, mr.Exists("ecagate:a"))
	assert.True(t, mr.Exists("ecagate:b"))
}

func TestRedisStore_GetType(t *testing.T) {
	store, _ := newStore(t, "x:")
	assert.Equal(t, RedisType, store.GetType())
}
