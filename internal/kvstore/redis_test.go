package kvstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "cs:")
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedis_SetGetRemove(t *testing.T) {
	s, mr := newRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users", []byte("[]")))

	raw, err := mr.Get("cs:users")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw, "keys carry the prefix")

	v, err := s.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	require.NoError(t, s.Remove(ctx, "users"))
	v, err = s.Get(ctx, "users")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRedis_SetMany(t *testing.T) {
	s, mr := newRedis(t)

	require.NoError(t, SetMany(context.Background(), s, map[string][]byte{"a": []byte("1"), "b": []byte("2")}))

	mr.CheckGet(t, "cs:a", "1")
	mr.CheckGet(t, "cs:b", "2")
}

func TestRedis_ServerDown(t *testing.T) {
	s, mr := newRedis(t)
	mr.Close()

	_, err := s.Get(context.Background(), "users")
	assert.Error(t, err)
	assert.Error(t, s.Ping(context.Background()))
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := Open(context.Background(), Options{Driver: DriverRedis, DSN: "redis://" + mr.Addr() + "/0", KeyPrefix: "x:"})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(context.Background(), "k", []byte("v")))
	mr.CheckGet(t, "x:k", "v")
}
