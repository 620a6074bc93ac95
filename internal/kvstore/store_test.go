package kvstore

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersib/cybersib/internal/logging"
)

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'X'

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)

	out[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Driver: "etcd"})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Driver: DriverRedis, DSN: "not a url"})
	assert.Error(t, err)
}

// plainStore hides MemoryStore.SetMany.
type plainStore struct{ m *MemoryStore }

func (p plainStore) Get(ctx context.Context, k string) ([]byte, error) { return p.m.Get(ctx, k) }
func (p plainStore) Set(ctx context.Context, k string, v []byte) error { return p.m.Set(ctx, k, v) }
func (p plainStore) Remove(ctx context.Context, k string) error        { return p.m.Remove(ctx, k) }
func (p plainStore) Close() error                                      { return nil }

func TestSetMany_FallsBackToSet(t *testing.T) {
	s := plainStore{NewMemoryStore()}
	ctx := context.Background()

	require.NoError(t, SetMany(ctx, s, map[string][]byte{"a": []byte("1")}))
	v, _ := s.Get(ctx, "a")
	assert.Equal(t, []byte("1"), v)
}

func TestGetJSON_DecodeFailureIsAbsent(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users", []byte("{corrupt")))

	users := []string{"keep"}
	found, err := GetJSON(ctx, s, log, "users", &users)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, []string{"keep"}, users)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "key=users")
}

func TestGetJSON_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, s, "settings", map[string]string{"theme": "dark"}))

	var got map[string]string
	found, err := GetJSON(ctx, s, logging.Nop(), "settings", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "dark", got["theme"])

	found, err = GetJSON(ctx, s, logging.Nop(), "absent", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetJSON_EncodeError(t *testing.T) {
	err := SetJSON(context.Background(), NewMemoryStore(), "bad", make(chan int))
	assert.ErrorContains(t, err, "encode bad")
}
