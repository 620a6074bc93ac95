package kvstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Batcher is implemented by stores that can write several keys at once.
type Batcher interface {
	SetMany(ctx context.Context, values map[string][]byte) error
}

// Options select and configure a driver.
type Options struct {
	Driver    string
	DSN       string
	KeyPrefix string
}

// Open returns the store for opts.Driver. SQL drivers run their migrations
// before returning.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		return OpenSQLite(ctx, opts.DSN)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.DSN)
	case DriverRedis:
		ro, err := redis.ParseURL(opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("redis dsn: %w", err)
		}
		s := NewRedisStore(redis.NewClient(ro), opts.KeyPrefix)
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// SetMany writes values through s, batched when s supports it.
func SetMany(ctx context.Context, s Store, values map[string][]byte) error {
	if b, ok := s.(Batcher); ok {
		return b.SetMany(ctx, values)
	}
	for k, v := range values {
		if err := s.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}
