package kvstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cybersib/cybersib/internal/logging"
)

// GetJSON decodes the value at key into v. It reports whether a value was
// decoded. An undecodable value counts as absent: it is logged at warn
// level and v is left untouched.
func GetJSON(ctx context.Context, s Store, log logging.Logger, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn(ctx, "discarding undecodable value", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and writes it at key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
