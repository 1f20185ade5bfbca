// package repositories provides persistence layer implementations for the key-value store.
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/reminis/internal/shared"
)

// KeyValueStore defines the durable key-value operations used by the photo store.
type KeyValueStore interface {
	GetItem(ctx context.Context, key string) (string, error) // GetItem returns the value for key or [shared.ErrKeyNotFound]
	SetItem(ctx context.Context, key, value string) error     // SetItem overwrites the value for key
	RemoveItem(ctx context.Context, key string) error         // RemoveItem deletes key; a missing key is not an error
}

// GetJSON reads key and decodes its JSON value into v.
func GetJSON(ctx context.Context, kv KeyValueStore, key string, v any) error {
	raw, err := kv.GetItem(ctx, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: malformed value for %s: %v", shared.ErrPersistence, key, err)
	}

	return nil
}

// SetJSON encodes v as JSON and stores it under key.
func SetJSON(ctx context.Context, kv KeyValueStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", shared.ErrPersistence, key, err)
	}
	return kv.SetItem(ctx, key, string(data))
}

// IsNotFound reports whether err is a key-value lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, shared.ErrKeyNotFound)
}
