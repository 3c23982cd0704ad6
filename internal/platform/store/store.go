// Package store persists named collections as JSON text blobs in a key-value
// backend, mirroring the browser local storage the dashboard was built on.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the persisted collections.
const (
	KeyUsers        = "systemUsers"
	KeySession      = "adminSession"
	KeyActivityLogs = "activityLogs"
	KeyStockLogs    = "stockLogs"
	KeyProducts     = "stockProducts"
	KeyCategories   = "stockCategories"
)

var (
	// ErrNotFound indicates the key holds no value.
	ErrNotFound = errors.New("store: record not found")
	// ErrConflict indicates an atomic update kept losing against concurrent writers.
	ErrConflict = errors.New("store: concurrent modification")
	// ErrUndeclaredKey indicates a write to a key not declared for the update.
	ErrUndeclaredKey = errors.New("store: key not declared for update")
	// ErrCorrupt indicates the stored text is not valid JSON for the target type.
	ErrCorrupt = errors.New("store: corrupt record")
)

// Store is a key-value record store. Update is the only way to read-modify-write:
// fn sees a consistent snapshot of the declared keys and its changes are
// committed atomically, or not at all when fn returns an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Update(ctx context.Context, keys []string, fn func(*Records) error) error
	Close() error
}

// Records is the working set of one atomic update.
type Records struct {
	values  map[string][]byte
	present map[string]bool
	dirty   map[string]bool
}

func newRecords(keys []string) *Records {
	r := &Records{
		values:  make(map[string][]byte, len(keys)),
		present: make(map[string]bool, len(keys)),
		dirty:   make(map[string]bool, len(keys)),
	}
	for _, k := range keys {
		r.values[k] = nil
	}
	return r
}

func (r *Records) load(key string, data []byte) {
	r.values[key] = data
	r.present[key] = true
}

// Raw returns the current bytes stored at key.
func (r *Records) Raw(key string) ([]byte, bool) {
	if !r.present[key] {
		return nil, false
	}
	return r.values[key], true
}

// SetRaw replaces the bytes at key.
func (r *Records) SetRaw(key string, data []byte) error {
	if _, ok := r.values[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUndeclaredKey, key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	r.values[key] = cp
	r.present[key] = true
	r.dirty[key] = true
	return nil
}

// Remove deletes key when the update commits.
func (r *Records) Remove(key string) error {
	if _, ok := r.values[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUndeclaredKey, key)
	}
	r.values[key] = nil
	r.present[key] = false
	r.dirty[key] = true
	return nil
}

// changes lists modified keys; a nil value means delete.
func (r *Records) changes() map[string][]byte {
	out := make(map[string][]byte, len(r.dirty))
	for k := range r.dirty {
		if r.present[k] {
			out[k] = r.values[k]
		} else {
			out[k] = nil
		}
	}
	return out
}

// Decode unmarshals the JSON at key into a T. The bool reports whether the key
// held a value.
func Decode[T any](r *Records, key string) (T, bool, error) {
	var out T
	data, ok := r.Raw(key)
	if !ok {
		return out, false, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, true, fmt.Errorf("decode %s: %w: %w", key, ErrCorrupt, err)
	}
	return out, true, nil
}

// Encode marshals v as JSON into key.
func Encode(r *Records, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	return r.SetRaw(key, data)
}

// Load reads and decodes a single collection outside of an update.
func Load[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var out T
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, true, fmt.Errorf("decode %s: %w: %w", key, ErrCorrupt, err)
	}
	return out, true, nil
}

// Save encodes and writes a single collection.
func Save(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
