// Package store persists panel collections and session markers under string keys.
//
// Store is the byte level contract every backend implements. Cache layers JSON
// array (de)serialization on top so controllers read and write typed slices.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key was never written or was deleted.
var ErrNotFound = errors.New("store: key not found")

// Store is a durable string keyed value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Cache reads and writes typed collections as JSON arrays.
type Cache[T any] struct {
	store Store
}

// NewCache wraps s.
func NewCache[T any](s Store) *Cache[T] {
	return &Cache[T]{store: s}
}

// Read returns the persisted collection. present is false when nothing was
// ever written; an empty persisted array is present with zero records.
func (c *Cache[T]) Read(ctx context.Context, key string) (records []T, present bool, err error) {
	raw, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, true, nil
}

// Write replaces the collection stored under key.
func (c *Cache[T]) Write(ctx context.Context, key string, records []T) error {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Drop removes the collection so the next Read reports it absent.
func (c *Cache[T]) Drop(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// GetJSON decodes a single JSON value stored under key into dst.
func GetJSON(ctx context.Context, s Store, key string, dst any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// SetJSON stores v as JSON under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
