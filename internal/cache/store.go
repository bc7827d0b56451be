// Package cache keeps short-lived copies of the static GTFS collections so
// that sessions opening the same list view do not each hit the data source.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store holds JSON encoded values under string keys with a TTL. A miss is
// reported as (false, nil).
type Store interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Close() error
}

// MemoryStore is the in-process Store used when Redis is disabled.
type MemoryStore struct {
	items *gocache.Cache
}

func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{items: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (s *MemoryStore) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	raw, ok := s.items.Get(key)
	if !ok {
		return false, nil
	}
	data, ok := raw.([]byte)
	if !ok {
		return false, fmt.Errorf("unexpected cache entry type %T", raw)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("json unmarshal: %w", err)
	}
	return true, nil
}

// SetJSON stores the encoded value, so later mutation of value does not leak
// into the cache.
func (s *MemoryStore) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	s.items.Set(key, data, ttl)
	return nil
}

func (s *MemoryStore) Len() int { return s.items.ItemCount() }

func (s *MemoryStore) Close() error {
	s.items.Flush()
	return nil
}
