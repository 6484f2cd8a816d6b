// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package querycache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/ragscholar/pkg/types"
)

// Store persists encoded responses under a key until they expire.
type Store interface {
	// Get returns the value for key and whether a fresh entry existed.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Close() error
}

// OpenStore builds the store selected by cfg.Backend.
func OpenStore(cfg types.CacheConfig, log *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case types.CacheMemory, "":
		return NewMemoryStore(defaultMaxEntries), nil
	case types.CacheSQLite:
		return OpenSQLiteStore(cfg.Path, cfg.SweepInterval, log)
	case types.CacheNone:
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q: use memory, sqlite, or none", cfg.Backend)
	}
}

const defaultMaxEntries = 1024

// MemoryStore keeps entries in process memory. When full it drops expired
// entries first, then the oldest.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]memEntry
	maxEntries int
	now        func() time.Time
}

type memEntry struct {
	value   []byte
	stored  time.Time
	expires time.Time
}

// NewMemoryStore returns a MemoryStore holding at most maxEntries entries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &MemoryStore{
		entries:    make(map[string]memEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.evictLocked(now)
	}
	s.entries[key] = memEntry{value: value, stored: now, expires: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) evictLocked(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
		}
	}
	if len(s.entries) < s.maxEntries {
		return
	}
	var oldestKey string
	var oldest time.Time
	for k, e := range s.entries {
		if oldestKey == "" || e.stored.Before(oldest) {
			oldestKey, oldest = k, e.stored
		}
	}
	delete(s.entries, oldestKey)
}

// Len returns the number of entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) Close() error { return nil }

// NopStore never stores anything.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopStore) Close() error { return nil }
