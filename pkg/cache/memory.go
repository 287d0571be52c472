package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	"tikiti/pkg/logger"
)

// sweepEvery is how many writes pass between full sweeps of expired entries
const sweepEvery = 64

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// memoryService keeps JSON-encoded values in process, for running without Redis
type memoryService struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	writes  int
	now     func() time.Time
	log     *logger.Logger
}

func NewMemoryService(log *logger.Logger) Service {
	return &memoryService{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		log:     log,
	}
}

func (m *memoryService) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	entry, ok := m.lookup(key)
	m.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

func (m *memoryService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	entry, err := m.encode(value, ttl)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.store(key, entry)
	m.mu.Unlock()
	return nil
}

func (m *memoryService) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	entry, err := m.encode(value, ttl)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lookup(key); ok {
		return false, nil
	}
	m.store(key, entry)
	return true, nil
}

func (m *memoryService) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// DeletePattern supports the glob subset used for invalidation ("*", "?")
func (m *memoryService) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return fmt.Errorf("cache pattern error: %w", err)
		}
		if matched {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *memoryService) Exists(ctx context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lookup(key)
	return ok
}

func (m *memoryService) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	return getOrSet(ctx, m, m.log, key, ttl, fetcher, dest)
}

func (m *memoryService) Ping(ctx context.Context) error {
	return nil
}

// lookup must be called with mu held. Expired entries are evicted on read.
func (m *memoryService) lookup(key string) (memoryEntry, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if entry.expired(m.now()) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

// store must be called with mu held. Every sweepEvery writes it drops all
// expired entries, so keys that are never read again do not pile up.
func (m *memoryService) store(key string, entry memoryEntry) {
	m.entries[key] = entry
	m.writes++
	if m.writes%sweepEvery == 0 {
		m.sweep()
	}
}

func (m *memoryService) sweep() {
	now := m.now()
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
		}
	}
}

func (m *memoryService) encode(value interface{}, ttl time.Duration) (memoryEntry, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return memoryEntry{}, fmt.Errorf("cache marshal error: %w", err)
	}
	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	return entry, nil
}
