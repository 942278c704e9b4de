package cache

import (
	"context"
	"sync"
	"time"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/port"
)

// MemoryAdapter is a process-local result cache used when redis is
// unreachable at startup and in tests. The per-key mutex gives strict
// single-flight inside one process; across processes there is no
// coordination, matching the relaxed contract.
type MemoryAdapter struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	locks   map[string]*sync.Mutex
	now     func() time.Time
}

type memoryEntry struct {
	value     domain.DerivedPrice
	expiresAt time.Time
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		entries: make(map[string]memoryEntry),
		locks:   make(map[string]*sync.Mutex),
		now:     time.Now,
	}
}

func (m *MemoryAdapter) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute port.ComputeFunc) (domain.DerivedPrice, error) {
	keyLock := m.lockFor(key)
	keyLock.Lock()
	defer keyLock.Unlock()

	if value, ok := m.get(key); ok {
		return value, nil
	}

	value, err := compute(ctx)
	if err != nil {
		return domain.DerivedPrice{}, err
	}

	m.put(key, value, ttl)
	return value, nil
}

func (m *MemoryAdapter) Set(_ context.Context, key string, value domain.DerivedPrice, ttl time.Duration) error {
	keyLock := m.lockFor(key)
	keyLock.Lock()
	defer keyLock.Unlock()

	m.put(key, value, ttl)
	return nil
}

func (m *MemoryAdapter) Ping(context.Context) error {
	return nil
}

func (m *MemoryAdapter) lockFor(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

func (m *MemoryAdapter) get(key string) (domain.DerivedPrice, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok || m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		return domain.DerivedPrice{}, false
	}
	return entry.value, true
}

func (m *MemoryAdapter) put(key string, value domain.DerivedPrice, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
}
