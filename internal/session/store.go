package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Store keeps per-session state keyed by an opaque id. Reads slide the expiry.
type Store[T any] interface {
	Create(ctx context.Context, state T) (string, error)
	Get(ctx context.Context, id string) (T, error)
	Save(ctx context.Context, id string, state T) error
	Delete(ctx context.Context, id string) error
}

func NewID() string {
	return uuid.NewString()
}

type memoryEntry[T any] struct {
	state     T
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Expired entries are dropped when read
// and swept from writes at most once per TTL.
type MemoryStore[T any] struct {
	ttl       time.Duration
	now       func() time.Time
	entries   map[string]memoryEntry[T]
	nextSweep time.Time
	mu        sync.Mutex
}

func NewMemoryStore[T any](ttl time.Duration) *MemoryStore[T] {
	return &MemoryStore[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry[T]),
	}
}

func (m *MemoryStore[T]) Create(ctx context.Context, state T) (string, error) {
	id := NewID()
	return id, m.Save(ctx, id, state)
}

func (m *MemoryStore[T]) Get(_ context.Context, id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	entry, ok := m.entries[id]
	if !ok {
		return zero, ErrSessionNotFound
	}
	now := m.now()
	if !now.Before(entry.expiresAt) {
		delete(m.entries, id)
		return zero, ErrSessionNotFound
	}

	entry.expiresAt = now.Add(m.ttl)
	m.entries[id] = entry
	return entry.state, nil
}

func (m *MemoryStore[T]) Save(_ context.Context, id string, state T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !now.Before(m.nextSweep) {
		m.sweep(now)
	}
	m.entries[id] = memoryEntry[T]{state: state, expiresAt: now.Add(m.ttl)}
	return nil
}

// sweep removes expired entries. Callers hold mu.
func (m *MemoryStore[T]) sweep(now time.Time) {
	for id, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, id)
		}
	}
	m.nextSweep = now.Add(m.ttl)
}

func (m *MemoryStore[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}

// Len reports the number of stored sessions, including expired ones not yet swept.
func (m *MemoryStore[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
