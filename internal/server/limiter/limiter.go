// Package limiter throttles uploads per client.
package limiter

import (
	"context"
	"crypto/sha256"
	"sync"
	"time"
)

// Limiter decides whether a client may upload now.
type Limiter interface {
	// Allow consumes one unit for key. When it refuses, the duration tells
	// the client when to come back.
	Allow(ctx context.Context, key []byte) (bool, time.Duration, error)
}

// HashKey returns a stable hash for a client identifier to avoid keeping
// raw addresses in memory.
func HashKey(s string) []byte {
	h := sha256.Sum256([]byte(s))
	return h[:]
}

type window struct {
	start time.Time
	count int
}

// Memory is a fixed-window Limiter. A limit of 0 allows everything.
type Memory struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*window
}

func NewMemory(limit int, per time.Duration) *Memory {
	return &Memory{limit: limit, window: per, now: time.Now, clients: make(map[string]*window)}
}

func (m *Memory) Allow(_ context.Context, key []byte) (bool, time.Duration, error) {
	if m.limit <= 0 || m.window <= 0 {
		return true, 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.clients[string(key)]
	if !ok || now.Sub(w.start) >= m.window {
		m.evict(now)
		m.clients[string(key)] = &window{start: now, count: 1}
		return true, 0, nil
	}
	if w.count >= m.limit {
		return false, w.start.Add(m.window).Sub(now), nil
	}
	w.count++
	return true, 0, nil
}

// evict drops expired windows. Called with mu held.
func (m *Memory) evict(now time.Time) {
	for k, w := range m.clients {
		if now.Sub(w.start) >= m.window {
			delete(m.clients, k)
		}
	}
}
