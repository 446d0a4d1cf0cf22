package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type memEntry struct {
	data []byte
	exp  time.Time // zero means no expiry
}

// Memory is an in-process Cache.  Expired entries are dropped when read
// and swept on every write.
type Memory struct {
	mu    sync.Mutex
	clock clockwork.Clock
	items map[string]memEntry
}

// NewMemory returns an empty in-process cache.  A nil clock uses the real
// clock.
func NewMemory(clock clockwork.Clock) *Memory {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Memory{clock: clock, items: make(map[string]memEntry)}
}

func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	e, ok := m.items[key]
	if ok && !e.exp.IsZero() && !m.clock.Now().Before(e.exp) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(e.data, dst)
}

func (m *Memory) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e := memEntry{data: data}
	if ttl > 0 {
		e.exp = m.clock.Now().Add(ttl)
	}
	m.mu.Lock()
	m.sweepLocked()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) sweepLocked() {
	now := m.clock.Now()
	for k, e := range m.items {
		if !e.exp.IsZero() && !now.Before(e.exp) {
			delete(m.items, k)
		}
	}
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *Memory) Clear(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	return nil
}
