package db

import (
	"context"
	"sync"
	"time"
)

type memItem struct {
	payload []byte
	at      time.Time
}

type memStore struct {
	mu    sync.RWMutex
	items map[string]memItem
	now   func() time.Time
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]memItem), now: time.Now}
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[key]
	if !ok {
		return nil, time.Time{}, ErrNotFound
	}
	return append([]byte(nil), it.payload...), it.at, nil
}

func (m *memStore) Put(ctx context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memItem{payload: append([]byte(nil), payload...), at: m.now()}
	return nil
}

func (m *memStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = map[string]memItem{}
	return nil
}
