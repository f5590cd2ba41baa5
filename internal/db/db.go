package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store is a session-scoped cache of encoded payloads keyed by digest.
// Nothing outlives the process.
type Store interface {
	Get(ctx context.Context, key string) (payload []byte, storedAt time.Time, err error)
	Put(ctx context.Context, key string, payload []byte) error
	Close() error
}

var ErrNotFound = errors.New("not found")

// Backends accepted by Open
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendOff    = "off"
)

// Open returns a Store for backend. Empty means memory.
func Open(ctx context.Context, backend string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendMemory:
		return newMemStore(), nil
	case BackendSQLite:
		s, err := openSQLite(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendOff:
		return offStore{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

type offStore struct{}

func (offStore) Get(context.Context, string) ([]byte, time.Time, error) {
	return nil, time.Time{}, ErrNotFound
}
func (offStore) Put(context.Context, string, []byte) error { return nil }
func (offStore) Close() error { return nil }
