package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// openSQLite opens a private in-memory database. One connection keeps every
// query on the same memory image.
func openSQLite(ctx context.Context) (*sqliteStore, error) {
	dbh, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	dbh.SetMaxOpenConns(1)
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return &sqliteStore{db: dbh, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS rankings (
  key TEXT PRIMARY KEY,
  payload BLOB NOT NULL,
  stored_at INTEGER NOT NULL
);`)
	return err
}

func (s *sqliteStore) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	var (
		payload []byte
		at      int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT payload, stored_at FROM rankings WHERE key = ?`, key).Scan(&payload, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	return payload, time.Unix(0, at).UTC(), nil
}

func (s *sqliteStore) Put(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO rankings(key, payload, stored_at) VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at`,
		key, payload, s.now().UnixNano())
	return err
}

func (s *sqliteStore) Close() error { return s.db.Close() }
