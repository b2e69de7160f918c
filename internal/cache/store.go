package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps SQLite-backed persistence for scan results. Entries carry an
// absolute expiry; expired rows behave as misses and are pruned on read.
type Store struct {
	db *sql.DB
}

// Open initializes a SQLite database and runs minimal schema setup.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := configure(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("cache not initialized")
	}
	return s.db.PingContext(ctx)
}

func configure(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	schema := `
CREATE TABLE IF NOT EXISTS scan_cache (
  key         TEXT PRIMARY KEY,
  payload     TEXT NOT NULL,
  expires_at  TIMESTAMP NOT NULL
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Set stores or refreshes a cached scan payload until expiresAt.
func (s *Store) Set(ctx context.Context, key, payload string, expiresAt time.Time) error {
	if key == "" {
		return errors.New("key required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO scan_cache (key, payload, expires_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  payload=excluded.payload,
  expires_at=excluded.expires_at;
`, key, payload, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("set cache entry: %w", err)
	}
	return nil
}

// Get returns the cached payload for key if it has not expired; expired
// entries are pruned and reported as misses.
func (s *Store) Get(ctx context.Context, key string, now time.Time) (string, bool, error) {
	if key == "" {
		return "", false, errors.New("key required")
	}

	var payload string
	var expires time.Time
	err := s.db.QueryRowContext(ctx, `
SELECT payload, expires_at FROM scan_cache WHERE key = ?;
`, key).Scan(&payload, &expires)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cache entry: %w", err)
	}

	if expires.After(now.UTC()) {
		return payload, true, nil
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM scan_cache WHERE key = ?;`, key); err != nil {
		return "", false, fmt.Errorf("prune cache entry: %w", err)
	}
	return "", false, nil
}

// Purge deletes every expired entry and returns how many were removed.
func (s *Store) Purge(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scan_cache WHERE expires_at <= ?;`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}
