package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/gatekeeper/internal/model"
)

// SQLiteStore implements Store using SQLite. Every Save appends a version row.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS brain_versions (
		id          TEXT PRIMARY KEY,
		key         TEXT NOT NULL,
		version     INTEGER NOT NULL,
		data        TEXT NOT NULL,
		size_bytes  INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		UNIQUE (key, version)
	);
	CREATE INDEX IF NOT EXISTS idx_brain_versions_key ON brain_versions(key, version DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (*model.Brain, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM brain_versions WHERE key = ? ORDER BY version DESC LIMIT 1`,
		key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return Decode([]byte(data))
}

// LoadVersion returns a specific saved version of key.
func (s *SQLiteStore) LoadVersion(ctx context.Context, key string, version int) (*model.Brain, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM brain_versions WHERE key = ? AND version = ?`,
		key, version).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s version %d", ErrNotFound, key, version)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s version %d: %w", key, version, err)
	}
	return Decode([]byte(data))
}

// Save appends b as the next version of key. Saving bytes identical to the
// latest version returns that version without adding a row.
func (s *SQLiteStore) Save(ctx context.Context, key string, b *model.Brain) (*Version, error) {
	data, err := Encode(b)
	if err != nil {
		return nil, fmt.Errorf("encode brain: %w", err)
	}

	now := time.Now().UTC()
	id := s.newID(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		latest    Version
		latestRaw string
		createdAt string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, version, data, size_bytes, created_at FROM brain_versions
		 WHERE key = ? ORDER BY version DESC LIMIT 1`, key).
		Scan(&latest.ID, &latest.Version, &latestRaw, &latest.SizeBytes, &createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("read version: %w", err)
	case latestRaw == string(data):
		// Unchanged: the latest version already holds these bytes.
		latest.Key = key
		latest.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		return &latest, nil
	}
	version := latest.Version + 1

	_, err = tx.ExecContext(ctx,
		`INSERT INTO brain_versions (id, key, version, data, size_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, key, version, string(data), len(data), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &Version{
		ID:        id,
		Key:       key,
		Version:   version,
		SizeBytes: len(data),
		CreatedAt: now,
	}, nil
}

// Versions lists the saved versions of key, newest first.
func (s *SQLiteStore) Versions(ctx context.Context, key string) ([]Version, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, key, version, size_bytes, created_at FROM brain_versions
		 WHERE key = ? ORDER BY version DESC`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		var v Version
		var createdAt string
		if err := rows.Scan(&v.ID, &v.Key, &v.Version, &v.SizeBytes, &createdAt); err != nil {
			return nil, err
		}
		v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// Prune deletes all but the newest keep versions of key.
func (s *SQLiteStore) Prune(ctx context.Context, key string, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM brain_versions
		 WHERE key = ? AND version <= (SELECT MAX(version) FROM brain_versions WHERE key = ?) - ?`,
		key, key, keep)
	if err != nil {
		return 0, fmt.Errorf("prune %s: %w", key, err)
	}
	return res.RowsAffected()
}

// Reset deletes every version of key.
func (s *SQLiteStore) Reset(ctx context.Context, key string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM brain_versions WHERE key = ?`, key)
	if err != nil {
		return 0, fmt.Errorf("reset %s: %w", key, err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
