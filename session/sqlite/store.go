// Package sqlite provides a SQLite-backed session state store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrEthical07/goAuthClient/session"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS auth_state (
	profile    TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store persists one state row per profile.
type Store struct {
	sqlDB   *sql.DB
	profile string
	now     func() time.Time
}

var _ session.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and prepares the schema.
func Open(path, profile string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = "default"
	}
	return &Store{sqlDB: sqlDB, profile: profile, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Load returns the persisted state or [session.ErrNotFound].
func (s *Store) Load(ctx context.Context) (*session.State, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	var data []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM auth_state WHERE profile = ?`, s.profile).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("load auth state: %w", err)
	}
	return session.Decode(data)
}

// Save upserts the state row.
func (s *Store) Save(ctx context.Context, state *session.State) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	data, err := session.Encode(state)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO auth_state (profile, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(profile) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		s.profile, data, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save auth state: %w", err)
	}
	return nil
}

// Clear deletes the state row.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM auth_state WHERE profile = ?`, s.profile); err != nil {
		return fmt.Errorf("clear auth state: %w", err)
	}
	return nil
}
