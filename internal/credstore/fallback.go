package credstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const fallbackDBFile = "store.db"

// FallbackStore is the plain key-value backend: a single sqlite table at
// <dir>/store.db. Values are stored unencrypted; it is used only when the
// secure backend is unavailable on this host.
type FallbackStore struct {
	db *sql.DB
}

// NewFallbackStore opens or creates the sqlite database under dir.
func NewFallbackStore(dir string) (*FallbackStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	dbPath := filepath.Join(dir, fallbackDBFile)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &FallbackStore{db: db}, nil
}

// Name identifies the backend in logs.
func (f *FallbackStore) Name() string { return "fallback" }

// Close releases the underlying database handle.
func (f *FallbackStore) Close() error {
	return f.db.Close()
}

// Save upserts the value for the key.
func (f *FallbackStore) Save(key, value string) bool {
	_, err := f.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("credstore: save failed")
		return false
	}
	return true
}

// Get returns the value for the key, reporting absence for missing keys
// and read failures alike.
func (f *FallbackStore) Get(key string) (string, bool) {
	var value string
	err := f.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Str("key", key).Msg("credstore: read failed")
		}
		return "", false
	}
	return value, true
}

// Remove deletes the key. A key that was never written counts as removed.
func (f *FallbackStore) Remove(key string) bool {
	if _, err := f.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("credstore: remove failed")
		return false
	}
	return true
}

// ClearAll removes every known key, then unconditionally wipes the whole
// table. Failures are logged and swallowed; used only at logout.
func (f *FallbackStore) ClearAll() bool {
	ok := true
	for _, key := range KnownKeys {
		if !f.Remove(key) {
			ok = false
		}
	}
	if _, err := f.db.Exec(`DELETE FROM kv`); err != nil {
		log.Error().Err(err).Msg("credstore: wipe failed")
		ok = false
	}
	return ok
}

// wipeFallbackFiles deletes the fallback database files under dir. Called
// from SecureStore.ClearAll so a logout clears both backends even when the
// secure one is active.
func wipeFallbackFiles(dir string) {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		p := filepath.Join(dir, fallbackDBFile+suffix)
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", p).Msg("credstore: fallback wipe failed")
		}
	}
}
