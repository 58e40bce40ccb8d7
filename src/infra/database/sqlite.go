package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/contre95/lyricsync/src/features/lyrics"
	"github.com/contre95/lyricsync/src/music"
)

// SqliteStore is a SQLite implementation of the lyrics Store interface.
// Bundles are stored as JSON blobs keyed by track id; the versions map shape
// changes too often to be worth a relational schema.
type SqliteStore struct {
	db *sql.DB
}

var _ lyrics.Store = (*SqliteStore)(nil)

// NewSqliteStore creates a new SqliteStore.
func NewSqliteStore(path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &SqliteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS lyrics (
			track_id TEXT PRIMARY KEY,
			bundle TEXT NOT NULL,
			active_provider TEXT NOT NULL,
			created_at TEXT,
			updated_at TEXT
		);
	`)
	return err
}

// Close closes the underlying database handle.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

// GetBundle returns the cached bundle for a track, or (nil, nil) when absent.
func (s *SqliteStore) GetBundle(ctx context.Context, trackID string) (*music.Bundle, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT bundle FROM lyrics WHERE track_id = ?
	`, trackID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var bundle music.Bundle
	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// PutBundle inserts or replaces the bundle for a track.
func (s *SqliteStore) PutBundle(ctx context.Context, trackID string, bundle *music.Bundle) error {
	raw, err := json.Marshal(bundle)
	if err != nil {
		return err
	}
	now := time.Now().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO lyrics (track_id, bundle, active_provider, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(track_id) DO UPDATE SET
			bundle = excluded.bundle,
			active_provider = excluded.active_provider,
			updated_at = excluded.updated_at
	`, trackID, string(raw), string(bundle.ActiveProvider), now, now)
	return err
}

// AllBundles returns every cached bundle keyed by track id.
func (s *SqliteStore) AllBundles(ctx context.Context) (map[string]*music.Bundle, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT track_id, bundle FROM lyrics`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bundles := make(map[string]*music.Bundle)
	for rows.Next() {
		var trackID, raw string
		if err := rows.Scan(&trackID, &raw); err != nil {
			return nil, err
		}
		var bundle music.Bundle
		if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
			slog.Warn("Skipping undecodable cached bundle", "trackID", trackID, "error", err)
			continue
		}
		bundles[trackID] = &bundle
	}
	return bundles, rows.Err()
}

// DeleteAll empties the cache.
func (s *SqliteStore) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM lyrics`)
	return err
}

// MigrateLegacyCache imports a pre-SQLite JSON cache file, a single
// {trackID: bundle} object, and renames it out of the way afterwards so the
// import runs once.
func (s *SqliteStore) MigrateLegacyCache(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var legacy map[string]*music.Bundle
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}

	imported := 0
	for trackID, bundle := range legacy {
		if trackID == "" || bundle == nil {
			continue
		}
		existing, err := s.GetBundle(ctx, trackID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := s.PutBundle(ctx, trackID, bundle); err != nil {
			return err
		}
		imported++
	}

	if err := os.Rename(path, path+".imported"); err != nil {
		slog.Warn("Could not rename imported legacy cache", "path", path, "error", err)
	}
	slog.Info("Legacy lyrics cache imported", "path", path, "bundles", imported)
	return nil
}
