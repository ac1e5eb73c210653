// Package store is the SQLite-backed persistence for favorite records.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"marketdash/internal/domain"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		path = "data/marketdash.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=3000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS favorites (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			asset_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			created_at TEXT DEFAULT (datetime('now')),
			UNIQUE(user_id, asset_id, kind)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_user ON favorites(user_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Add inserts a favorite record. Re-adding an existing favorite is a
// no-op rather than an error.
func (s *Store) Add(ctx context.Context, rec domain.FavoriteRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites (user_id, asset_id, kind) VALUES (?, ?, ?)`,
		rec.UserID, rec.AssetID, string(rec.Kind),
	)
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, rec domain.FavoriteRecord) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND asset_id = ? AND kind = ?`,
		rec.UserID, rec.AssetID, string(rec.Kind),
	)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, userID string) ([]domain.FavoriteRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, asset_id, kind FROM favorites WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()
	var out []domain.FavoriteRecord
	for rows.Next() {
		var rec domain.FavoriteRecord
		var kind string
		if err := rows.Scan(&rec.UserID, &rec.AssetID, &kind); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		rec.Kind = domain.FavoriteKind(kind)
		out = append(out, rec)
	}
	return out, rows.Err()
}
