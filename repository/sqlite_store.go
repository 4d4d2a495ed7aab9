package repository

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a single-file DocumentStore backend: one row per document
// path. Suits deployments without an object store.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		path         TEXT PRIMARY KEY,
		data         BLOB NOT NULL,
		content_type TEXT DEFAULT '',
		updated_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Download(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE path = ?", path,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *SQLiteStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (path, data, content_type) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			data = excluded.data,
			content_type = excluded.content_type,
			updated_at = CURRENT_TIMESTAMP`,
		path, data, contentType,
	)
	return err
}

func (s *SQLiteStore) Exists(ctx context.Context, path string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE path = ?", path,
	).Scan(&count)
	return count > 0, err
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
