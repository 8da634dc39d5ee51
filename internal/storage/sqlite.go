package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"spesa/internal/core"

	_ "modernc.org/sqlite"
)

// historyDepth is how many previous versions of a document are kept.
const historyDepth = 20

// SQLiteStore keeps the ledger document in a local SQLite database, with a
// short history of previous versions.
type SQLiteStore struct {
	db  *sql.DB
	key string
}

func NewSQLiteStore(dbPath, key string) (*SQLiteStore, error) {
	if key == "" {
		key = DefaultKey
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between the saver and readers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, key: key}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns the stored ledger, or nil when nothing was saved under the key.
func (s *SQLiteStore) Load(ctx context.Context) (*core.Ledger, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE key = ?`, s.key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select document %s: %w", s.key, err)
	}
	return DecodeDocument([]byte(body))
}

// Save upserts the document, bumps its version and records the new body in
// the history table, trimming history to the last versions.
func (s *SQLiteStore) Save(ctx context.Context, l *core.Ledger) error {
	data, err := EncodeDocument(l)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var version int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO documents (key, body, version, updated_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			body = excluded.body,
			version = documents.version + 1,
			updated_at = excluded.updated_at
		RETURNING version`, s.key, string(data), now).Scan(&version)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", s.key, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO document_history (key, version, body, saved_at) VALUES (?, ?, ?, ?)`,
		s.key, version, string(data), now); err != nil {
		return fmt.Errorf("insert document history: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM document_history WHERE key = ? AND version <= ?`,
		s.key, version-historyDepth); err != nil {
		return fmt.Errorf("trim document history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document %s: %w", s.key, err)
	}
	return nil
}

// Version returns the current document version, 0 when absent.
func (s *SQLiteStore) Version(ctx context.Context) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx, `SELECT version FROM documents WHERE key = ?`, s.key).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("select document version: %w", err)
	}
	return version, nil
}

// LoadVersion returns a previous version from history, or nil if it was trimmed.
func (s *SQLiteStore) LoadVersion(ctx context.Context, version int64) (*core.Ledger, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM document_history WHERE key = ? AND version = ?`, s.key, version).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select document version %d: %w", version, err)
	}
	return DecodeDocument([]byte(body))
}
