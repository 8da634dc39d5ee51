// Package postgres stores the ledger document in a JSONB column.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spesa/internal/core"
	"spesa/internal/storage"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const driverName = "pgx"

const schema = `CREATE TABLE IF NOT EXISTS ledger_documents (
	key        TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	version    BIGINT NOT NULL DEFAULT 1,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type Store struct {
	db  *sql.DB
	key string
}

// Open connects to dsn and ensures the document table exists.
func Open(ctx context.Context, dsn, key string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn required")
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s, err := New(ctx, db, key)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection pool.
func New(ctx context.Context, db *sql.DB, key string) (*Store, error) {
	if key == "" {
		key = storage.DefaultKey
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("ensure ledger_documents table: %w", err)
	}
	return &Store{db: db, key: key}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Load(ctx context.Context) (*core.Ledger, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM ledger_documents WHERE key = $1`, s.key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select ledger document: %w", err)
	}
	return storage.DecodeDocument(body)
}

func (s *Store) Save(ctx context.Context, l *core.Ledger) error {
	body, err := storage.EncodeDocument(l)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ledger_documents (key, body) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET
			body = EXCLUDED.body,
			version = ledger_documents.version + 1,
			updated_at = now()`, s.key, string(body))
	if err != nil {
		return fmt.Errorf("upsert ledger document: %w", err)
	}
	return nil
}
