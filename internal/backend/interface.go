package backend

import (
	"context"
	"time"

	"spesa/internal/ports"
)

// Backend is the document store behind the ledger service.
type Backend interface {
	ports.LedgerStore
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Document key shared by every backend.
	LedgerKey string

	// Memory backend: optional JSON file the document is written back to.
	DataFile string

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	PostgresDSN string

	// S3 specific
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool

	// Bounds every Load and Save; zero means no extra deadline.
	OperationTimeout time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	S3Backend       BackendType = "s3"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend, S3Backend:
		return true
	default:
		return false
	}
}
