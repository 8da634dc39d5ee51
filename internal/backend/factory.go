package backend

import (
	"context"
	"fmt"

	"spesa/internal/adapters"
	applog "spesa/internal/log"
	"spesa/internal/metrics"
	"spesa/internal/storage"
	"spesa/internal/storage/memory"
	"spesa/internal/storage/postgres"
	s3store "spesa/internal/storage/s3"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger  *applog.Logger
	metrics *metrics.StoreMetrics
}

// NewFactory creates a new backend factory. Every backend it builds is
// wrapped with logging and, when m is non-nil, operation metrics.
func NewFactory(logger *applog.Logger, m *metrics.StoreMetrics) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger:  logger.WithComponent(applog.ComponentBackend),
		metrics: m,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case MemoryBackend:
		res, err = f.createMemoryBackend(config)
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case PostgresBackend:
		res, err = f.createPostgresBackend(ctx, config)
	case S3Backend:
		res, err = f.createS3Backend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	res.Backend = adapters.NewInstrumentedStore(res.Backend, adapters.InstrumentOptions{
		Backend: config.Type.String(),
		Logger:  f.logger,
		Metrics: f.metrics,
		Timeout: config.OperationTimeout,
	})
	return res, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	if config.DataFile == "" {
		f.logger.Warn("Initialized memory backend without a data file, nothing survives a restart")
		return &BackendResult{Backend: memory.New(), Cleanup: noCleanup}, nil
	}

	store, err := memory.NewFromFile(config.DataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}
	f.logger.Info("Initialized memory backend", "data_file", config.DataFile)
	return &BackendResult{Backend: store, Cleanup: noCleanup}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath, config.LedgerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath, applog.FieldKey, config.LedgerKey)
	return &BackendResult{
		Backend: store,
		Cleanup: func() error {
			f.logger.Info("Closing SQLite store")
			return store.Close()
		},
	}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := postgres.Open(ctx, config.PostgresDSN, config.LedgerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
	}

	f.logger.Info("Initialized Postgres backend", applog.FieldKey, config.LedgerKey)
	return &BackendResult{
		Backend: store,
		Cleanup: func() error {
			f.logger.Info("Closing Postgres store")
			return store.Close()
		},
	}, nil
}

func (f *DefaultFactory) createS3Backend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := s3store.New(ctx, s3store.Config{
		Bucket:    config.S3Bucket,
		Region:    config.S3Region,
		Endpoint:  config.S3Endpoint,
		PathStyle: config.S3PathStyle,
		Key:       config.LedgerKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 store: %w", err)
	}

	f.logger.Info("Initialized S3 backend",
		"bucket", config.S3Bucket,
		"endpoint", config.S3Endpoint,
		applog.FieldKey, config.LedgerKey)
	return &BackendResult{Backend: store, Cleanup: noCleanup}, nil
}

func noCleanup() error { return nil }
