package backend

import (
	"fmt"
	"time"

	"spesa/internal/config"
)

// defaultOperationTimeout bounds a single document read or write.
const defaultOperationTimeout = 30 * time.Second

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:      backendType,
		LedgerKey: appConfig.LedgerKey,
		DataFile:  appConfig.DataFile,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		PostgresDSN:  appConfig.PostgresDSN,

		S3Bucket:    appConfig.S3Bucket,
		S3Region:    appConfig.S3Region,
		S3Endpoint:  appConfig.S3Endpoint,
		S3PathStyle: appConfig.S3PathStyle,

		OperationTimeout: defaultOperationTimeout,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case PostgresBackend:
		if c.PostgresDSN == "" {
			return fmt.Errorf("Postgres DSN is required for postgres backend")
		}
	case S3Backend:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 backend")
		}
	case MemoryBackend:
		// DataFile is optional; without it nothing survives a restart.
	}

	if c.OperationTimeout < 0 {
		return fmt.Errorf("operation timeout cannot be negative")
	}
	return nil
}
