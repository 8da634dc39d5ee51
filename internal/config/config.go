package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
)

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// Document store
	DataBackend     string
	DataFile        string
	SQLiteDBPath    string
	PostgresDSN     string
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3PathStyle     bool
	LedgerKey       string
	PersistDebounce time.Duration

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror (worker)
	GoogleSpreadsheetID string
	GoogleSheetName     string
	MirrorInterval      time.Duration

	// AI (optional)
	GeminiAPIKey string
	GeminiModel  string
	AICacheTTL   time.Duration

	// Login (optional)
	AuthUsername string
	AuthPassword string
	AuthSecret   string
	AuthTokenTTL time.Duration

	// Display currency, ISO 4217
	Currency string
}

// Backends lists the accepted DATA_BACKEND values.
var Backends = []string{"memory", "sqlite", "postgres", "s3"}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataBackend:     getEnv("DATA_BACKEND", "sqlite"),
		DataFile:        getEnv("DATA_FILE", ""),
		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "./data/spesa.db"),
		PostgresDSN:     getEnv("POSTGRES_DSN", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3PathStyle:     getEnvBool("S3_PATH_STYLE", false),
		LedgerKey:       getEnv("LEDGER_KEY", "ledger"),
		PersistDebounce: getEnvDuration("PERSIST_DEBOUNCE", 1500*time.Millisecond),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spesa"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_saved"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Purchases"),
		MirrorInterval:      getEnvDuration("MIRROR_INTERVAL", 15*time.Minute),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		AICacheTTL:   getEnvDuration("AI_CACHE_TTL", 10*time.Minute),

		AuthUsername: getEnv("AUTH_USERNAME", ""),
		AuthPassword: getEnv("AUTH_PASSWORD", ""),
		AuthSecret:   getEnv("AUTH_SECRET", ""),
		AuthTokenTTL: getEnvDuration("AUTH_TOKEN_TTL", 24*time.Hour),

		Currency: strings.ToUpper(getEnv("CURRENCY", "IDR")),
	}
}

// AuthEnabled reports whether a login credential is configured.
func (c *Config) AuthEnabled() bool { return c.AuthUsername != "" }

// AMQPEnabled reports whether ledger-saved events are published.
func (c *Config) AMQPEnabled() bool { return c.AMQPURL != "" }

// AIEnabled reports whether the Gemini collaborators can be built.
func (c *Config) AIEnabled() bool { return c.GeminiAPIKey != "" }

// Validate returns every configuration problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(Backends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends))
	}
	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			errors = append(errors, "POSTGRES_DSN is required when using postgres backend")
		}
	case "s3":
		if c.S3Bucket == "" {
			errors = append(errors, "S3_BUCKET is required when using s3 backend")
		}
		if c.S3Endpoint != "" {
			if u, err := url.Parse(c.S3Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
				errors = append(errors, fmt.Sprintf("invalid S3 endpoint '%s'", c.S3Endpoint))
			}
		}
	}
	if strings.TrimSpace(c.LedgerKey) == "" {
		errors = append(errors, "LEDGER_KEY cannot be empty")
	}
	if c.PersistDebounce <= 0 || c.PersistDebounce > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid persist debounce %v: must be between 0 and 1 minute", c.PersistDebounce))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.MirrorInterval < time.Second || c.MirrorInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid mirror interval %v: must be between 1 second and 24 hours", c.MirrorInterval))
	}
	if c.AICacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid AI cache TTL %v: cannot be negative", c.AICacheTTL))
	}

	if c.AuthUsername != "" {
		if c.AuthPassword == "" {
			errors = append(errors, "AUTH_PASSWORD is required when AUTH_USERNAME is set")
		}
		if len(c.AuthSecret) < 16 {
			errors = append(errors, "AUTH_SECRET must be at least 16 characters when AUTH_USERNAME is set")
		}
		if c.AuthTokenTTL < time.Minute {
			errors = append(errors, fmt.Sprintf("invalid auth token TTL %v: must be at least 1 minute", c.AuthTokenTTL))
		}
	}

	if money.GetCurrency(c.Currency) == nil {
		errors = append(errors, fmt.Sprintf("unknown currency '%s'", c.Currency))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
