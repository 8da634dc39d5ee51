// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/spesa, cmd/spesa-worker, and cmd/spesactl.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spesa/internal/ai"
	"spesa/internal/backend"
	"spesa/internal/cache"
	"spesa/internal/config"
	applog "spesa/internal/log"
	"spesa/internal/metrics"
	"spesa/internal/ports"
)

// answerCacheSize bounds the number of cached AI answers.
const answerCacheSize = 256

// SetupLogger builds the process logger at the given LOG_LEVEL and sets it
// as the default logger.
func SetupLogger(level string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: applog.ComponentApp,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore creates the configured ledger document store. m may be nil.
func OpenStore(ctx context.Context, cfg *config.Config, logger *applog.Logger, m *metrics.StoreMetrics) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger, m).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", bcfg.Type, err)
	}
	logger.Info("Ledger store ready", applog.FieldBackend, bcfg.Type.String(), applog.FieldKey, bcfg.LedgerKey)
	return res, nil
}

// AI bundles the Gemini collaborators. Both fields are nil when AI is disabled.
type AI struct {
	Extractor ports.ReceiptExtractor
	Answerer  ports.QuestionAnswerer
	Close     func() error
}

// OpenAI connects to Gemini when GEMINI_API_KEY is set. Answers are cached
// for AI_CACHE_TTL and the cache is registered with mgr when mgr is non-nil.
func OpenAI(ctx context.Context, cfg *config.Config, logger *applog.Logger, mgr *cache.Manager) (*AI, error) {
	if !cfg.AIEnabled() {
		logger.Info("AI features disabled - no GEMINI_API_KEY provided")
		return &AI{Close: func() error { return nil }}, nil
	}
	g, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		return nil, fmt.Errorf("connect gemini: %w", err)
	}
	var answerer ports.QuestionAnswerer = g
	if cfg.AICacheTTL > 0 {
		answers := cache.NewLRUCache[string](answerCacheSize, cfg.AICacheTTL)
		if mgr != nil {
			mgr.Register(answers)
		}
		answerer = ai.NewCachedAnswerer(g, answers)
	}
	logger.Info("AI features enabled", "model", cfg.GeminiModel, "answer_cache_ttl", cfg.AICacheTTL.String())
	return &AI{Extractor: g, Answerer: answerer, Close: g.Close}, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs once after the signal with a context bounded by timeout; done closes
// when it returns.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
