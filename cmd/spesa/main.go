package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"spesa/internal/amqp"
	"spesa/internal/auth"
	"spesa/internal/cache"
	"spesa/internal/cli"
	apphttp "spesa/internal/http"
	applog "spesa/internal/log"
	"spesa/internal/metrics"
	"spesa/internal/ports"
	"spesa/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	cacheSweepEvery = 5 * time.Minute
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	startCtx, startCancel := context.WithTimeout(context.Background(), time.Minute)
	defer startCancel()

	store, err := cli.OpenStore(startCtx, cfg, logger, metrics.NewStoreMetrics(reg))
	if err != nil {
		logger.Error("Failed to open ledger store", applog.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Cleanup(); err != nil {
			logger.Error("Store cleanup failed", applog.FieldError, err)
		}
	}()

	var publisher ports.SavePublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("Publishing ledger saves", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	cacheMgr := cache.NewManager(logger)
	aiClients, err := cli.OpenAI(context.Background(), cfg, logger, cacheMgr)
	if err != nil {
		logger.Error("Failed to initialize AI", applog.FieldError, err)
		os.Exit(1)
	}
	defer aiClients.Close()
	cacheMgr.StartCleanup(cacheSweepEvery)
	defer cacheMgr.Stop()

	ledger := services.NewLedgerService(store.Backend, publisher, logger, services.LedgerServiceConfig{
		Debounce: cfg.PersistDebounce,
		Key:      cfg.LedgerKey,
	})

	var authenticator *auth.Authenticator
	if cfg.AuthEnabled() {
		authenticator, err = auth.NewAuthenticator(cfg.AuthUsername, cfg.AuthPassword, cfg.AuthSecret, cfg.AuthTokenTTL)
		if err != nil {
			logger.Error("Failed to initialize authenticator", applog.FieldError, err)
			os.Exit(1)
		}
	} else {
		// Without login there is no session start, so the ledger is loaded now.
		if err := ledger.Hydrate(startCtx); err != nil {
			logger.Error("Failed to load ledger", applog.FieldError, err)
			os.Exit(1)
		}
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:     ":" + cfg.Port,
		Ledger:   ledger,
		AI:       services.NewAIService(ledger, aiClients.Extractor, aiClients.Answerer, logger),
		Auth:     authenticator,
		Metrics:  metrics.NewHTTPMetrics(reg),
		Gatherer: reg,
		Logger:   logger,
	})

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting spesa server", "port", cfg.Port, applog.FieldBackend, cfg.DataBackend, "auth", cfg.AuthEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		// Pending changes are written before the store is released.
		if err := ledger.Close(shutdownCtx); err != nil {
			logger.Error("Final ledger save failed", applog.FieldError, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
