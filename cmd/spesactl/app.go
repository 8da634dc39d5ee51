package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"

	"spesa/internal/cli"
	"spesa/internal/config"
	applog "spesa/internal/log"
	"spesa/internal/report"
	"spesa/internal/services"
)

// app carries what every subcommand needs. The CLI is short lived, so the
// ledger is hydrated per command and flushed before exit.
type app struct {
	cfg    *config.Config
	logger *applog.Logger
	out    io.Writer
	styled bool
	now    func() time.Time
}

func newApp(logger *applog.Logger, out io.Writer, styled bool) *app {
	return &app{logger: logger, out: out, styled: styled, now: time.Now}
}

// configure loads the environment configuration on first use so that help
// works without one.
func (a *app) configure() error {
	if a.cfg != nil {
		return nil
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	return nil
}

// session is an open ledger plus the resources behind it.
type session struct {
	ledger *services.LedgerService
	close  func(ctx context.Context) error
}

func (a *app) open(ctx context.Context) (*session, error) {
	if err := a.configure(); err != nil {
		return nil, err
	}
	store, err := cli.OpenStore(ctx, a.cfg, a.logger, nil)
	if err != nil {
		return nil, err
	}
	ledger := services.NewLedgerService(store.Backend, nil, a.logger, services.LedgerServiceConfig{
		Debounce: a.cfg.PersistDebounce,
		Key:      a.cfg.LedgerKey,
		Now:      a.now,
	})
	if err := ledger.Hydrate(ctx); err != nil {
		_ = store.Cleanup()
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return &session{
		ledger: ledger,
		close: func(ctx context.Context) error {
			return errors.Join(ledger.Close(ctx), store.Cleanup())
		},
	}, nil
}

// run opens a session, hands it to fn and always closes it. Pending changes
// are saved on close.
func (a *app) run(ctx context.Context, fn func(s *session) error) subcommands.ExitStatus {
	s, err := a.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	err = fn(s)
	if cerr := s.close(ctx); cerr != nil && err == nil {
		err = fmt.Errorf("save ledger: %w", cerr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (a *app) formatter() report.Formatter {
	return report.NewFormatter(a.cfg.Currency)
}

func (a *app) print(md string) error {
	return report.Render(a.out, md, a.styled)
}
