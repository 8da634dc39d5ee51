// Package adapters decorates outbound ports with cross-cutting behavior.
package adapters

import (
	"context"
	"time"

	"spesa/internal/core"
	applog "spesa/internal/log"
	"spesa/internal/metrics"
	"spesa/internal/ports"
)

// InstrumentOptions configures NewInstrumentedStore.
type InstrumentOptions struct {
	// Backend labels log lines and metrics.
	Backend string
	Logger  *applog.Logger
	// Metrics may be nil.
	Metrics *metrics.StoreMetrics
	// Timeout bounds each call when positive.
	Timeout time.Duration
}

// InstrumentedStore logs, times and bounds calls to a ports.LedgerStore.
type InstrumentedStore struct {
	next    ports.LedgerStore
	backend string
	logger  *applog.Logger
	metrics *metrics.StoreMetrics
	timeout time.Duration
	now     func() time.Time
}

func NewInstrumentedStore(next ports.LedgerStore, opts InstrumentOptions) *InstrumentedStore {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	return &InstrumentedStore{
		next:    next,
		backend: opts.Backend,
		logger:  logger.WithComponent(applog.ComponentStorage).With(applog.FieldBackend, opts.Backend),
		metrics: opts.Metrics,
		timeout: opts.Timeout,
		now:     time.Now,
	}
}

// Unwrap returns the decorated store.
func (s *InstrumentedStore) Unwrap() ports.LedgerStore { return s.next }

func (s *InstrumentedStore) Load(ctx context.Context) (*core.Ledger, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	start := s.now()
	l, err := s.next.Load(ctx)
	elapsed := s.now().Sub(start)
	s.metrics.Observe(s.backend, applog.OpLoad, elapsed.Seconds(), err)

	if err != nil {
		s.logger.ErrorContext(ctx, "Ledger load failed",
			applog.FieldOperation, applog.OpLoad,
			applog.FieldDuration, elapsed.Milliseconds(),
			applog.FieldError, err)
		return nil, err
	}
	if l == nil {
		s.logger.DebugContext(ctx, "No stored ledger", applog.FieldOperation, applog.OpLoad)
		return nil, nil
	}
	s.logger.DebugContext(ctx, "Ledger loaded",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldDuration, elapsed.Milliseconds(),
		applog.FieldLists, len(l.Lists),
		applog.FieldItems, l.ItemCount())
	return l, nil
}

func (s *InstrumentedStore) Save(ctx context.Context, l *core.Ledger) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	start := s.now()
	err := s.next.Save(ctx, l)
	elapsed := s.now().Sub(start)
	s.metrics.Observe(s.backend, applog.OpSave, elapsed.Seconds(), err)

	if err != nil {
		s.logger.ErrorContext(ctx, "Ledger save failed",
			applog.FieldOperation, applog.OpSave,
			applog.FieldDuration, elapsed.Milliseconds(),
			applog.FieldError, err)
		return err
	}
	s.metrics.SetLedgerSize(len(l.Lists), l.ItemCount())
	s.logger.DebugContext(ctx, "Ledger saved",
		applog.FieldOperation, applog.OpSave,
		applog.FieldDuration, elapsed.Milliseconds(),
		applog.FieldLists, len(l.Lists),
		applog.FieldItems, l.ItemCount())
	return nil
}

func (s *InstrumentedStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
