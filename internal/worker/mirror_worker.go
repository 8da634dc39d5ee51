// Package worker keeps the purchase mirror in step with the document store.
package worker

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"spesa/internal/amqp"
	"spesa/internal/analytics"
	"spesa/internal/core"
	applog "spesa/internal/log"
	"spesa/internal/ports"
)

// DefaultResyncInterval is used when no interval is configured.
const DefaultResyncInterval = 15 * time.Minute

// MirrorWorker rewrites the purchase mirror from the stored ledger, on every
// "ledger saved" message and periodically as a backstop for lost messages.
type MirrorWorker struct {
	store    ports.LedgerStore
	mirror   ports.PurchaseMirror
	key      string
	interval time.Duration
	logger   *applog.Logger

	// syncMu serializes mirror runs and guards lastDigest.
	syncMu     sync.Mutex
	lastDigest [sha256.Size]byte
	mirrored   bool

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMirrorWorker(store ports.LedgerStore, mirror ports.PurchaseMirror, key string, interval time.Duration, logger *applog.Logger) *MirrorWorker {
	if interval <= 0 {
		interval = DefaultResyncInterval
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &MirrorWorker{
		store:    store,
		mirror:   mirror,
		key:      key,
		interval: interval,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleLedgerSaved processes one message. Messages for other documents are
// acknowledged and ignored.
func (w *MirrorWorker) HandleLedgerSaved(ctx context.Context, msg *amqp.LedgerSavedMessage) error {
	if msg.Key != w.key {
		w.logger.DebugContext(ctx, "Ignoring message for another ledger", applog.FieldKey, msg.Key)
		return nil
	}
	w.logger.InfoContext(ctx, "Processing ledger saved message",
		applog.FieldKey, msg.Key,
		applog.FieldLists, msg.Lists,
		applog.FieldItems, msg.Items)
	_, err := w.Sync(ctx)
	return err
}

// Sync reloads the ledger and rewrites the mirror. It reports whether the
// mirror was written; an unchanged purchase history is skipped.
func (w *MirrorWorker) Sync(ctx context.Context) (bool, error) {
	w.syncMu.Lock()
	defer w.syncMu.Unlock()

	l, err := w.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load ledger: %w", err)
	}
	if l == nil {
		l = core.NewLedger()
	}
	rows := analytics.PurchaseRows(l)

	body, err := json.Marshal(rows)
	if err != nil {
		return false, fmt.Errorf("digest rows: %w", err)
	}
	digest := sha256.Sum256(body)
	if w.mirrored && digest == w.lastDigest {
		w.logger.DebugContext(ctx, "Purchase history unchanged, mirror skipped")
		return false, nil
	}

	if err := w.mirror.ReplacePurchases(ctx, rows); err != nil {
		return false, fmt.Errorf("replace purchases: %w", err)
	}
	w.lastDigest, w.mirrored = digest, true

	w.logger.InfoContext(ctx, "Mirror updated", applog.FieldOperation, applog.OpMirror, "rows", len(rows))
	return true, nil
}

// Start runs an immediate sync and then one per interval until Stop or ctx
// cancellation. Returns an error if already running.
func (w *MirrorWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("mirror worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	w.logger.InfoContext(ctx, "Mirror worker started", "interval", w.interval)
	return nil
}

// Stop signals the loop and waits for it to finish.
func (w *MirrorWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		w.logger.InfoContext(ctx, "Mirror worker stopped gracefully")
		return nil
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Mirror worker stop timed out")
		return ctx.Err()
	}
}

func (w *MirrorWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *MirrorWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.resync(ctx)
	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.resync(ctx)
		}
	}
}

func (w *MirrorWorker) resync(ctx context.Context) {
	if _, err := w.Sync(ctx); err != nil && ctx.Err() == nil {
		w.logger.ErrorContext(ctx, "Periodic mirror failed", applog.FieldError, err)
	}
}
