package services

import (
	"context"
	"sync"
	"time"

	"spesa/internal/core"
)

var fixedNow = time.Date(2025, 6, 30, 9, 0, 0, 0, time.Local)

type fakeStore struct {
	mu      sync.Mutex
	stored  *core.Ledger
	loadErr error
	saveErr error
	saves   int

	// When gate is set, Load signals loading and then blocks until gate closes.
	gate    chan struct{}
	loading chan struct{}
}

func (f *fakeStore) Load(ctx context.Context) (*core.Ledger, error) {
	f.mu.Lock()
	gate, loading := f.gate, f.loading
	f.mu.Unlock()
	if gate != nil {
		loading <- struct{}{}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.stored == nil {
		return nil, nil
	}
	return f.stored.Clone(), nil
}

func (f *fakeStore) Save(ctx context.Context, l *core.Ledger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.stored = l.Clone()
	return nil
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

type fakePublisher struct {
	mu    sync.Mutex
	calls []int
}

func (p *fakePublisher) PublishLedgerSaved(ctx context.Context, key string, lists, items int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, items)
	return nil
}

// newTestService returns a hydrated service whose debounce never fires
// within a test; tests call Flush to persist.
func newTestService(store *fakeStore) *LedgerService {
	s := NewLedgerService(store, nil, nil, LedgerServiceConfig{
		Debounce: time.Hour,
		Key:      "test",
		Now:      func() time.Time { return fixedNow },
	})
	if err := s.Hydrate(context.Background()); err != nil {
		panic(err)
	}
	return s
}

func boughtItem(id, name, unit string, qty, price float64) core.ShoppingItem {
	return core.ShoppingItem{
		ID:              id,
		Name:            name,
		Amount:          qty,
		Unit:            unit,
		Category:        "Dairy",
		Status:          core.StatusBought,
		PurchasedAmount: core.Float(qty),
		PaidPrice:       core.Float(price),
		PaymentStatus:   core.PaymentPaid,
	}
}
