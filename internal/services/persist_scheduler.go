package services

import (
	"context"
	"sync"
	"time"
)

// DefaultPersistDebounce is the trailing delay between the last mutation and the save.
const DefaultPersistDebounce = 1500 * time.Millisecond

// PersistScheduler coalesces bursts of Schedule calls into one save that runs
// after the bursts go quiet for the configured delay. Saves never overlap.
type PersistScheduler struct {
	delay time.Duration
	save  func(ctx context.Context) error

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	stopped bool

	// held while a save runs
	saveMu sync.Mutex
}

// NewPersistScheduler creates a scheduler; a non-positive delay selects the default.
func NewPersistScheduler(delay time.Duration, save func(ctx context.Context) error) *PersistScheduler {
	if delay <= 0 {
		delay = DefaultPersistDebounce
	}
	return &PersistScheduler{delay: delay, save: save}
}

// Schedule (re)arms the trailing timer. It is a no-op after Stop.
func (p *PersistScheduler) Schedule() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.pending = true
	p.gen++
	gen := p.gen
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.delay, func() { p.fire(gen) })
}

// Pending reports whether a save is armed and has not run yet.
func (p *PersistScheduler) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Cancel drops an armed save without running it.
func (p *PersistScheduler) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disarm()
}

// Flush runs an armed save immediately and returns its error. With nothing
// armed it waits for an in-flight save and returns nil.
func (p *PersistScheduler) Flush(ctx context.Context) error {
	p.mu.Lock()
	armed := p.pending
	p.disarm()
	p.mu.Unlock()

	if !armed {
		// wait out an in-flight save
		p.saveMu.Lock()
		p.saveMu.Unlock()
		return nil
	}
	return p.run(ctx)
}

// Stop flushes any armed save and refuses further scheduling.
func (p *PersistScheduler) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	return p.Flush(ctx)
}

// disarm must be called with mu held.
func (p *PersistScheduler) disarm() {
	p.pending = false
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *PersistScheduler) fire(gen uint64) {
	p.mu.Lock()
	if gen != p.gen || !p.pending {
		p.mu.Unlock()
		return
	}
	p.pending = false
	p.timer = nil
	p.mu.Unlock()

	// Errors are reported by the save callback itself.
	_ = p.run(context.Background())
}

func (p *PersistScheduler) run(ctx context.Context) error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()
	return p.save(ctx)
}
