package services

import (
	"sync"
	"time"
)

// SessionState tracks where the ledger session is in its lifecycle.
type SessionState string

const (
	StateUninitialized SessionState = "uninitialized"
	StateHydrating     SessionState = "hydrating"
	StateReady         SessionState = "ready"
	StateCleared       SessionState = "cleared"
)

// EventKind names what happened to the ledger.
type EventKind string

const (
	EventChanged    EventKind = "changed"
	EventHydrated   EventKind = "hydrated"
	EventSaved      EventKind = "saved"
	EventSaveFailed EventKind = "save-failed"
	EventCleared    EventKind = "cleared"
)

// Event is delivered to subscribers after the ledger lock is released.
type Event struct {
	Kind EventKind
	// Op is the mutation that produced a changed event.
	Op  string
	Err error
	At  time.Time
}

// notifier fans events out to subscribers synchronously.
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func (n *notifier) subscribe(fn func(Event)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func(Event))
	}
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n *notifier) emit(e Event) {
	n.mu.Lock()
	fns := make([]func(Event), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
