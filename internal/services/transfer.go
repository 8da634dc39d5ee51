package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"spesa/internal/core"
	"spesa/internal/log"
	"spesa/internal/ports"
)

var (
	ErrNoHistory       = errors.New("the configured store keeps no version history")
	ErrVersionNotFound = errors.New("ledger version not found")
)

// EncodeLedger renders a ledger as the pretty-printed backup document.
func EncodeLedger(l *core.Ledger) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return data, nil
}

// DecodeLedger parses a backup document. Receipt images are dropped, absent
// collections become empty and the structure is validated. Every failure
// wraps core.ErrInvalidFormat.
func DecodeLedger(data []byte) (*core.Ledger, error) {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidFormat, err)
	}
	lists, ok := shape["lists"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(lists), []byte("[")) {
		return nil, fmt.Errorf("%w: lists must be an array", core.ErrInvalidFormat)
	}

	var l core.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidFormat, err)
	}
	for i := range l.Lists {
		for j := range l.Lists[i].Items {
			l.Lists[i].Items[j].ReceiptImage = ""
		}
	}
	l.Normalize()
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidFormat, err)
	}
	return &l, nil
}

// ExportLedger returns the current ledger as a backup document.
func (s *LedgerService) ExportLedger(ctx context.Context) ([]byte, error) {
	l := s.Ledger()
	data, err := EncodeLedger(l)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Ledger exported",
		log.NewFields().WithOperation(log.OpExport).WithLedgerSize(len(l.Lists), l.ItemCount()).ToSlice()...)
	return data, nil
}

// ImportLedger replaces the current ledger with a backup document. Nothing
// changes when the document is rejected.
func (s *LedgerService) ImportLedger(ctx context.Context, data []byte) error {
	l, err := DecodeLedger(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Rejected ledger import",
			log.NewFields().WithOperation(log.OpImport).WithError(err).ToSlice()...)
		return err
	}
	s.replace("import", l)
	s.logger.InfoContext(ctx, "Ledger imported",
		log.NewFields().WithOperation(log.OpImport).WithLedgerSize(len(l.Lists), l.ItemCount()).ToSlice()...)
	return nil
}

// history finds the versioned store behind any wrapping adapters.
func (s *LedgerService) history() (ports.VersionedStore, bool) {
	store := s.store
	for store != nil {
		if v, ok := store.(ports.VersionedStore); ok {
			return v, true
		}
		u, ok := store.(interface{ Unwrap() ports.LedgerStore })
		if !ok {
			break
		}
		store = u.Unwrap()
	}
	return nil, false
}

// StoredVersion returns the version of the last saved document.
func (s *LedgerService) StoredVersion(ctx context.Context) (int64, error) {
	h, ok := s.history()
	if !ok {
		return 0, ErrNoHistory
	}
	return h.Version(ctx)
}

// RestoreVersion replaces the current ledger with a previously saved version.
// The restored ledger is saved as a new version.
func (s *LedgerService) RestoreVersion(ctx context.Context, version int64) (*core.Ledger, error) {
	h, ok := s.history()
	if !ok {
		return nil, ErrNoHistory
	}
	l, err := h.LoadVersion(ctx, version)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("%w: %d", ErrVersionNotFound, version)
	}
	l.Normalize()
	s.replace(log.OpRestore, l)
	fields := log.NewFields().WithOperation(log.OpRestore).WithLedgerSize(len(l.Lists), l.ItemCount())
	fields[log.FieldVersion] = version
	s.logger.InfoContext(ctx, "Ledger restored", fields.ToSlice()...)
	return l, nil
}
