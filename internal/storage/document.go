// Package storage holds the ledger document stores. Every backend keeps the
// whole ledger as one JSON document under a key.
package storage

import (
	"encoding/json"
	"fmt"

	"spesa/internal/core"
)

// DefaultKey is the document key used when none is configured.
const DefaultKey = "ledger"

// EncodeDocument serializes a ledger for storage.
func EncodeDocument(l *core.Ledger) ([]byte, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode ledger document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses a stored ledger and fills absent collections.
func DecodeDocument(data []byte) (*core.Ledger, error) {
	var l core.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode ledger document: %w", err)
	}
	l.Normalize()
	return &l, nil
}
