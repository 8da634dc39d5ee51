package postgres

import (
	"context"
	"testing"
)

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), "", "ledger"); err == nil {
		t.Fatalf("expected error without dsn")
	}
}
