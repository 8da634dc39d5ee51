package ports

import (
	"context"

	"spesa/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerStore persists the whole ledger as one document.
	LedgerStore interface {
		// Load returns (nil, nil) when nothing has been saved yet.
		Load(ctx context.Context) (*core.Ledger, error)
		Save(ctx context.Context, l *core.Ledger) error
	}

	// VersionedStore is a LedgerStore that keeps previous document versions.
	VersionedStore interface {
		// Version returns the current document version, 0 when nothing was saved.
		Version(ctx context.Context) (int64, error)
		// LoadVersion returns (nil, nil) when the version is not kept.
		LoadVersion(ctx context.Context, version int64) (*core.Ledger, error)
	}

	// ReceiptExtractor turns a receipt photo into purchase lines.
	ReceiptExtractor interface {
		ExtractReceipt(ctx context.Context, image []byte, mimeType string, categories []string) (core.PurchaseBatch, error)
	}

	// QuestionAnswerer answers free-form questions about the purchase history.
	QuestionAnswerer interface {
		Answer(ctx context.Context, question, contextText string, rows []core.PurchaseRow) (string, error)
	}

	// PurchaseMirror replaces an external copy of the purchase rows.
	PurchaseMirror interface {
		ReplacePurchases(ctx context.Context, rows []core.PurchaseRow) error
	}

	// SavePublisher announces that a ledger document was written.
	SavePublisher interface {
		PublishLedgerSaved(ctx context.Context, key string, lists, items int) error
	}
)
