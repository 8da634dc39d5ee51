package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"spesa/internal/core"
)

func sampleLedger() *core.Ledger {
	l := core.NewLedger()
	list := core.NewShoppingList(time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local))
	list.Items = []core.ShoppingItem{{
		ID: "1", Name: "Milk", Amount: 2, Unit: "liter", Category: "Dairy",
		Status: core.StatusBought, PurchasedAmount: core.Float(2), PaidPrice: core.Float(50000),
		VendorID: core.String("v1"),
	}}
	l.Lists = append(l.Lists, list)
	l.Vendors = []core.Vendor{{ID: "v1", Name: "Market"}}
	l.ItemInfoMap["Milk"] = core.ItemInfo{Unit: "liter", Category: "Dairy"}
	return l
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "spesa.db"), "")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	got, err := store.Load(ctx)
	if err != nil || got != nil {
		t.Fatalf("expected absent document, got %+v (err=%v)", got, err)
	}

	want := sampleLedger()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	want.Vendors[0].Name = "Supermarket"
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("second save: %v", err)
	}
	v, err := store.Version(ctx)
	if err != nil || v != 2 {
		t.Fatalf("expected version 2, got %d (err=%v)", v, err)
	}
	prev, err := store.LoadVersion(ctx, 1)
	if err != nil || prev == nil || prev.Vendors[0].Name != "Market" {
		t.Fatalf("history not kept: %+v (err=%v)", prev, err)
	}
}

func TestSQLiteStoreTrimsHistory(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "spesa.db"), "household")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	l := core.NewLedger()
	for i := 0; i < historyDepth+5; i++ {
		if err := store.Save(ctx, l); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if old, err := store.LoadVersion(ctx, 1); err != nil || old != nil {
		t.Fatalf("expected version 1 trimmed, got %+v (err=%v)", old, err)
	}
	if last, err := store.LoadVersion(ctx, historyDepth+5); err != nil || last == nil {
		t.Fatalf("expected latest version in history (err=%v)", err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spesa.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}
