package cli

import (
	"context"
	"path/filepath"
	"testing"

	"spesa/internal/cache"
	"spesa/internal/config"
	"spesa/internal/core"
	applog "spesa/internal/log"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: filepath.Join(t.TempDir(), "spesa.db"),
		LedgerKey:    "home",
	}
	res, err := OpenStore(ctx, cfg, applog.Discard(), nil)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer res.Cleanup()

	l := core.NewLedger()
	l.CustomCategories = []string{"Bakery"}
	if err := res.Backend.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := res.Backend.Load(ctx)
	if err != nil || got == nil || len(got.CustomCategories) != 1 {
		t.Fatalf("Load = %+v, %v", got, err)
	}
}

func TestOpenStoreRejectsUnknownBackend(t *testing.T) {
	cfg := &config.Config{DataBackend: "sheets", LedgerKey: "home"}
	if _, err := OpenStore(context.Background(), cfg, applog.Discard(), nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestOpenAIDisabled(t *testing.T) {
	mgr := cache.NewManager(applog.Discard())
	got, err := OpenAI(context.Background(), &config.Config{}, applog.Discard(), mgr)
	if err != nil {
		t.Fatalf("OpenAI: %v", err)
	}
	if got.Extractor != nil || got.Answerer != nil {
		t.Fatalf("collaborators built without an API key: %+v", got)
	}
	if err := got.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := mgr.Sweep(); n != 0 {
		t.Fatalf("Sweep = %d, want 0", n)
	}
}
