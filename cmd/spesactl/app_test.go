package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"

	"spesa/internal/core"
	applog "spesa/internal/log"
	"spesa/internal/services"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "spesa.db"))
	t.Setenv("CURRENCY", "USD")
	t.Setenv("GEMINI_API_KEY", "")
	var out bytes.Buffer
	return newApp(applog.Discard(), &out, false), &out
}

func execute(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return cmd.Execute(context.Background(), f)
}

func TestImportThenExport(t *testing.T) {
	a, out := newTestApp(t)
	dir := t.TempDir()

	l := core.NewLedger()
	l.CustomCategories = []string{"Coffee beans"}
	data, err := services.EncodeLedger(l)
	if err != nil {
		t.Fatalf("EncodeLedger: %v", err)
	}
	backup := filepath.Join(dir, "backup.json")
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if got := execute(t, &importCmd{app: a}, backup); got != subcommands.ExitSuccess {
		t.Fatalf("import exit = %v", got)
	}
	if !strings.Contains(out.String(), "Imported 0 lists with 0 items.") {
		t.Fatalf("import output = %q", out.String())
	}

	exported := filepath.Join(dir, "out.json")
	if got := execute(t, &exportCmd{app: a}, "-o", exported); got != subcommands.ExitSuccess {
		t.Fatalf("export exit = %v", got)
	}
	raw, err := os.ReadFile(exported)
	if err != nil {
		t.Fatal(err)
	}
	back, err := services.DecodeLedger(raw)
	if err != nil {
		t.Fatalf("DecodeLedger: %v", err)
	}
	if len(back.CustomCategories) != 1 || back.CustomCategories[0] != "Coffee beans" {
		t.Fatalf("round trip lost categories: %+v", back.CustomCategories)
	}
}

func TestRestorePreviousVersion(t *testing.T) {
	a, out := newTestApp(t)
	dir := t.TempDir()

	for i, categories := range [][]string{{"Coffee beans"}, {"Coffee beans", "Pastry"}} {
		l := core.NewLedger()
		l.CustomCategories = categories
		data, err := services.EncodeLedger(l)
		if err != nil {
			t.Fatalf("EncodeLedger: %v", err)
		}
		path := filepath.Join(dir, fmt.Sprintf("backup-%d.json", i))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		if got := execute(t, &importCmd{app: a}, path); got != subcommands.ExitSuccess {
			t.Fatalf("import %d exit = %v", i, got)
		}
	}

	out.Reset()
	if got := execute(t, &restoreCmd{app: a}); got != subcommands.ExitSuccess {
		t.Fatalf("restore exit = %v", got)
	}
	if !strings.Contains(out.String(), "Stored version is 2.") {
		t.Fatalf("restore output = %q", out.String())
	}

	if got := execute(t, &restoreCmd{app: a}, "-version", "1"); got != subcommands.ExitSuccess {
		t.Fatalf("restore -version 1 exit = %v", got)
	}
	exported := filepath.Join(dir, "out.json")
	if got := execute(t, &exportCmd{app: a}, "-o", exported); got != subcommands.ExitSuccess {
		t.Fatalf("export exit = %v", got)
	}
	raw, err := os.ReadFile(exported)
	if err != nil {
		t.Fatal(err)
	}
	back, err := services.DecodeLedger(raw)
	if err != nil {
		t.Fatalf("DecodeLedger: %v", err)
	}
	if len(back.CustomCategories) != 1 {
		t.Fatalf("restore did not roll back categories: %+v", back.CustomCategories)
	}

	if got := execute(t, &restoreCmd{app: a}, "-version", "99"); got != subcommands.ExitFailure {
		t.Fatalf("restore of a missing version exit = %v, want failure", got)
	}
}

func TestImportRejectsInvalidBackup(t *testing.T) {
	a, _ := newTestApp(t)
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"lists": 3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := execute(t, &importCmd{app: a}, bad); got != subcommands.ExitFailure {
		t.Fatalf("import exit = %v, want failure", got)
	}
	if got := execute(t, &importCmd{app: a}); got != subcommands.ExitUsageError {
		t.Fatalf("import without file exit = %v, want usage error", got)
	}
}

func TestReportsOnEmptyLedger(t *testing.T) {
	tests := []struct {
		name string
		cmd  func(a *app) subcommands.Command
		args []string
		want string
	}{
		{"summary", func(a *app) subcommands.Command { return &summaryCmd{app: a} }, []string{"-period", "7d"}, "No purchases recorded for last 7 days."},
		{"suggest", func(a *app) subcommands.Command { return &suggestCmd{app: a} }, nil, "Nothing is running low."},
		{"forecast", func(a *app) subcommands.Command { return &forecastCmd{app: a} }, nil, "Not enough purchase history"},
		{"items", func(a *app) subcommands.Command { return &itemsCmd{app: a} }, nil, "No items recorded yet."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, out := newTestApp(t)
			if got := execute(t, tt.cmd(a), tt.args...); got != subcommands.ExitSuccess {
				t.Fatalf("exit = %v", got)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Fatalf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestSummaryRejectsUnknownPeriod(t *testing.T) {
	a, _ := newTestApp(t)
	if got := execute(t, &summaryCmd{app: a}, "-period", "decade"); got != subcommands.ExitUsageError {
		t.Fatalf("exit = %v, want usage error", got)
	}
}

func TestAICommandsNeedAKey(t *testing.T) {
	a, _ := newTestApp(t)
	if got := execute(t, &askCmd{app: a}, "what", "did", "I", "buy?"); got != subcommands.ExitFailure {
		t.Fatalf("ask exit = %v, want failure", got)
	}
	if got := execute(t, &askCmd{app: a}); got != subcommands.ExitUsageError {
		t.Fatalf("empty ask exit = %v, want usage error", got)
	}
}
