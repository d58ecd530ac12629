package export

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupLedger creates a file-backed database with the schema and a Ledger.
func setupLedger(tb testing.TB) *Ledger {
	tb.Helper()
	dbFile := filepath.Join(tb.TempDir(), "ledger.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL")
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })

	if err = SetupSchema(db); err != nil {
		tb.Fatalf("failed to set up schema: %v", err)
	}
	if err = SetupSchema(db); err != nil {
		tb.Fatalf("SetupSchema should be idempotent: %v", err)
	}
	l, err := NewLedger(db)
	if err != nil {
		tb.Fatalf("NewLedger() error = %v", err)
	}
	tb.Cleanup(l.Close)
	return l
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLedger(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	run, err := l.BeginRun(ctx)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run id should be set")
	}

	if _, ok, err := l.Lookup(ctx, "fox", "idle"); err != nil || ok {
		t.Fatalf("Lookup on empty ledger = %v, %v", ok, err)
	}

	rec := Record{Species: "fox", Variant: "idle", Path: "/out/fox_idle.svg", Hash: Hash([]byte("<svg/>")), RunID: run.ID}
	if err = l.Put(ctx, rec); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	rec.Hash = Hash([]byte("<svg><g/></svg>"))
	if err = l.Put(ctx, rec); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	got, ok, err := l.Lookup(ctx, "fox", "idle")
	if err != nil || !ok {
		t.Fatalf("Lookup failed: %v, %v", ok, err)
	}
	if got.Hash != rec.Hash || got.RunID != run.ID || got.ExportedAt.IsZero() {
		t.Errorf("unexpected record %+v", got)
	}

	run.Written = 1
	if run, err = l.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}
	if _, err = l.FinishRun(ctx, Run{ID: "missing"}); err == nil {
		t.Error("finishing an unknown run should fail")
	}

	runs, err := l.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID || runs[0].Written != 1 || runs[0].Finished.IsZero() {
		t.Errorf("unexpected runs %+v", runs)
	}

	stats, err := l.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if *stats != (Stats{Runs: 1, Variants: 1, Species: 1}) {
		t.Errorf("unexpected stats %+v", *stats)
	}
}

func TestHash(t *testing.T) {
	a, b := Hash([]byte("a")), Hash([]byte("b"))
	if len(a) != 64 || a == b || a != Hash([]byte("a")) {
		t.Errorf("unexpected hashes %s %s", a, b)
	}
}

func TestExporter(t *testing.T) {
	ctx := context.Background()
	out := t.TempDir()
	l := setupLedger(t)
	e := NewExporter(quietLogger(), out, nil, l)

	if err := e.Begin(ctx); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	path := filepath.Join(out, "vector", "fox_idle.svg")
	if got := e.Path("fox", "idle"); got != path {
		t.Errorf("Path = %s, want %s", got, path)
	}

	steps := []struct {
		svg  string
		want Outcome
	}{
		{"<svg/>", Written},
		{"<svg/>", Skipped},
		{"<svg><g/></svg>", Written},
	}
	for i, step := range steps {
		got, err := e.Export(ctx, "fox", "idle", step.svg)
		if err != nil {
			t.Fatalf("step %d: Export failed: %v", i, err)
		}
		if got != step.want {
			t.Errorf("step %d: got %s, want %s", i, got, step.want)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "<svg><g/></svg>" {
		t.Errorf("unexpected file content %q (%v)", data, err)
	}

	t.Run("RewritesDeletedFile", func(t *testing.T) {
		if err := os.Remove(path); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if got, _ := e.Export(ctx, "fox", "idle", "<svg><g/></svg>"); got != Written {
			t.Error("a missing file must be rewritten even if the hash matches")
		}
	})

	e.Fail("fox", "broken", os.ErrInvalid)
	run, err := e.Finish(ctx)
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if run.Written != 3 || run.Skipped != 1 || run.Failed != 1 {
		t.Errorf("unexpected counts %+v", run)
	}

	t.Run("Force", func(t *testing.T) {
		forced := NewExporter(quietLogger(), out, &Config{VectorDir: "vector", Force: true}, l)
		if got, _ := forced.Export(ctx, "fox", "idle", "<svg><g/></svg>"); got != Written {
			t.Error("force should always write")
		}
	})

	t.Run("NoLedger", func(t *testing.T) {
		plain := NewExporter(quietLogger(), t.TempDir(), nil, nil)
		for i := 0; i < 2; i++ {
			if got, err := plain.Export(ctx, "fox", "idle", "<svg/>"); err != nil || got != Written {
				t.Errorf("export %d: %s, %v", i, got, err)
			}
		}
		if run, err := plain.Finish(ctx); err != nil || run.Written != 2 {
			t.Errorf("unexpected run %+v, %v", run, err)
		}
	})
}
