package export

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// SetupSchema creates the ledger tables if they do not exist yet.
func SetupSchema(db *sql.DB) error {

	const (
		schemaRuns = `
CREATE TABLE IF NOT EXISTS export_runs (
    run_id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    finished_at INTEGER NOT NULL DEFAULT 0,
    written INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0
);
`
		schemaVariants = `
CREATE TABLE IF NOT EXISTS exported_variants (
    species TEXT NOT NULL,
    variant TEXT NOT NULL,
    path TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    run_id TEXT NOT NULL,
    exported_at INTEGER NOT NULL,
    PRIMARY KEY (species, variant)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaRuns); err != nil {
		return fmt.Errorf("could not create runs schema: %w", err)
	}

	if _, err = tx.Exec(schemaVariants); err != nil {
		return fmt.Errorf("could not create variants schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Hash returns the hex encoded BLAKE3 digest of data.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Record describes the last export of one variant.
type Record struct {
	Species    string
	Variant    string
	Path       string
	Hash       string
	RunID      string
	ExportedAt time.Time
}

// Run describes one export pass.
type Run struct {
	ID       string
	Started  time.Time
	Finished time.Time // zero while the run is in progress
	Written  int
	Skipped  int
	Failed   int
}

// Stats summarizes the ledger.
type Stats struct {
	Runs     int
	Variants int
	Species  int
}

// Ledger remembers what was exported, so unchanged variants can be skipped.
type Ledger struct {
	db               *sql.DB
	stmtInsertRun    *sql.Stmt
	stmtFinishRun    *sql.Stmt
	stmtGetRuns      *sql.Stmt
	stmtGetRecord    *sql.Stmt
	stmtUpsertRecord *sql.Stmt
	stmtCountRuns    *sql.Stmt
	stmtCountRecords *sql.Stmt
	logger           *slog.Logger
}

// NewLedger prepares the ledger's statements. SetupSchema must have been
// run on db first.
func NewLedger(db *sql.DB) (*Ledger, error) {
	stmtInsertRun, err := db.Prepare(`INSERT INTO export_runs (run_id, started_at) VALUES (?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtFinishRun, err := db.Prepare(`UPDATE export_runs SET finished_at = ?, written = ?, skipped = ?, failed = ? WHERE run_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetRuns, err := db.Prepare(`SELECT run_id, started_at, finished_at, written, skipped, failed FROM export_runs ORDER BY started_at DESC LIMIT ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetRecord, err := db.Prepare(`SELECT path, content_hash, run_id, exported_at FROM exported_variants WHERE species = ? AND variant = ?;`)
	if err != nil {
		return nil, err
	}

	stmtUpsertRecord, err := db.Prepare(`INSERT INTO exported_variants (species, variant, path, content_hash, run_id, exported_at) VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(species, variant) DO UPDATE SET path = excluded.path, content_hash = excluded.content_hash, run_id = excluded.run_id, exported_at = excluded.exported_at;`)
	if err != nil {
		return nil, err
	}

	stmtCountRuns, err := db.Prepare(`SELECT COUNT(*) FROM export_runs;`)
	if err != nil {
		return nil, err
	}

	stmtCountRecords, err := db.Prepare(`SELECT COUNT(*), COUNT(DISTINCT species) FROM exported_variants;`)
	if err != nil {
		return nil, err
	}

	return &Ledger{
		db:               db,
		stmtInsertRun:    stmtInsertRun,
		stmtFinishRun:    stmtFinishRun,
		stmtGetRuns:      stmtGetRuns,
		stmtGetRecord:    stmtGetRecord,
		stmtUpsertRecord: stmtUpsertRecord,
		stmtCountRuns:    stmtCountRuns,
		stmtCountRecords: stmtCountRecords,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases the prepared statements. The database itself stays open.
func (l *Ledger) Close() {
	_ = l.stmtInsertRun.Close()
	_ = l.stmtFinishRun.Close()
	_ = l.stmtGetRuns.Close()
	_ = l.stmtGetRecord.Close()
	_ = l.stmtUpsertRecord.Close()
	_ = l.stmtCountRuns.Close()
	_ = l.stmtCountRecords.Close()
}

// SetLogger sets the logger for the Ledger. By default, all logs are discarded.
func (l *Ledger) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// BeginRun records the start of a new export pass.
func (l *Ledger) BeginRun(ctx context.Context) (Run, error) {
	run := Run{ID: uuid.NewString(), Started: time.Now()}
	if _, err := l.stmtInsertRun.ExecContext(ctx, run.ID, run.Started.UnixNano()); err != nil {
		return Run{}, fmt.Errorf("could not record run: %w", err)
	}
	l.logger.Debug("Export run started", "run", run.ID)
	return run, nil
}

// FinishRun stores the final counts of run and stamps its end time.
func (l *Ledger) FinishRun(ctx context.Context, run Run) (Run, error) {
	run.Finished = time.Now()
	res, err := l.stmtFinishRun.ExecContext(ctx, run.Finished.UnixNano(), run.Written, run.Skipped, run.Failed, run.ID)
	if err != nil {
		return run, fmt.Errorf("could not finish run %s: %w", run.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return run, fmt.Errorf("unknown run %s", run.ID)
	}
	l.logger.Debug("Export run finished", "run", run.ID, "written", run.Written, "skipped", run.Skipped, "failed", run.Failed)
	return run, nil
}

// Runs returns up to limit runs, newest first.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := l.stmtGetRuns.QueryContext(ctx, limit)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished int64
		if err = rows.Scan(&run.ID, &started, &finished, &run.Written, &run.Skipped, &run.Failed); err != nil {
			return nil, err
		}
		run.Started = time.Unix(0, started)
		if finished != 0 {
			run.Finished = time.Unix(0, finished)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Lookup returns the last export of species/variant, if any.
func (l *Ledger) Lookup(ctx context.Context, species, variant string) (Record, bool, error) {
	rec := Record{Species: species, Variant: variant}
	var exportedAt int64
	err := l.stmtGetRecord.QueryRowContext(ctx, species, variant).Scan(&rec.Path, &rec.Hash, &rec.RunID, &exportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	rec.ExportedAt = time.Unix(0, exportedAt)
	return rec, true, nil
}

// Put stores rec, replacing any earlier export of the same variant.
func (l *Ledger) Put(ctx context.Context, rec Record) error {
	if rec.ExportedAt.IsZero() {
		rec.ExportedAt = time.Now()
	}
	_, err := l.stmtUpsertRecord.ExecContext(ctx, rec.Species, rec.Variant, rec.Path, rec.Hash, rec.RunID, rec.ExportedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("could not record %s/%s: %w", rec.Species, rec.Variant, err)
	}
	return nil
}

// GetStats returns counts over the whole ledger.
func (l *Ledger) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := l.stmtCountRuns.QueryRowContext(ctx).Scan(&stats.Runs); err != nil {
		return nil, err
	}
	if err := l.stmtCountRecords.QueryRowContext(ctx).Scan(&stats.Variants, &stats.Species); err != nil {
		return nil, err
	}
	return &stats, nil
}
