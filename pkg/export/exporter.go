package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

// Config holds the export layout settings.
type Config struct {
	// VectorDir is the subdirectory of the output directory SVG files go to.
	VectorDir string `json:"vector_dir"`
	// Force rewrites every file even when the ledger says it is unchanged.
	Force bool `json:"force"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		VectorDir: "vector",
		Force:     false,
	}
}

// Outcome is what Export did with one document.
type Outcome int

const (
	Written Outcome = iota
	Skipped
)

func (o Outcome) String() string {
	if o == Skipped {
		return "skipped"
	}
	return "written"
}

// Exporter writes rendered variants to disk. With a Ledger attached, files
// whose content has not changed since their last export are left alone.
// It is safe for concurrent use.
type Exporter struct {
	logger    *slog.Logger
	outputDir string
	config    Config
	ledger    *Ledger

	mu  sync.Mutex
	run Run
}

// NewExporter creates an Exporter writing below outputDir. config may be nil
// and ledger may be nil; without a ledger every export writes.
func NewExporter(logger *slog.Logger, outputDir string, config *Config, ledger *Ledger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &Exporter{
		logger:    logger,
		outputDir: outputDir,
		config:    *config,
		ledger:    ledger,
	}
}

// Path returns the file a variant is exported to.
func (e *Exporter) Path(species, variant string) string {
	return filepath.Join(e.outputDir, e.config.VectorDir, fmt.Sprintf("%s_%s.svg", species, variant))
}

// Begin starts a run in the ledger. Without a ledger it only resets counts.
func (e *Exporter) Begin(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ledger == nil {
		e.run = Run{}
		return nil
	}
	run, err := e.ledger.BeginRun(ctx)
	if err != nil {
		return err
	}
	e.run = run
	return nil
}

// Export writes svg as the file for species/variant.
func (e *Exporter) Export(ctx context.Context, species, variant, svg string) (Outcome, error) {
	path := e.Path(species, variant)
	hash := Hash([]byte(svg))

	if e.ledger != nil && !e.config.Force {
		rec, ok, err := e.ledger.Lookup(ctx, species, variant)
		if err != nil {
			return Written, fmt.Errorf("checking ledger for %s/%s: %w", species, variant, err)
		}
		if ok && rec.Hash == hash && rec.Path == path && fileExists(path) {
			e.count(Skipped)
			e.logger.Debug("Unchanged, skipping", "species", species, "variant", variant, "path", path)
			return Skipped, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return Written, fmt.Errorf("creating output directory: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(svg)); err != nil {
		return Written, fmt.Errorf("writing %s: %w", path, err)
	}

	if e.ledger != nil {
		rec := Record{Species: species, Variant: variant, Path: path, Hash: hash, RunID: e.runID()}
		if err := e.ledger.Put(ctx, rec); err != nil {
			return Written, err
		}
	}
	e.count(Written)
	e.logger.Info("Exported variant", "species", species, "variant", variant, "path", path)
	return Written, nil
}

// Fail counts a variant that could not be rendered.
func (e *Exporter) Fail(species, variant string, err error) {
	e.mu.Lock()
	e.run.Failed++
	e.mu.Unlock()
	e.logger.Error("Failed to generate variant", "species", species, "variant", variant, "error", err)
}

// Finish closes the current run and returns its counts.
func (e *Exporter) Finish(ctx context.Context) (Run, error) {
	e.mu.Lock()
	run := e.run
	e.mu.Unlock()
	if e.ledger == nil || run.ID == "" {
		return run, nil
	}
	return e.ledger.FinishRun(ctx, run)
}

func (e *Exporter) count(o Outcome) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch o {
	case Written:
		e.run.Written++
	case Skipped:
		e.run.Skipped++
	}
}

func (e *Exporter) runID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run.ID
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
