package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CTAG07/emotegen/pkg/export"
	"github.com/CTAG07/emotegen/pkg/render"
	"github.com/CTAG07/emotegen/pkg/species"
	"github.com/CTAG07/emotegen/pkg/templating"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type generateOptions struct {
	outputDir string
	workers   int
	force     bool
	noLedger  bool
	watch     bool
}

func (a *app) generateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate SPECIES [VARIANT|GLOB]...",
		Short: "Render variants and write them as SVG files",
		Long: `Render the named variants of a species, or all of them, and write each to
<output>/vector/<species>_<variant>.svg. Variant arguments may be globs such as
"wave*". A variant that fails to render is reported and skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyGenerateDefaults(&opts)
			if opts.watch {
				return a.watch(cmd.Context(), args[0], args[1:], opts)
			}
			run, err := a.generate(cmd.Context(), args[0], args[1:], opts)
			if err != nil {
				return err
			}
			if run.Failed > 0 {
				return fmt.Errorf("%d variant(s) failed", run.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Output directory (default from config)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", 0, "Variants rendered in parallel (default from config)")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Rewrite files even when unchanged")
	cmd.Flags().BoolVar(&opts.noLedger, "no-ledger", false, "Do not record exports in the database")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Regenerate whenever a source file changes")
	return cmd
}

func (a *app) applyGenerateDefaults(opts *generateOptions) {
	if opts.outputDir == "" {
		opts.outputDir = a.config.Generator.OutputDir
	}
	if opts.workers <= 0 {
		opts.workers = a.config.Generator.Workers
	}
}

// loadSpecies loads the declaration chain at dir.
func (a *app) loadSpecies(dir string) (*species.Declaration, error) {
	decl, err := species.NewLoader(a.logger, a.config.Generator.Extensions...).Load(dir)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}
	return decl, nil
}

// generate renders the selected variants of the species at dir and exports
// them. Per-variant failures are counted in the returned run, not returned.
func (a *app) generate(ctx context.Context, dir string, patterns []string, opts generateOptions) (export.Run, error) {
	decl, err := a.loadSpecies(dir)
	if err != nil {
		return export.Run{}, err
	}
	return a.generateDeclaration(ctx, decl, patterns, opts)
}

// generateDeclaration is generate for an already loaded declaration.
func (a *app) generateDeclaration(ctx context.Context, decl *species.Declaration, patterns []string, opts generateOptions) (export.Run, error) {
	names, unmatched, err := selectVariants(decl.VariantNames(), patterns)
	if err != nil {
		return export.Run{}, err
	}
	for _, pattern := range unmatched {
		a.logger.Warn("No variant matches", "species", decl.Name, "pattern", pattern)
	}

	var ledger *export.Ledger
	if !opts.noLedger {
		var closeLedger func()
		ledger, closeLedger, err = a.openLedger()
		if err != nil {
			return export.Run{}, err
		}
		defer closeLedger()
	}

	exportConfig := *a.config.Export
	exportConfig.Force = exportConfig.Force || opts.force
	exporter := export.NewExporter(a.logger, opts.outputDir, &exportConfig, ledger)
	if err = exporter.Begin(ctx); err != nil {
		return export.Run{}, err
	}

	rctx := render.NewContext(a.logger, templating.NewEngine(a.config.Templates), decl)
	a.logger.Info("Generating variants", "species", decl.Name, "count", len(names), "workers", opts.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.workers, 1))
	for _, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			svg, err := rctx.Render(name)
			if err != nil {
				exporter.Fail(decl.Name, name, err)
				return nil
			}
			if _, err = exporter.Export(gctx, decl.Name, name, svg+"\n"); err != nil {
				exporter.Fail(decl.Name, name, err)
			}
			return nil
		})
	}
	waitErr := g.Wait()

	run, err := exporter.Finish(context.WithoutCancel(ctx))
	if err != nil {
		a.logger.Error("Failed to close export run", "error", err)
	}
	a.logger.Info("Generation finished",
		"species", decl.Name,
		"written", run.Written,
		"skipped", run.Skipped,
		"failed", run.Failed)
	return run, waitErr
}

// selectVariants returns the variants of all matched by patterns, in the
// order of all, and the patterns that matched nothing. No patterns selects
// everything.
func selectVariants(all, patterns []string) ([]string, []string, error) {
	if len(patterns) == 0 {
		return all, nil, nil
	}
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, nil, fmt.Errorf("invalid variant pattern %q", pattern)
		}
	}

	matched := make(map[string]bool)
	var unmatched []string
	for _, pattern := range patterns {
		hit := false
		for _, name := range all {
			if ok, _ := doublestar.Match(pattern, name); ok {
				matched[name] = true
				hit = true
			}
		}
		if !hit {
			unmatched = append(unmatched, pattern)
		}
	}

	names := make([]string, 0, len(matched))
	for _, name := range all {
		if matched[name] {
			names = append(names, name)
		}
	}
	return names, unmatched, nil
}

// openLedger opens the export database and prepares the ledger.
func (a *app) openLedger() (*export.Ledger, func(), error) {
	dsn := a.config.Generator.DatabasePath
	if file, _, _ := strings.Cut(dsn, "?"); file != "" && file != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := initDB(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	// sqlite allows one writer at a time and exports run in parallel.
	db.SetMaxOpenConns(1)
	if err = export.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to setup export schema: %w", err)
	}
	ledger, err := export.NewLedger(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to prepare ledger: %w", err)
	}
	ledger.SetLogger(a.logger)
	return ledger, func() {
		ledger.Close()
		a.closeDB(db)
	}, nil
}

func (a *app) closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		a.logger.Error("Failed to close database", "error", err)
	}
}
