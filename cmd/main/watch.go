package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CTAG07/emotegen/pkg/species"
	"github.com/fsnotify/fsnotify"
)

// watch generates once, then again after every burst of file changes in the
// species directories, until ctx is cancelled. Each pass starts with a fresh
// declaration and fresh render caches.
func (a *app) watch(ctx context.Context, dir string, patterns []string, opts generateOptions) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()

	pass := func() {
		decl, err := a.loadSpecies(dir)
		if err != nil {
			a.logger.Error("Generation failed", "error", err)
			a.addWatches(w, []string{dir})
			return
		}
		if _, err = a.generateDeclaration(ctx, decl, patterns, opts); err != nil {
			a.logger.Error("Generation failed", "error", err)
		}
		a.addWatches(w, decl.Dirs())
	}
	pass()

	debounce := time.Duration(a.config.Generator.WatchDebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	timer := time.NewTimer(debounce)
	timer.Stop()

	a.logger.Info("Watching for changes", "species", dir)
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Stopped watching")
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			a.logger.Debug("File change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("Watcher error", "error", err)

		case <-timer.C:
			pass()
		}
	}
}

// addWatches watches every species directory in dirs together with its
// templates, variants and assets subdirectories. Adding a path that is
// already watched is a no-op.
func (a *app) addWatches(w *fsnotify.Watcher, dirs []string) {
	for _, d := range dirs {
		for _, path := range []string{d, filepath.Join(d, species.TemplatesDir), filepath.Join(d, species.VariantsDir), filepath.Join(d, species.AssetsDir)} {
			if info, err := os.Stat(path); err != nil || !info.IsDir() {
				continue
			}
			if err := w.Add(path); err != nil {
				a.logger.Warn("Failed to watch directory", "path", path, "error", err)
			}
		}
	}
}
