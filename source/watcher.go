package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Handler receives each successfully loaded document version.
type Handler func(*Document)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatchLogger sets the watcher's logger.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithWatchLoadOptions sets how each version is parsed.
func WithWatchLoadOptions(opts LoadOptions) WatcherOption {
	return func(w *Watcher) {
		w.load = opts
	}
}

// Watcher reloads a grid file whenever it changes. The parent directory is
// watched so that editors that replace the file by renaming are seen.
type Watcher struct {
	path   string
	load   LoadOptions
	logger *slog.Logger
}

// NewWatcher watches the file at path.
func NewWatcher(path string, options ...WatcherOption) (*Watcher, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("path %s is not accessible: %w", path, err)
	}
	w := &Watcher{
		path:   filepath.Clean(path),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(w)
	}
	if _, err := w.load.format(w.path); err != nil {
		return nil, err
	}
	return w, nil
}

// Run loads the file, passes it to handle, and again on every change until ctx
// is done. A version that fails to load is logged and skipped; the handler keeps
// the last good document.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	doc, err := LoadFile(w.path, w.load)
	if err != nil {
		return err
	}
	w.logger.Info("table loaded", "path", w.path, "version", doc.Version, "rows", len(doc.Grid)-1)
	handle(doc)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			doc, err := LoadFile(w.path, w.load)
			if err != nil {
				w.logger.Warn("reload failed", "path", w.path, "op", event.Op.String(), "error", err)
				continue
			}
			w.logger.Info("table reloaded", "path", w.path, "version", doc.Version, "rows", len(doc.Grid)-1)
			handle(doc)
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write)
}
