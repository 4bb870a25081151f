// Package watch triggers rebuilds when content files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/contentpipe/internal/logfields"
)

// DefaultDebounce is how long the watcher waits for a burst of changes to
// settle before rebuilding.
const DefaultDebounce = 500 * time.Millisecond

// RebuildFunc is called once per settled burst of changes. Calls never
// overlap.
type RebuildFunc func(ctx context.Context) error

// Watcher watches a content root and its type directories.
type Watcher struct {
	root       string
	extensions []string
	debounce   time.Duration
	rebuild    RebuildFunc
	logger     *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the settle delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExtensions limits the files whose changes trigger a rebuild.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.extensions = w.extensions[:0]
		for _, e := range exts {
			w.extensions = append(w.extensions, "."+strings.TrimPrefix(strings.ToLower(e), "."))
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a watcher over root calling rebuild after changes.
func New(root string, rebuild RebuildFunc, opts ...Option) *Watcher {
	w := &Watcher{
		root:       root,
		extensions: []string{".mdx", ".md"},
		debounce:   DefaultDebounce,
		rebuild:    rebuild,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is canceled. It returns nil on cancellation and an
// error only when watching could not start.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := fw.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	if err := w.addTree(fw); err != nil {
		return err
	}
	w.logger.Info("Watching content", logfields.Path(w.root), slog.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(fw, ev) {
				continue
			}
			w.logger.Debug("Content change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Content watcher error", logfields.Error(err))
		case <-timer.C:
			if err := w.rebuild(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

// addTree watches the root and every directory directly below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher) error {
	if err := fw.Add(w.root); err != nil {
		return fmt.Errorf("failed to watch content directory %s: %w", w.root, err)
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("failed to list content directory %s: %w", w.root, err)
	}
	for _, e := range entries {
		if e.IsDir() && !hidden(e.Name()) {
			dir := filepath.Join(w.root, e.Name())
			if err := fw.Add(dir); err != nil {
				return fmt.Errorf("failed to watch content directory %s: %w", dir, err)
			}
		}
	}
	return nil
}

// relevant reports whether ev should trigger a rebuild. New type
// directories are added to the watch list as they appear.
func (w *Watcher) relevant(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	if hidden(name) {
		return false
	}
	if ev.Has(fsnotify.Create) && filepath.Dir(ev.Name) == filepath.Clean(w.root) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := fw.Add(ev.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
			}
			return true
		}
	}
	ext := strings.ToLower(filepath.Ext(name))
	// A removed or renamed directory has no extension and no longer stats.
	return slices.Contains(w.extensions, ext) || (ext == "" && !ev.Has(fsnotify.Write))
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || strings.HasSuffix(name, "~")
}
