// Package ingest watches a drop location for session artifacts and
// hands every new artifact to a handler.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jakopako/pomgen/internal/artifact"
	"github.com/jakopako/pomgen/internal/log"
)

const defaultSettle = 500 * time.Millisecond

// WatcherConfig holds the watcher section of the configuration.
type WatcherConfig struct {
	Dir        string `yaml:"dir" env:"POMGEN_WATCH_DIR"`
	Prefix     string `yaml:"prefix" env-default:"recordedActions"`
	Extension  string `yaml:"extension" env-default:".json"`
	SettleMS   int    `yaml:"settle_ms" env-default:"500"`
	ArchiveDir string `yaml:"archive_dir"`
}

// A Handler processes a single artifact.
type Handler func(ctx context.Context, path string) error

// Watcher watches a directory for artifacts. Files have to match the
// configured prefix and extension, everything else is ignored. Once a
// file matched, the watcher waits until no further events arrived for
// the settle delay before handing it over, so that files that are
// still being written are not read.
type Watcher struct {
	dir       string
	prefix    string
	ext       string
	settle    time.Duration
	handler   Handler
	mu        sync.Mutex
	processed map[string]time.Time
	logger    *slog.Logger
}

func NewWatcher(wc *WatcherConfig, handler Handler) *Watcher {
	w := &Watcher{
		dir:       wc.Dir,
		prefix:    wc.Prefix,
		ext:       wc.Extension,
		settle:    time.Duration(wc.SettleMS) * time.Millisecond,
		handler:   handler,
		processed: map[string]time.Time{},
		logger:    slog.With(slog.String("component", "watcher"), slog.String("dir", wc.Dir)),
	}
	if w.prefix == "" {
		w.prefix = artifact.DefaultPrefix
	}
	if w.ext == "" {
		w.ext = artifact.Extension
	}
	if w.settle <= 0 {
		w.settle = defaultSettle
	}
	return w
}

// Matches reports whether the file at path is an artifact.
func (w *Watcher) Matches(path string) bool {
	return artifact.Matches(path, w.prefix, w.ext)
}

// process runs the handler on path unless the file is gone or has
// already been handled in its current state. A file that failed is
// only retried after it has been modified.
func (w *Watcher) process(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		// most likely already moved to the archive
		w.logger.Debug(fmt.Sprintf("skipping %s: %v", path, err))
		return
	}
	w.mu.Lock()
	if last, found := w.processed[path]; found && last.Equal(info.ModTime()) {
		w.mu.Unlock()
		return
	}
	w.processed[path] = info.ModTime()
	w.mu.Unlock()

	w.logger.Info(fmt.Sprintf("detected artifact %s", filepath.Base(path)))
	if err := w.handler(ctx, path); err != nil {
		w.logger.Error(fmt.Sprintf("error processing %s: %v", filepath.Base(path), err))
	}
}

// ScanExisting processes artifacts that are already present in the
// directory, in lexical order. Run calls it once the directory is
// watched, to pick up artifacts that arrived while the watcher was not
// running.
func (w *Watcher) ScanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		if w.Matches(path) {
			w.process(ctx, path)
		}
	}
	return nil
}

// Run processes the artifacts already present and then watches the
// directory until ctx is cancelled. The scan starts after the watch is
// in place, so an artifact arriving in between is seen by at least one
// of the two and handled once.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info(fmt.Sprintf("watching for %s*%s", w.prefix, w.ext))
	ctx = log.ContextWithLogger(ctx, w.logger)
	if err := w.ScanExisting(ctx); err != nil {
		w.logger.Warn(fmt.Sprintf("failed to scan %s: %v", w.dir, err))
	}

	// ready collects paths until the settle timer fires. A single timer
	// is reset on each event.
	ready := map[string]bool{}

	// artifacts are handled one at a time, in the order they settled
	queue := make(chan string, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for path := range queue {
			w.process(ctx, path)
		}
	}()

	flush := func() {
		batch := make([]string, 0, len(ready))
		for p := range ready {
			batch = append(batch, p)
		}
		ready = map[string]bool{}
		slices.Sort(batch)
		for _, p := range batch {
			select {
			case queue <- p:
			case <-ctx.Done():
				return
			}
		}
	}

	settleTimer := time.NewTimer(w.settle)
	settleTimer.Stop()

	defer func() {
		settleTimer.Stop()
		close(queue)
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-settleTimer.C:
			flush()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.Matches(event.Name) {
				continue
			}
			ready[event.Name] = true
			settleTimer.Reset(w.settle)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(fmt.Sprintf("watcher error: %v", err))
		}
	}
}
