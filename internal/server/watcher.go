package server

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/qanoonhq/qanoon/internal/search"
)

// reloadDebounce coalesces the event burst an ingest run produces into
// one rebuild.
const reloadDebounce = 500 * time.Millisecond

// Watcher reloads the engine snapshot when the data directory changes.
// The new snapshot is built off to the side; queries keep the old one
// until the swap.
type Watcher struct {
	engine  *search.Engine
	dataDir string
	rebuild func() (*search.Snapshot, error)
	logger  *slog.Logger
}

// NewWatcher creates a watcher over dataDir. rebuild must produce a
// complete snapshot from the on-disk artifacts.
func NewWatcher(engine *search.Engine, dataDir string, rebuild func() (*search.Snapshot, error), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{engine: engine, dataDir: dataDir, rebuild: rebuild, logger: logger}
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dataDir); err != nil {
		return err
	}

	var debounce *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch_error", slog.String("error", err.Error()))

		case <-reload:
			w.swap()
		}
	}
}

// relevant filters events down to the corpus artifacts. Lock churn and
// temp files during ingest do not trigger reloads on their own.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	return name == "chunks.jsonl" || name == "meta.db" || name == "idx"
}

// closeGrace is how long a replaced snapshot stays open for queries that
// loaded it before the swap.
const closeGrace = 5 * time.Second

// swap rebuilds the snapshot and installs it. The old snapshot's indexes
// close after a grace period so in-flight queries finish against them.
func (w *Watcher) swap() {
	start := time.Now()
	snap, err := w.rebuild()
	if err != nil {
		w.logger.Error("reload_failed", slog.String("error", err.Error()))
		return
	}

	old := w.engine.Swap(snap)
	if old != nil {
		time.AfterFunc(closeGrace, func() {
			if old.Lexical != nil {
				_ = old.Lexical.Close()
			}
			if old.Dense != nil {
				_ = old.Dense.Close()
			}
		})
	}

	w.logger.Info("snapshot_reloaded",
		slog.Int("chunks", snap.Corpus.Len()),
		slog.Duration("duration", time.Since(start)))
}
