package decks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-hydrates the deck list when the dataset file changes on
// disk. Writes are coalesced over a short settle window because editors
// and downloads produce bursts of write events.
type Watcher struct {
	loader   *Loader
	onReload func([]Deck)
	logger   *slog.Logger
	stopChan chan struct{}
}

const reloadSettle = 250 * time.Millisecond

// NewWatcher creates a watcher over the loader's dataset path. onReload
// is called with the freshly hydrated deck list after each settled
// change.
func NewWatcher(loader *Loader, onReload func([]Deck), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		loader:   loader,
		onReload: onReload,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Run watches the dataset file until the context is cancelled or Stop is
// called.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			w.logger.Warn("failed to close file watcher", "error", closeErr)
		}
	}()

	if err := watcher.Add(w.loader.path); err != nil {
		return fmt.Errorf("failed to watch deck dataset: %w", err)
	}

	var settle *time.Timer
	var settleC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopChan:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if settle == nil {
				settle = time.NewTimer(reloadSettle)
				settleC = settle.C
			} else {
				settle.Reset(reloadSettle)
			}
		case <-settleC:
			settle = nil
			settleC = nil
			w.logger.Info("deck dataset changed, reloading", "path", w.loader.path)
			w.onReload(w.loader.Load(ctx))
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("deck dataset watch error", "error", watchErr)
		}
	}
}

// Stop ends the watch loop.
func (w *Watcher) Stop() {
	close(w.stopChan)
}
