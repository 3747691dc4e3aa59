package notify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/engine"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/filelock"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// DefaultDebounce is how long the watcher waits after a filesystem event
// before draining, so a burst of appends collapses into one application.
const DefaultDebounce = 100 * time.Millisecond

// Applier receives drained entries grouped into one scheduling unit.
// *engine.Engine satisfies it.
type Applier interface {
	BulkUpdate(updates []engine.SectionUpdate) []string
}

// Watcher observes the notification document and applies appended
// entries to the engine.
//
// It watches the document's parent directory rather than the file
// itself: writers replace the file by rename, which would silently
// detach a watch on the old inode.
type Watcher struct {
	mu sync.Mutex

	store    *Store
	applier  Applier
	debounce time.Duration

	watcher *fsnotify.Watcher
	timer   *time.Timer
	stopCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher draining store into applier. A
// non-positive debounce gets DefaultDebounce.
func NewWatcher(store *Store, applier Applier, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		store:    store,
		applier:  applier,
		debounce: debounce,
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching and immediately drains anything that was posted
// before the daemon came up.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}

	w.watcher = fw
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	dir := filepath.Dir(w.store.Path())
	if err := os.MkdirAll(dir, 0755); err != nil {
		w.Stop()
		return err
	}
	if err := fw.Add(dir); err != nil {
		w.Stop()
		return err
	}

	go w.processEvents(ctx)

	w.drain()

	logging.Info("Notify", "Watching %s for appended notifications", w.store.Path())
	return nil
}

// processEvents consumes filesystem events until shutdown.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.cancelTimer()
			return

		case <-w.stopCh:
			w.cancelTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Notify", err, "Filesystem watcher error")
		}
	}
}

// handleFsEvent filters directory events down to changes of the
// document itself.
func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.store.Path()) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	w.scheduleDrain()
}

// scheduleDrain (re)arms the debounce timer. Successive events within
// the window collapse into a single drain.
func (w *Watcher) scheduleDrain() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.drain)
}

// drain empties the document and hands the entries to the applier as
// one scheduling unit. A busy lock means a writer is mid-append; its
// rename will raise another event, and we re-arm as well in case the
// holder died and the marker has to age out first.
func (w *Watcher) drain() {
	entries, err := w.store.Drain()
	if err != nil {
		if errors.Is(err, filelock.ErrNotAcquired) {
			logging.Debug("Notify", "Document busy, retrying next cycle")
			w.scheduleDrain()
			return
		}
		logging.Error("Notify", err, "Failed to drain document")
		return
	}
	if len(entries) == 0 {
		return
	}

	updates := Updates(entries)
	if len(updates) == 0 {
		return
	}
	changed := w.applier.BulkUpdate(updates)
	logging.Debug("Notify", "Applied %d entries, %d sections changed", len(entries), len(changed))
}

// cancelTimer stops a pending debounce timer.
func (w *Watcher) cancelTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Stop gracefully stops the watcher. A drain already in flight
// completes; no new one is scheduled.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}

	w.running = false
	close(w.stopCh)

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}

	fw := w.watcher
	w.watcher = nil
	w.mu.Unlock()

	if fw != nil {
		if err := fw.Close(); err != nil {
			logging.Error("Notify", err, "Error closing filesystem watcher")
		}
	}

	logging.Info("Notify", "Stopped notification watcher")
	return nil
}
