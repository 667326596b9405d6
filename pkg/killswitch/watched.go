package killswitch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Watched is a Switch that keeps the sentinel state in an atomic flag
// updated from filesystem events instead of stat-ing on every call.
//
// Tradeoff, chosen explicitly by the host: Engaged becomes a lock-free load,
// but the "takes effect within one call" guarantee of File weakens to the
// watcher's event delivery latency. A fresh stat on every event (rather than
// trusting the event kind) keeps the flag correct across editor rename
// tricks and missed events.
type Watched struct {
	path    string
	watcher *fsnotify.Watcher
	engaged atomic.Bool
	logger  *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWatched starts watching the sentinel's parent directory (the sentinel
// itself may not exist yet) and seeds the flag with an initial stat.
func NewWatched(path string, logger *slog.Logger) (*Watched, error) {
	if path == "" {
		return nil, fmt.Errorf("killswitch: path required")
	}
	if logger == nil {
		logger = slog.Default().With("component", "killswitch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("killswitch: create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("killswitch: watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watched{
		path:    path,
		watcher: watcher,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	w.refresh()

	go w.run()
	return w, nil
}

// Engaged reports the cached sentinel state.
func (w *Watched) Engaged() bool {
	return w.engaged.Load()
}

// Close stops the watcher goroutine and releases the fsnotify handle.
func (w *Watched) Close() error {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.doneCh
	return w.watcher.Close()
}

// run is the event loop updating the cached flag.
func (w *Watched) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			before := w.engaged.Load()
			after := w.refresh()
			if before != after {
				w.logger.Warn("kill switch state changed",
					"path", w.path,
					"engaged", after,
					"event", event.Op.String(),
				)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("kill switch watcher error",
				"path", w.path,
				"error", err,
			)
			// Fall back to a fresh stat so a dropped event cannot leave the
			// flag stale.
			w.refresh()
		}
	}
}

// refresh re-stats the sentinel and stores the result.
func (w *Watched) refresh() bool {
	_, err := os.Stat(w.path)
	engaged := err == nil
	w.engaged.Store(engaged)
	return engaged
}
