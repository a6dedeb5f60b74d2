// Package configwatch watches a single pipeline config file for changes
// and signals a debounced reload channel, so `wrench schedule --watch`
// can pick up edits without a restart. Grounded in the teacher's
// internal/controller/filewatcher (Watcher/Debouncer), generalized from
// "watch a directory for N event kinds" down to "watch one file for
// writes", and the teacher's fsnotify + debounce shape is kept intact.
package configwatch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches one config file and emits a debounced reload signal
// on Changes() whenever the file is written or replaced (editors often
// write-then-rename, both of which fsnotify surfaces as separate
// events within the same save).
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan struct{}
	logger  *slog.Logger

	window time.Duration
	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a Watcher for path. debounce is the quiet period required
// before a reload signal fires; pass 0 for a 200ms default.
func New(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		path:    absPath,
		watcher: fsw,
		changes: make(chan struct{}, 1),
		logger:  logger.With(slog.String("component", "configwatch"), slog.String("path", absPath)),
		window:  debounce,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Changes returns a channel that receives a value after the watched
// file settles following a write, create, or rename event. The channel
// is never closed while the Watcher is running; it stops emitting once
// Stop is called.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start begins watching in the background.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Stop releases the underlying fsnotify watcher and waits for the
// background loop to exit.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	<-w.doneCh
	return w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.window)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", slog.String("error", err.Error()))
		}
	}
}
