package library

import (
	"path/filepath"
	"sync"
	"time"

	"vidshelf/internal/logging"
	"vidshelf/internal/mediatypes"
	"vidshelf/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to the video files of one folder. Bursts of events
// are coalesced: onChange runs once the folder has been quiet for the delay.
type Watcher struct {
	dir      string
	delay    time.Duration
	onChange func()
	watcher  *fsnotify.Watcher

	timerMu sync.Mutex
	timer   *time.Timer

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewWatcher starts watching dir (not its sub-folders).
func NewWatcher(dir string, delay time.Duration, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		metrics.ScannerWatcherErrors.Inc()
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		metrics.ScannerWatcherErrors.Inc()
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		dir:      dir,
		delay:    delay,
		onChange: onChange,
		watcher:  fw,
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.run()

	logging.Debug("Watching %s for changes (debounce %v)", dir, delay)
	return w, nil
}

// Close stops the watcher and cancels any pending notification.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()

		w.timerMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		w.timerMu.Unlock()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher error on %s: %v", w.dir, err)
			metrics.ScannerWatcherErrors.Inc()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !mediatypes.IsVideoFile(name) {
		return
	}

	metrics.ScannerWatcherEventsTotal.WithLabelValues(eventType(event.Op)).Inc()
	if event.Op == fsnotify.Chmod {
		return
	}
	w.schedule()
}

func (w *Watcher) schedule() {
	select {
	case <-w.done:
		return
	default:
	}

	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(w.delay, func() {
		select {
		case <-w.done:
			return
		default:
		}

		metrics.ScannerRescansTotal.Inc()
		w.onChange()

		w.timerMu.Lock()
		if w.timer == timer {
			w.timer = nil
		}
		w.timerMu.Unlock()
	})
	w.timer = timer
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}
