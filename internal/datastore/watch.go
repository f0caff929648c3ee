package datastore

import (
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/romdo/go-debounce"
)

// Coalesce the burst of events an editor save produces, but report a file
// that keeps changing at least every debounceMaxWait
const (
	debounceDelay   = 250 * time.Millisecond
	debounceMaxWait = 2 * time.Second
)

// Watcher reports changes to a datastore file
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan struct{}
	logger  *log.Logger

	notify func()
	cancel func()
	done   chan struct{}
}

// NewWatcher starts watching path. The parent directory is watched so that
// editors which replace the file on save are still seen.
func NewWatcher(path string, logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = fw.Close()
		return nil, err
	}

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    abs,
		watcher: fw,
		changes: make(chan struct{}, 1),
		logger:  logger,
		done:    make(chan struct{}),
	}
	w.notify, w.cancel = debounce.NewWithMaxWait(debounceDelay, debounceMaxWait, w.send)
	go w.run()
	return w, nil
}

// Changes delivers one notification per settled burst of writes
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.logger.Debug("datastore file changed", "path", event.Name, "op", event.Op.String())
				w.notify()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("datastore watch error", "err", err)
		}
	}
}

func (w *Watcher) send() {
	select {
	case w.changes <- struct{}{}:
	default:
		// a notification is already pending
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	w.cancel()
	close(w.done)
	return w.watcher.Close()
}
