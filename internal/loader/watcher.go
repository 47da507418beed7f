package loader

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a dataset directory and emits a monotonically increasing
// reload token after each settled burst of changes to supported files.
// Any token bump invalidates every cache derived from the previous load.
type Watcher struct {
	Dir     string
	Reloads <-chan uint64 // read-only external channel

	reloads chan uint64
	done    chan struct{}
	watcher *fsnotify.Watcher
	token   uint64
}

// NewWatcher creates a watcher for the given dataset directory.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan uint64, 16)
	return &Watcher{
		Dir:     dir,
		Reloads: ch,
		reloads: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start begins watching the dataset directory.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.Dir); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // wait for loop to exit
	close(w.reloads)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: collapse an edit burst into a single token bump.
	const debounce = 100 * time.Millisecond
	var lastEvent time.Time
	pending := false
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if pending {
					w.bump()
				}
				return
			}
			if !w.isDatasetFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = true
				lastEvent = time.Now()
			}

		case _, ok := <-ticker.C:
			if !ok {
				return
			}
			if pending && time.Since(lastEvent) >= debounce {
				pending = false
				w.bump()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next successful event still
			// triggers a reload.
		}
	}
}

func (w *Watcher) isDatasetFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	return supportedExtensions[ext]
}

func (w *Watcher) bump() {
	w.token++
	select {
	case w.reloads <- w.token:
	default:
		// Receiver is behind; the next bump carries a fresher token anyway.
	}
}
