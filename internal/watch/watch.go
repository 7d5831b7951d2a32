package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/dctlforge/pkg/events"
)

const DefaultDebounce = 200 * time.Millisecond

// Watcher calls OnChange once per burst of writes to a single file
type Watcher struct {
	path     string
	base     string
	debounce time.Duration
	onChange func(path string)
	eventBus *events.EventBus

	watcher *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
	once  sync.Once
}

// New watches the directory holding path. Editors and atomic writers replace files by
// rename, so the directory is watched rather than the file itself.
func New(path string, debounce time.Duration, onChange func(path string), bus *events.EventBus) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		base:     filepath.Base(abs),
		debounce: debounce,
		onChange: onChange,
		eventBus: bus,
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

func (w *Watcher) Path() string {
	return w.path
}

// Start begins delivering change notifications
func (w *Watcher) Start() {
	go w.watch()
}

// Stop closes the watcher and cancels any pending notification
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != w.base {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
			if w.eventBus != nil {
				w.eventBus.Publish(events.Event{
					Type:   events.WatchError,
					Source: w.path,
					Data:   map[string]interface{}{"error": err.Error()},
				})
			}

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	select {
	case <-w.done:
		return
	default:
	}
	if w.onChange != nil {
		w.onChange(w.path)
	}
}
