package contextkit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/openclaw/skillbench/internal/logging"
)

// watchDebounce is the delay before a burst of file events is folded
// into one dirty flag.
const watchDebounce = 500 * time.Millisecond

// Watcher monitors a skills root for SKILL.md changes. It only sets a
// dirty flag; the caller decides when to rebuild the bundle (the chat
// loop rebuilds on the next clear).
type Watcher struct {
	root   string
	logger *logging.Logger
	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	dirty   bool
}

// NewWatcher creates a watcher over the skills root directory.
func NewWatcher(root string, logger *logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:   root,
		logger: logger.WithComponent("skills-watcher"),
		fsw:    fsw,
	}, nil
}

// Start begins watching the root and its existing subdirectories.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsw.Add(w.root); err != nil {
		return err
	}

	entries, err := os.ReadDir(w.root)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				w.fsw.Add(filepath.Join(w.root, e.Name()))
			}
		}
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Stop shuts down the watcher.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.fsw.Close()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
}

// Dirty reports whether skills changed since the last ClearDirty.
func (w *Watcher) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty
}

// ClearDirty resets the flag after the caller rebuilt the bundle.
func (w *Watcher) ClearDirty() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirty = false
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// A new skill folder needs its own watch.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.fsw.Add(path)
		}
	}

	base := filepath.Base(path)
	if !strings.EqualFold(base, "SKILL.md") && !event.Has(fsnotify.Create) {
		if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
			return
		}
	}

	w.scheduleMark()
}

func (w *Watcher) scheduleMark() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = true

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watchDebounce, func() {
		w.mark()
	})
}

func (w *Watcher) mark() {
	w.mu.Lock()
	if !w.pending {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.dirty = true
	w.mu.Unlock()

	w.logger.Info("skills changed, bundle marked stale")
}
