package preseed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSettleDelay is how long the watcher waits after a file event
// before reading the pack, so a writer still flushing is not read short.
const DefaultSettleDelay = 200 * time.Millisecond

// Watcher loads packs dropped into the preseed directory while the
// process runs.
type Watcher struct {
	loader *Loader
	dir    string
	logger *zap.Logger
	settle time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// NewWatcher creates a watcher over dir that loads packs through loader.
func NewWatcher(loader *Loader, dir string, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		loader: loader,
		dir:    dir,
		logger: logger,
		settle: DefaultSettleDelay,
	}
}

// Watch registers the directory and starts the event loop. It returns once
// watching is established; the loop runs until ctx is cancelled or Close
// is called. The directory is created when absent.
func (w *Watcher) Watch(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating preseed directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	w.mu.Lock()
	w.watcher = fw
	w.mu.Unlock()

	go w.run(ctx, fw)

	w.logger.Info("watching preseed directory", zap.String("dir", w.dir))
	return nil
}

// Close stops the event loop. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("preseed watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
		return
	}

	// The create event can arrive before the writer finishes.
	time.Sleep(w.settle)

	if _, err := os.Stat(event.Name); err != nil {
		return
	}

	if _, err := w.loader.LoadFile(ctx, event.Name); err != nil {
		w.logger.Error("loading preseed pack",
			zap.String("path", event.Name),
			zap.Error(err))
	}
}
