package watch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"whisper-batch/internal/logging"
	"whisper-batch/internal/media"
)

// SubmitFunc hands a newly detected audio file to the queue.
type SubmitFunc func(path string) error

// Watcher submits audio files that appear in a directory.
type Watcher struct {
	dir      string
	submit   SubmitFunc
	debounce time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// New creates a watcher for dir. Files already present are submitted by
// Run before watching starts.
func New(dir string, debounce time.Duration, submit SubmitFunc, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		dir:      dir,
		submit:   submit,
		debounce: debounce,
		logger:   logging.OrNop(logger),
		seen:     make(map[string]struct{}),
	}
}

// Run scans the directory, then watches it until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	existing, err := media.ScanDirectory(w.dir)
	if err != nil {
		return err
	}
	for _, path := range existing {
		w.offer(path)
	}
	w.logger.Info("watching directory", zap.String("dir", w.dir), zap.Int("existing", len(existing)))

	// Writes arrive in bursts while a file is copied in; submit once it settles.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !media.IsAudioFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				pending[event.Name] = time.Now()
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				delete(pending, event.Name)
				w.forget(event.Name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.debounce {
					continue
				}
				delete(pending, path)
				if info, err := os.Stat(path); err != nil || info.IsDir() {
					continue
				}
				w.offer(path)
			}
		}
	}
}

// offer submits path once per appearance.
func (w *Watcher) offer(path string) {
	w.mu.Lock()
	if _, ok := w.seen[path]; ok {
		w.mu.Unlock()
		return
	}
	w.seen[path] = struct{}{}
	w.mu.Unlock()

	if err := w.submit(path); err != nil {
		w.logger.Warn("submit failed", zap.String("path", path), zap.Error(err))
		w.forget(path)
		return
	}
	w.logger.Info("file queued", zap.String("path", path))
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.seen, path)
	w.mu.Unlock()
}
