package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/vidscribe/internal/logger"
)

// VideoExtensions lists the file types picked up in watch mode
var VideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v", ".flv"}

type implWatcher struct {
	dir       string
	handler   EventHandler
	logger    logger.Logger
	watcher   *fsnotify.Watcher
	opts      Options
	semaphore chan struct{}
	wg        sync.WaitGroup

	mu      sync.Mutex
	pending map[string]bool
}

// Start monitors the directory and hands every new video to the handler
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.opts.MaxConcurrent, w.dir)
	w.logger.Info(ctx, "Supported formats: %s", strings.Join(VideoExtensions, ", "))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !IsVideoFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-video file: %s", event.Name)
				continue
			}
			w.dispatch(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// dispatch runs the handler for path in the background once the file has settled.
// A path already waiting or running is not queued twice.
func (w *implWatcher) dispatch(ctx context.Context, path string) {
	w.mu.Lock()
	if w.pending[path] {
		w.mu.Unlock()
		return
	}
	w.pending[path] = true
	w.mu.Unlock()

	w.logger.Info(ctx, "New video detected: %s", path)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			delete(w.pending, path)
			w.mu.Unlock()
		}()

		// let the writer finish before ffmpeg opens the file
		select {
		case <-time.After(w.opts.Settle):
		case <-ctx.Done():
			w.logger.Info(ctx, "Shutting down; %s was not processed", path)
			return
		}

		select {
		case w.semaphore <- struct{}{}:
		case <-ctx.Done():
			w.logger.Info(ctx, "Shutting down; %s was not processed", path)
			return
		}
		defer func() { <-w.semaphore }()

		// a started run finishes even when shutdown begins
		if err := w.handler(context.WithoutCancel(ctx), path); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		}
	}()
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// IsVideoFile checks if the file has a supported video extension
func IsVideoFile(path string) bool {
	return slices.Contains(VideoExtensions, strings.ToLower(filepath.Ext(path)))
}
