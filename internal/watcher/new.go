package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/vidscribe/internal/logger"
)

// DefaultMaxConcurrent bounds handler runs when no limit is configured
const DefaultMaxConcurrent = 2

// DefaultSettle is how long a new file is left alone before it is handled
const DefaultSettle = 500 * time.Millisecond

// Options tune a Watcher; zero values pick the defaults
type Options struct {
	MaxConcurrent int
	Settle        time.Duration
}

// New creates a new Watcher instance with concurrency control
func New(dir string, handler EventHandler, log logger.Logger, opts Options) (Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}

	return &implWatcher{
		dir:       dir,
		handler:   handler,
		logger:    log,
		watcher:   fw,
		opts:      opts,
		semaphore: make(chan struct{}, opts.MaxConcurrent),
		pending:   make(map[string]bool),
	}, nil
}
