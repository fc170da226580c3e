package watcher

import "context"

// Watcher defines the interface for file system monitoring
type Watcher interface {
	// Start blocks until ctx ends, then waits for in-flight handlers
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is a function that handles a newly created video file
type EventHandler func(ctx context.Context, filePath string) error
