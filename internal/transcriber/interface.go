package transcriber

import (
	"context"
	"time"
)

// Result is the transcript of one audio file.
type Result struct {
	Text     string
	Language string
	Duration time.Duration
}

// Transcriber turns an audio file into text.
// Implementations are safe for concurrent use.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (Result, error)
	Close() error
}

// Preparer is implemented by backends that need a one-time setup
// (weight download, long-lived model process) before the first Transcribe.
type Preparer interface {
	Prepare(ctx context.Context) error
}
