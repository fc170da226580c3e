package executor

import (
	"context"
	"io"
)

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	Start(ctx context.Context, name string, args ...string) (Process, error)
}

// Process is a long-running command with piped stdin/stdout.
// Stderr is captured and reported by Wait.
type Process interface {
	Stdin() io.WriteCloser
	Stdout() io.Reader
	Wait() error
}
