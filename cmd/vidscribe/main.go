package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nguyentantai21042004/vidscribe/internal/processor"
)

// Exit codes
const (
	exitOK     = 0
	exitUsage  = 1
	exitFailed = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		// after the first signal, a second one terminates immediately
		<-ctx.Done()
		stop()
	}()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	return exitCode(cmd.ExecuteContext(ctx), stderr)
}

// usageError marks bad invocations; the usage line is printed with it
type usageError struct {
	usage string
	err   error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}

	var phaseErr *processor.PhaseError
	if errors.As(err, &phaseErr) {
		switch phaseErr.Phase {
		case processor.PhaseExtracting:
			fmt.Fprintf(stderr, "Error occurred attempting to extract audio: %v\n", phaseErr.Err)
		default:
			fmt.Fprintf(stderr, "Error occurred attempting to transcribe audio: %v\n", phaseErr.Err)
		}
		return exitFailed
	}

	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "Error: %v\n", usageErr.err)
		fmt.Fprintf(stderr, "Usage: %s\n", usageErr.usage)
		return exitUsage
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitUsage
}
