package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/vidscribe/internal/logger"
	"github.com/nguyentantai21042004/vidscribe/internal/watcher"
)

// runWatch runs the pipeline for every video created in --watch until the context ends.
// Runs already started are allowed to finish.
func runWatch(cmd *cobra.Command, opts *options, userID string, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(cfg.Logging.Level, stderr)
	ctx := cmd.Context()

	proc, tr, err := newPipeline(cfg, log, stdout)
	if err != nil {
		return err
	}
	defer tr.Close()

	handle := func(ctx context.Context, path string) error {
		report, err := proc.Run(ctx, userID, []string{path})
		if opts.summary && report != nil {
			renderSummary(stderr, report)
		}
		return err
	}

	w, err := watcher.New(opts.watchDir, handle, log, watcher.Options{MaxConcurrent: cfg.Pipeline.MaxConcurrent})
	if err != nil {
		return err
	}
	defer w.Stop()

	log.Info(ctx, "Watching %s for user %s. Press Ctrl+C to stop", opts.watchDir, userID)
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info(ctx, "Watch mode stopped")
	return nil
}
