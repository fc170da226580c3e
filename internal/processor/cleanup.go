package processor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nguyentantai21042004/vidscribe/internal/logger"
)

// RemoveFiles deletes every path that is a regular file and returns how many were removed.
// Missing paths and anything that is not a regular file are skipped. A failed removal
// is logged and joined into the returned error; the remaining paths are still processed.
func RemoveFiles(ctx context.Context, log logger.Logger, paths []string) (int, error) {
	var (
		removed int
		errs    []error
	)
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			log.Debug(ctx, "Skipping cleanup of %s: not a regular file", path)
			continue
		}

		if err := os.Remove(path); err != nil {
			log.Warn(ctx, "Failed to remove %s: %v", path, err)
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
			continue
		}
		removed++
		log.Debug(ctx, "Removed %s", path)
	}
	return removed, errors.Join(errs...)
}

// cleanupAll is phase 3: it removes every input video and derived audio file
func (p *implProcessor) cleanupAll(ctx context.Context, report *Report) {
	seen := make(map[string]bool, 2*len(report.Items))
	var paths []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}
	for _, it := range report.Items {
		add(it.Video)
	}
	for _, it := range report.Items {
		add(it.Audio)
	}

	removed, err := RemoveFiles(ctx, p.logger, paths)
	report.Removed = removed
	if err != nil {
		p.logger.Warn(ctx, "Cleanup finished with errors: %v", err)
		return
	}
	p.logger.Info(ctx, "Cleaned up %d file(s)", removed)
}
