package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/vidscribe/internal/config"
)

// extractAudio writes the audio track of videoPath to audioPath as MP3, overwriting it
func (p *implProcessor) extractAudio(ctx context.Context, videoPath, audioPath string) error {
	p.logger.Info(ctx, "Extracting audio: %s -> %s", videoPath, audioPath)

	// -vn: no video
	// -q:a: VBR quality for the MP3 encoder
	// -y: overwrite output file if exists
	args := []string{
		"-i", videoPath,
		"-vn",
		"-acodec", p.cfg.FFmpeg.AudioCodec,
		"-q:a", p.cfg.FFmpeg.Quality,
		audioPath,
		"-y",
	}

	if _, err := p.executor.Execute(ctx, p.cfg.FFmpeg.BinaryPath, args...); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w", err)
	}

	p.logger.Debug(ctx, "Audio extracted successfully: %s", audioPath)
	return nil
}

// extractAll is phase 1. It only returns an error under the fail_fast policy
// or when the run itself was cancelled.
func (p *implProcessor) extractAll(ctx context.Context, report *Report) error {
	failFast := p.cfg.Pipeline.ExtractionFailure == config.FailFast

	indices := make([]int, len(report.Items))
	for i := range indices {
		indices[i] = i
	}

	errs, first := p.fanOut(ctx, indices, failFast, func(ctx context.Context, i int) error {
		it := &report.Items[i]
		start := time.Now()
		err := p.extractAudio(ctx, it.Video, it.Audio)
		it.ExtractDuration = time.Since(start)
		if err != nil {
			p.logger.Error(ctx, "Error occurred while extracting audio from %s: %v", it.Video, err)
		}
		return err
	})
	for k, i := range indices {
		report.Items[i].ExtractErr = errs[k]
	}

	if first != nil {
		return first
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if n := report.ExtractionFailures(); n > 0 {
		p.logger.Warn(ctx, "Audio extraction failed for %d of %d video(s); continuing with the rest", n, len(report.Items))
	}
	return nil
}
