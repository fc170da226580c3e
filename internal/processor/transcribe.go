package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/vidscribe/internal/transcriber"
)

// transcribeAll is phase 2. The first transcription error cancels the others.
func (p *implProcessor) transcribeAll(ctx context.Context, report *Report) error {
	var indices []int
	for i, it := range report.Items {
		if !it.Extracted() {
			p.logger.Warn(ctx, "Skipping transcription of %s: no audio was extracted", it.Video)
			continue
		}
		indices = append(indices, i)
	}
	if len(indices) == 0 {
		p.logger.Warn(ctx, "Nothing to transcribe")
		return nil
	}

	if prep, ok := p.transcriber.(transcriber.Preparer); ok {
		if err := prep.Prepare(ctx); err != nil {
			return fmt.Errorf("prepare transcriber: %w", err)
		}
	}

	out := newTranscriptWriter(p.stdout, p.cfg.Pipeline.OrderedOutput)

	errs, first := p.fanOut(ctx, indices, true, func(ctx context.Context, i int) error {
		it := &report.Items[i]
		it.Skipped = false

		p.logger.Info(ctx, "Transcribing %s", it.Audio)
		start := time.Now()
		res, err := p.transcriber.Transcribe(ctx, it.Audio)
		it.TranscribeDuration = time.Since(start)
		if err != nil {
			return fmt.Errorf("transcribe %s: %w", it.Audio, err)
		}

		it.Transcript = oneLine(res.Text)
		it.Language = res.Language
		if err := out.emit(i, res.Text); err != nil {
			p.logger.Warn(ctx, "Failed to write transcript of %s: %v", it.Video, err)
		}
		p.logger.Info(ctx, "Transcription completed: %s (%s)", it.Audio, it.TranscribeDuration.Round(time.Millisecond))
		return nil
	})
	for k, i := range indices {
		report.Items[i].TranscribeErr = errs[k]
	}

	if err := out.flush(); err != nil {
		p.logger.Warn(ctx, "Failed to write transcripts: %v", err)
	}

	if first != nil {
		return first
	}
	return ctx.Err()
}
