package processor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/vidscribe/internal/export"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
)

// Run orchestrates the whole pipeline: Extracting -> Transcribing -> CleaningUp
func (p *implProcessor) Run(ctx context.Context, userID string, videoPaths []string) (*Report, error) {
	if len(videoPaths) == 0 {
		return nil, errors.New("no video paths given")
	}

	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	report := newReport(runID, userID, videoPaths, DeriveAudioPaths(videoPaths))

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting run %s for user %s: %d video(s)", runID, userID, len(videoPaths))
	p.logger.Info(ctx, "========================================")

	p.logger.Info(ctx, "Phase 1/3: extracting audio")
	if err := p.extractAll(ctx, report); err != nil {
		return p.abort(ctx, report, &PhaseError{Phase: PhaseExtracting, Err: err})
	}

	p.logger.Info(ctx, "Phase 2/3: transcribing audio")
	if err := p.transcribeAll(ctx, report); err != nil {
		return p.abort(ctx, report, &PhaseError{Phase: PhaseTranscribing, Err: err})
	}

	p.exportAll(ctx, report)

	p.logger.Info(ctx, "Phase 3/3: cleaning up")
	p.cleanupAll(ctx, report)

	report.Finished = time.Now()
	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Run completed: %d of %d video(s) transcribed", report.TranscribedCount(), len(report.Items))
	p.logger.Info(ctx, "Processing time: %s", report.Elapsed().Round(time.Millisecond))
	p.logger.Info(ctx, "========================================")

	return report, nil
}

// abort ends the run after a failed phase. Files stay on disk unless
// pipeline.cleanup_on_failure is set.
func (p *implProcessor) abort(ctx context.Context, report *Report, err *PhaseError) (*Report, error) {
	if p.cfg.Pipeline.CleanupOnFailure {
		p.logger.Info(ctx, "Phase 3/3: cleaning up after failure")
		p.cleanupAll(ctx, report)
	} else {
		p.logger.Warn(ctx, "Run failed while %s; leaving files in place", err.Phase)
	}
	report.Finished = time.Now()
	return report, err
}

// exportAll writes a .docx copy of each transcript when an exporter is configured
func (p *implProcessor) exportAll(ctx context.Context, report *Report) {
	if p.exporter == nil {
		return
	}
	for i := range report.Items {
		it := &report.Items[i]
		if !it.Transcribed() {
			continue
		}
		path, err := p.exporter.Export(ctx, export.Transcript{
			UserID: report.UserID,
			Index:  it.Index,
			Video:  it.Video,
			Text:   it.Transcript,
		})
		if err != nil {
			p.logger.Warn(ctx, "Failed to export transcript of %s: %v", it.Video, err)
			continue
		}
		it.DocxPath = path
	}
}
