package processor

import "context"

// Processor runs the extract, transcribe and cleanup phases over a batch of videos
type Processor interface {
	// Run processes videoPaths in three barrier-separated phases.
	// Transcripts go to the configured writer, one line per input.
	// A *PhaseError is returned when a phase aborts the run.
	Run(ctx context.Context, userID string, videoPaths []string) (*Report, error)
}
