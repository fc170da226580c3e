package processor

import (
	"fmt"
	"time"
)

// Phase names a pipeline stage
type Phase string

const (
	PhaseExtracting   Phase = "extracting"
	PhaseTranscribing Phase = "transcribing"
	PhaseCleaningUp   Phase = "cleaning_up"
)

// PhaseError is a failure that stopped the pipeline inside a phase
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// Item is the outcome for one input video
type Item struct {
	Index int
	Video string
	Audio string

	ExtractErr      error
	ExtractDuration time.Duration

	// Skipped is set when the item never reached transcription
	Skipped            bool
	Transcript         string
	Language           string
	TranscribeErr      error
	TranscribeDuration time.Duration

	DocxPath string
}

// Extracted reports whether phase 1 produced the audio file
func (it Item) Extracted() bool { return it.ExtractErr == nil }

// Transcribed reports whether phase 2 produced a transcript
func (it Item) Transcribed() bool {
	return !it.Skipped && it.ExtractErr == nil && it.TranscribeErr == nil
}

// Report collects per-input results of one run
type Report struct {
	RunID    string
	UserID   string
	Started  time.Time
	Finished time.Time
	Items    []Item
	Removed  int
}

func newReport(runID, userID string, videos, audios []string) *Report {
	r := &Report{
		RunID:   runID,
		UserID:  userID,
		Started: time.Now(),
		Items:   make([]Item, len(videos)),
	}
	for i := range videos {
		r.Items[i] = Item{Index: i, Video: videos[i], Audio: audios[i], Skipped: true}
	}
	return r
}

// ExtractionFailures counts the inputs whose audio could not be extracted
func (r *Report) ExtractionFailures() int {
	n := 0
	for _, it := range r.Items {
		if !it.Extracted() {
			n++
		}
	}
	return n
}

// TranscribedCount counts the inputs that produced a transcript
func (r *Report) TranscribedCount() int {
	n := 0
	for _, it := range r.Items {
		if it.Transcribed() {
			n++
		}
	}
	return n
}

// Elapsed is the wall time of the run so far
func (r *Report) Elapsed() time.Duration {
	if r.Finished.IsZero() {
		return time.Since(r.Started)
	}
	return r.Finished.Sub(r.Started)
}
