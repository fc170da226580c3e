package export

import "context"

// Transcript is one finished transcript to export
type Transcript struct {
	UserID string
	Index  int
	Video  string
	Text   string
}

// Exporter writes transcripts to documents and returns the written path
type Exporter interface {
	Export(ctx context.Context, t Transcript) (string, error)
}
