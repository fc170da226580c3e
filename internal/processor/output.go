package processor

import (
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
)

// transcriptWriter prints one line per transcript. Lines are written whole
// under a mutex; in ordered mode they are held until flush.
type transcriptWriter struct {
	mu      sync.Mutex
	out     io.Writer
	ordered bool
	pending map[int]string
}

func newTranscriptWriter(out io.Writer, ordered bool) *transcriptWriter {
	return &transcriptWriter{
		out:     out,
		ordered: ordered,
		pending: make(map[int]string),
	}
}

func (w *transcriptWriter) emit(index int, text string) error {
	line := oneLine(text) + "\n"

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ordered {
		w.pending[index] = line
		return nil
	}
	_, err := io.WriteString(w.out, line)
	return err
}

// flush writes held lines in input order
func (w *transcriptWriter) flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, i := range slices.Sorted(maps.Keys(w.pending)) {
		if _, err := io.WriteString(w.out, w.pending[i]); err != nil {
			return err
		}
		delete(w.pending, i)
	}
	return nil
}

func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
