package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 13
	titleSize = 16
)

var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Export writes <dir>/<user-id>_<index>_<video-base>.docx
func (e *implExporter) Export(ctx context.Context, t Transcript) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(e.dir, FileName(t))
	if err := transcriptToDocx(title(t), t.Text, path); err != nil {
		return "", fmt.Errorf("write docx %s: %w", path, err)
	}

	e.logger.Info(ctx, "Transcript exported: %s", path)
	return path, nil
}

// FileName is the document name for t, safe for any filesystem
func FileName(t Transcript) string {
	base := filepath.Base(t.Video)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return safe(t.UserID) + "_" + strconv.Itoa(t.Index) + "_" + safe(base) + ".docx"
}

func safe(s string) string {
	s = strings.Trim(reUnsafe.ReplaceAllString(s, "_"), "_")
	if s == "" {
		return "untitled"
	}
	return s
}

func title(t Transcript) string {
	return fmt.Sprintf("Transcript: %s", filepath.Base(t.Video))
}

// transcriptToDocx writes a title paragraph followed by the transcript text
func transcriptToDocx(title, text, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addRun(doc.AddParagraph(""), title, true, titleSize)
	doc.AddParagraph("")

	for _, para := range paragraphs(text) {
		addRun(doc.AddParagraph(""), para, false, fontSize)
	}

	return doc.SaveTo(outputPath)
}

// paragraphs splits on blank lines; a single-line transcript stays one paragraph
func paragraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		if block = strings.Join(strings.Fields(block), " "); block != "" {
			out = append(out, block)
		}
	}
	return out
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
