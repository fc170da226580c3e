package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/nguyentantai21042004/vidscribe/internal/logger"
	"github.com/nguyentantai21042004/vidscribe/internal/processor"
)

const errorWidth = 60

func renderSummary(w io.Writer, report *processor.Report) {
	fmt.Fprintln(w, summaryTable(report, shouldColorize(w)))
}

func summaryTable(report *processor.Report, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Title.Format = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault
	tw.SetTitle(fmt.Sprintf("run %s  user %s  %s", report.RunID, report.UserID, report.Elapsed().Round(time.Millisecond)))

	tw.AppendHeader(table.Row{"#", "Video", "Extraction", "Transcription", "Chars", "Duration"})
	for _, it := range report.Items {
		tw.AppendRow(table.Row{
			it.Index,
			filepath.Base(it.Video),
			status(it.ExtractErr, false, colorize),
			status(it.TranscribeErr, it.Skipped, colorize),
			chars(it),
			(it.ExtractDuration + it.TranscribeDuration).Round(time.Millisecond).String(),
		})
	}
	tw.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d/%d ok", report.TranscribedCount(), len(report.Items)), "", ""})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, WidthMax: errorWidth},
		{Number: 4, WidthMax: errorWidth},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	return tw.Render()
}

func status(err error, skipped, colorize bool) string {
	var s string
	var color text.Colors
	switch {
	case err != nil:
		s, color = "failed: "+firstLine(logger.FormatError(err)), text.Colors{text.FgRed}
	case skipped:
		s, color = "skipped", text.Colors{text.FgYellow}
	default:
		s, color = "ok", text.Colors{text.FgGreen}
	}
	if colorize {
		return color.Sprint(s)
	}
	return s
}

// firstLine drops the captured stderr that executor errors carry
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func chars(it processor.Item) string {
	if !it.Transcribed() {
		return "-"
	}
	return strconv.Itoa(len([]rune(it.Transcript)))
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
