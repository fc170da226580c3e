package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/export"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
	"github.com/nguyentantai21042004/vidscribe/internal/transcriber"
	"github.com/nguyentantai21042004/vidscribe/pkg/executor"
)

// fakeFFmpeg writes a small file at the output path unless the input name contains "bad".
// Inputs containing "slow" block until the context ends.
type fakeFFmpeg struct {
	mu    sync.Mutex
	calls [][]string
	done  atomic.Int32
}

func (f *fakeFFmpeg) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	defer f.done.Add(1)

	input, output := args[1], args[7]
	switch {
	case strings.Contains(input, "slow"):
		<-ctx.Done()
		return "", ctx.Err()
	case strings.Contains(input, "bad"):
		return "", fmt.Errorf("command 'ffmpeg' failed: exit status 1\nstderr: %s: Invalid data found", input)
	}
	return "", os.WriteFile(output, []byte("mp3"), 0o644)
}

func (f *fakeFFmpeg) Start(ctx context.Context, name string, args ...string) (executor.Process, error) {
	return nil, errors.New("not supported")
}

type fakeTranscriber struct {
	transcribe func(ctx context.Context, audioPath string) (transcriber.Result, error)

	mu       sync.Mutex
	calls    []string
	prepared int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (transcriber.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, audioPath)
	f.mu.Unlock()
	if f.transcribe != nil {
		return f.transcribe(ctx, audioPath)
	}
	return transcriber.Result{Text: "text of " + filepath.Base(audioPath)}, nil
}

func (f *fakeTranscriber) Prepare(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prepared++
	return nil
}

func (f *fakeTranscriber) Close() error { return nil }

type fakeExporter struct {
	mu  sync.Mutex
	got []export.Transcript
}

func (f *fakeExporter) Export(ctx context.Context, t export.Transcript) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, t)
	return "/exports/" + export.FileName(t), nil
}

func testConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Paths.LockDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return cfg
}

func writeVideos(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
		if err := os.WriteFile(paths[i], []byte("video"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func newTestProcessor(cfg *config.Config, exec executor.Executor, tr transcriber.Transcriber, exp export.Exporter, out io.Writer) Processor {
	return New(cfg, exec, tr, exp, out, logger.NewWithWriter("error", io.Discard))
}

func TestRunOrderedOutput(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Pipeline.OrderedOutput = true })
	videos := writeVideos(t, "a.mp4", "b.mov", "c.mkv")
	ffmpeg := &fakeFFmpeg{}
	tr := &fakeTranscriber{
		transcribe: func(ctx context.Context, audioPath string) (transcriber.Result, error) {
			// finish in reverse order
			if strings.Contains(audioPath, "a_0") {
				time.Sleep(30 * time.Millisecond)
			}
			return transcriber.Result{Text: "text of\n" + filepath.Base(audioPath)}, nil
		},
	}
	var out bytes.Buffer

	report, err := newTestProcessor(cfg, ffmpeg, tr, nil, &out).Run(context.Background(), "user-1", videos)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "text of a_0.mp3\ntext of b_1.mp3\ntext of c_2.mp3\n"
	if out.String() != want {
		t.Errorf("stdout = %q, want %q", out.String(), want)
	}
	if report.TranscribedCount() != 3 || report.UserID != "user-1" || report.RunID == "" {
		t.Errorf("report = %+v", report)
	}
	if tr.prepared != 1 {
		t.Errorf("Prepare called %d times, want 1", tr.prepared)
	}

	for i, v := range videos {
		if exists(v) || exists(DeriveAudioPath(v, i)) {
			t.Errorf("files for %s should be cleaned up", v)
		}
	}
	if report.Removed != 6 {
		t.Errorf("Removed = %d, want 6", report.Removed)
	}
}

func TestRunFFmpegArguments(t *testing.T) {
	cfg := testConfig(t, nil)
	videos := writeVideos(t, "talk.mp4")
	ffmpeg := &fakeFFmpeg{}

	if _, err := newTestProcessor(cfg, ffmpeg, &fakeTranscriber{}, nil, io.Discard).Run(context.Background(), "u", videos); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"ffmpeg", "-i", videos[0], "-vn", "-acodec", "libmp3lame", "-q:a", "2", DeriveAudioPath(videos[0], 0), "-y"}
	if !slices.Equal(ffmpeg.calls[0], want) {
		t.Errorf("ffmpeg call = %v, want %v", ffmpeg.calls[0], want)
	}
}

func TestRunStreamingOutputWritesWholeLines(t *testing.T) {
	cfg := testConfig(t, nil)
	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("v%02d.mp4", i)
	}
	videos := writeVideos(t, names...)
	var out bytes.Buffer

	if _, err := newTestProcessor(cfg, &fakeFFmpeg{}, &fakeTranscriber{}, nil, &out).Run(context.Background(), "u", videos); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != len(videos) {
		t.Fatalf("got %d lines, want %d", len(lines), len(videos))
	}
	slices.Sort(lines)
	for i, line := range lines {
		if want := fmt.Sprintf("text of v%02d_%d.mp3", i, i); line != want {
			t.Errorf("line %d = %q, want %q", i, line, want)
		}
	}
}

func TestRunPhasesDoNotOverlap(t *testing.T) {
	cfg := testConfig(t, nil)
	videos := writeVideos(t, "a.mp4", "b.mp4", "c.mp4", "d.mp4")
	ffmpeg := &fakeFFmpeg{}
	var early atomic.Int32
	tr := &fakeTranscriber{
		transcribe: func(ctx context.Context, audioPath string) (transcriber.Result, error) {
			if int(ffmpeg.done.Load()) != len(videos) {
				early.Add(1)
			}
			if !exists(audioPath) {
				return transcriber.Result{}, fmt.Errorf("%s missing", audioPath)
			}
			return transcriber.Result{Text: "ok"}, nil
		},
	}

	if _, err := newTestProcessor(cfg, ffmpeg, tr, nil, io.Discard).Run(context.Background(), "u", videos); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if early.Load() != 0 {
		t.Errorf("%d transcription(s) started before extraction finished", early.Load())
	}
}

func TestRunUnboundedConcurrency(t *testing.T) {
	cfg := testConfig(t, nil)
	videos := writeVideos(t, "a.mp4", "b.mp4", "c.mp4", "d.mp4", "e.mp4")

	var wg sync.WaitGroup
	wg.Add(len(videos))
	allIn := make(chan struct{})
	go func() {
		wg.Wait()
		close(allIn)
	}()

	tr := &fakeTranscriber{
		transcribe: func(ctx context.Context, audioPath string) (transcriber.Result, error) {
			wg.Done()
			select {
			case <-allIn:
				return transcriber.Result{Text: "ok"}, nil
			case <-time.After(5 * time.Second):
				return transcriber.Result{}, errors.New("transcriptions did not run concurrently")
			}
		},
	}

	if _, err := newTestProcessor(cfg, &fakeFFmpeg{}, tr, nil, io.Discard).Run(context.Background(), "u", videos); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestRunMaxConcurrent(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Pipeline.MaxConcurrent = 2 })
	videos := writeVideos(t, "a.mp4", "b.mp4", "c.mp4", "d.mp4", "e.mp4", "f.mp4")

	var inFlight, peak atomic.Int32
	tr := &fakeTranscriber{
		transcribe: func(ctx context.Context, audioPath string) (transcriber.Result, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			return transcriber.Result{Text: "ok"}, nil
		},
	}

	report, err := newTestProcessor(cfg, &fakeFFmpeg{}, tr, nil, io.Discard).Run(context.Background(), "u", videos)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
	}
	if report.TranscribedCount() != len(videos) {
		t.Errorf("transcribed %d, want %d", report.TranscribedCount(), len(videos))
	}
}

func TestRunBestEffortSkipsFailedExtraction(t *testing.T) {
	cfg := testConfig(t, nil)
	videos := writeVideos(t, "good.mp4", "bad.mp4", "fine.mp4")
	tr := &fakeTranscriber{}
	var out bytes.Buffer

	report, err := newTestProcessor(cfg, &fakeFFmpeg{}, tr, nil, &out).Run(context.Background(), "u", videos)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil in best_effort mode", err)
	}

	if slices.Contains(tr.calls, DeriveAudioPath(videos[1], 1)) {
		t.Error("failed extraction must not be transcribed")
	}
	if len(tr.calls) != 2 {
		t.Errorf("transcribed %d inputs, want 2", len(tr.calls))
	}
	if got := strings.Count(out.String(), "\n"); got != 2 {
		t.Errorf("stdout has %d lines, want 2", got)
	}

	bad := report.Items[1]
	if bad.Extracted() || !bad.Skipped || bad.Transcribed() {
		t.Errorf("bad item = %+v", bad)
	}
	if report.ExtractionFailures() != 1 {
		t.Errorf("ExtractionFailures() = %d, want 1", report.ExtractionFailures())
	}
	for _, v := range videos {
		if exists(v) {
			t.Errorf("%s should be cleaned up", v)
		}
	}
}

func TestRunFailFastExtraction(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Pipeline.ExtractionFailure = config.FailFast })
	videos := writeVideos(t, "slow.mp4", "bad.mp4")
	tr := &fakeTranscriber{}

	done := make(chan struct{})
	var (
		report *Report
		err    error
	)
	go func() {
		defer close(done)
		report, err = newTestProcessor(cfg, &fakeFFmpeg{}, tr, nil, io.Discard).Run(context.Background(), "u", videos)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("fail_fast did not cancel the sibling extraction")
	}

	var perr *PhaseError
	if !errors.As(err, &perr) || perr.Phase != PhaseExtracting {
		t.Fatalf("Run() error = %v, want extracting PhaseError", err)
	}
	if len(tr.calls) != 0 || tr.prepared != 0 {
		t.Error("transcription must not start after a fail_fast extraction failure")
	}
	if !errors.Is(report.Items[0].ExtractErr, context.Canceled) {
		t.Errorf("sibling error = %v, want context.Canceled", report.Items[0].ExtractErr)
	}
	for _, v := range videos {
		if !exists(v) {
			t.Errorf("%s should be left in place", v)
		}
	}
}

func TestRunTranscriptionFailureCancelsSiblings(t *testing.T) {
	tests := []struct {
		name      string
		cleanup   bool
		wantFiles bool
	}{
		{"files kept by default", false, true},
		{"cleanup on failure", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, func(c *config.Config) { c.Pipeline.CleanupOnFailure = tt.cleanup })
			videos := writeVideos(t, "a.mp4", "b.mp4", "c.mp4")
			boom := errors.New("model exploded")
			tr := &fakeTranscriber{
				transcribe: func(ctx context.Context, audioPath string) (transcriber.Result, error) {
					if strings.Contains(audioPath, "b_1") {
						return transcriber.Result{}, boom
					}
					select {
					case <-ctx.Done():
						return transcriber.Result{}, ctx.Err()
					case <-time.After(5 * time.Second):
						return transcriber.Result{Text: "too late"}, nil
					}
				},
			}
			var out bytes.Buffer

			report, err := newTestProcessor(cfg, &fakeFFmpeg{}, tr, nil, &out).Run(context.Background(), "u", videos)

			var perr *PhaseError
			if !errors.As(err, &perr) || perr.Phase != PhaseTranscribing {
				t.Fatalf("Run() error = %v, want transcribing PhaseError", err)
			}
			if !errors.Is(err, boom) {
				t.Errorf("Run() error = %v, want it to wrap the first failure", err)
			}
			for _, i := range []int{0, 2} {
				if !errors.Is(report.Items[i].TranscribeErr, context.Canceled) {
					t.Errorf("item %d error = %v, want context.Canceled", i, report.Items[i].TranscribeErr)
				}
			}
			if out.Len() != 0 {
				t.Errorf("stdout = %q, want nothing", out.String())
			}
			for i, v := range videos {
				if exists(v) != tt.wantFiles || exists(DeriveAudioPath(v, i)) != tt.wantFiles {
					t.Errorf("files for %s present = %v, want %v", v, exists(v), tt.wantFiles)
				}
			}
		})
	}
}

func TestRunExportsTranscripts(t *testing.T) {
	cfg := testConfig(t, nil)
	videos := writeVideos(t, "a.mp4", "bad.mp4")
	exp := &fakeExporter{}

	report, err := newTestProcessor(cfg, &fakeFFmpeg{}, &fakeTranscriber{}, exp, io.Discard).Run(context.Background(), "u9", videos)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(exp.got) != 1 || exp.got[0].UserID != "u9" || exp.got[0].Text != "text of a_0.mp3" {
		t.Errorf("exported = %+v", exp.got)
	}
	if report.Items[0].DocxPath != "/exports/u9_0_a.docx" {
		t.Errorf("DocxPath = %q", report.Items[0].DocxPath)
	}
}

func TestRunRejectsEmptyList(t *testing.T) {
	cfg := testConfig(t, nil)
	if _, err := newTestProcessor(cfg, &fakeFFmpeg{}, &fakeTranscriber{}, nil, io.Discard).Run(context.Background(), "u", nil); err == nil {
		t.Fatal("Run() should reject an empty video list")
	}
}
