package transcriber

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nguyentantai21042004/vidscribe/internal/logger"
	"github.com/nguyentantai21042004/vidscribe/pkg/executor"
)

//go:embed assets/whisper_helper.py
var helperScript []byte

type whisperOptions struct {
	Python      string
	Model       string
	ModelDir    string
	Language    string
	InsecureTLS bool
	Shared      bool
	LockDir     string
}

// whisperBackend runs openai-whisper through the embedded helper script.
// per_call: one helper process (and model load) per Transcribe.
// shared: one long-lived helper process serving every Transcribe.
type whisperBackend struct {
	opts     whisperOptions
	executor executor.Executor
	logger   logger.Logger
	workDir  string
	script   string

	mu      sync.Mutex
	session *helperSession

	// weights are cached; later Prepare calls are no-ops
	prefetched atomic.Bool
}

type helperResponse struct {
	ID       int64   `json:"id"`
	Ready    bool    `json:"ready"`
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Error    string  `json:"error"`
}

func (r helperResponse) result() Result {
	return Result{
		Text:     r.Text,
		Language: r.Language,
		Duration: time.Duration(r.Duration * float64(time.Second)),
	}
}

func newWhisper(opts whisperOptions, exec executor.Executor, log logger.Logger) (*whisperBackend, error) {
	workDir, err := os.MkdirTemp("", "vidscribe-whisper-*")
	if err != nil {
		return nil, fmt.Errorf("create helper dir: %w", err)
	}

	script := filepath.Join(workDir, "whisper_helper.py")
	if err := os.WriteFile(script, helperScript, 0o755); err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("write helper script: %w", err)
	}

	return &whisperBackend{
		opts:     opts,
		executor: exec,
		logger:   log,
		workDir:  workDir,
		script:   script,
	}, nil
}

func (w *whisperBackend) baseArgs() []string {
	args := []string{w.script, "--model", w.opts.Model}
	if w.opts.ModelDir != "" {
		args = append(args, "--model-dir", w.opts.ModelDir)
	}
	if w.opts.Language != "" {
		args = append(args, "--language", w.opts.Language)
	}
	if w.opts.InsecureTLS {
		args = append(args, "--insecure-tls")
	}
	return args
}

// Prepare downloads the model weights once, under a file lock, so concurrent
// loads in this run and in other runs do not race on the cache.
// In shared mode it also starts the helper session.
func (w *whisperBackend) Prepare(ctx context.Context) error {
	if !w.opts.Shared && w.prefetched.Load() {
		return nil
	}
	lockName := "whisper-" + sanitizeLockName(w.opts.Model) + ".lock"

	return withFileLock(ctx, w.opts.LockDir, lockName, func() error {
		if w.opts.Shared {
			_, err := w.ensureSession(ctx)
			return err
		}

		w.logger.Debug(ctx, "Prefetching whisper model %q", w.opts.Model)
		args := append(w.baseArgs(), "--prefetch")
		if _, err := w.executor.Execute(ctx, w.opts.Python, args...); err != nil {
			return fmt.Errorf("prefetch whisper model: %w", err)
		}
		w.prefetched.Store(true)
		return nil
	})
}

func (w *whisperBackend) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	if w.opts.Shared {
		session, err := w.ensureSession(ctx)
		if err != nil {
			return Result{}, err
		}
		return session.transcribe(ctx, audioPath)
	}

	w.logger.Debug(ctx, "Loading whisper model %q for %s", w.opts.Model, audioPath)
	args := append(w.baseArgs(), "--audio", audioPath)
	out, err := w.executor.Execute(ctx, w.opts.Python, args...)
	if err != nil {
		return Result{}, fmt.Errorf("whisper transcribe: %w", err)
	}

	resp, err := parseHelperOutput(out)
	if err != nil {
		return Result{}, err
	}
	if resp.Error != "" {
		return Result{}, fmt.Errorf("whisper transcribe: %s", resp.Error)
	}
	return resp.result(), nil
}

func (w *whisperBackend) ensureSession(ctx context.Context) (*helperSession, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session != nil {
		return w.session, nil
	}

	w.logger.Info(ctx, "Loading shared whisper model %q", w.opts.Model)
	args := append(w.baseArgs(), "--serve")
	// The session outlives the Prepare call; it is stopped by Close.
	proc, err := w.executor.Start(context.WithoutCancel(ctx), w.opts.Python, args...)
	if err != nil {
		return nil, fmt.Errorf("start whisper helper: %w", err)
	}

	session := newHelperSession(proc)
	if err := session.awaitReady(ctx); err != nil {
		session.close()
		return nil, err
	}

	w.session = session
	return session, nil
}

// Close stops the shared helper (if any) and removes the helper script
func (w *whisperBackend) Close() error {
	w.mu.Lock()
	session := w.session
	w.session = nil
	w.mu.Unlock()

	var err error
	if session != nil {
		err = session.close()
	}
	if rmErr := os.RemoveAll(w.workDir); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}

// parseHelperOutput decodes the last JSON line of the helper's stdout.
// Earlier lines may be chatter from the model library.
func parseHelperOutput(out string) (helperResponse, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var resp helperResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			return helperResponse{}, fmt.Errorf("parse helper output: %w", err)
		}
		return resp, nil
	}
	return helperResponse{}, fmt.Errorf("parse helper output: no JSON result in %q", out)
}

func sanitizeLockName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
