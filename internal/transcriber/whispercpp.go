package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
	"github.com/nguyentantai21042004/vidscribe/pkg/executor"
)

// whisperCPPBackend runs the whisper.cpp CLI. Every call is its own
// process, so the model is always loaded per call.
type whisperCPPBackend struct {
	cfg      config.WhisperConfig
	executor executor.Executor
	logger   logger.Logger
}

func newWhisperCPP(cfg config.WhisperConfig, exec executor.Executor, log logger.Logger) *whisperCPPBackend {
	return &whisperCPPBackend{cfg: cfg, executor: exec, logger: log}
}

// Transcribe uses whisper.cpp to write a plain-text transcript next to the audio file,
// reads it back and removes it.
func (w *whisperCPPBackend) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	// whisper.cpp appends .txt to the prefix
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + "_transcript"

	language := w.cfg.Language
	if language == "" {
		language = "auto"
	}

	w.logger.Debug(ctx, "Starting whisper.cpp with %d threads: %s", w.cfg.Threads, audioPath)

	// -m: model path
	// -f: input audio
	// -otxt: plain text output
	// -np: no progress/system prints
	args := []string{
		"-m", w.cfg.ModelPath,
		"-f", audioPath,
		"-otxt",
		"-np",
		"-l", language,
		"-t", strconv.Itoa(w.cfg.Threads),
		"--output-file", outputPrefix,
	}

	if _, err := w.executor.Execute(ctx, w.cfg.BinaryPath, args...); err != nil {
		return Result{}, fmt.Errorf("whisper.cpp transcribe: %w", err)
	}

	txtPath := outputPrefix + ".txt"
	defer os.Remove(txtPath)

	data, err := os.ReadFile(txtPath)
	if err != nil {
		return Result{}, fmt.Errorf("read whisper.cpp output: %w", err)
	}

	return Result{Text: joinLines(string(data)), Language: w.cfg.Language}, nil
}

func (w *whisperCPPBackend) Close() error { return nil }

// joinLines flattens the per-segment lines whisper.cpp writes into one line
func joinLines(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
