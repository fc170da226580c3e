package transcriber

import (
	"fmt"

	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
	"github.com/nguyentantai21042004/vidscribe/pkg/executor"
)

// New creates the Transcriber selected by whisper.backend.
// The TLS switch is passed to the backend explicitly; nothing process-wide is changed.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) (Transcriber, error) {
	shared := cfg.Whisper.ModelLoading == config.LoadShared

	switch cfg.Whisper.Backend {
	case config.BackendWhisper, "":
		return newWhisper(whisperOptions{
			Python:      cfg.Whisper.PythonPath,
			Model:       cfg.Whisper.Model,
			ModelDir:    cfg.Whisper.ModelDir,
			Language:    cfg.Whisper.Language,
			InsecureTLS: cfg.TLS.InsecureSkipVerify,
			Shared:      shared,
			LockDir:     cfg.Paths.LockDir,
		}, exec, log)
	case config.BackendWhisperCPP:
		return newWhisperCPP(cfg.Whisper, exec, log), nil
	case config.BackendOpenAI:
		return newOpenAI(cfg.OpenAI, cfg.Whisper.Language, shared, newHTTPClient(cfg.TLS.InsecureSkipVerify), log), nil
	case config.BackendGemini:
		return newGemini(cfg.Gemini, shared, newHTTPClient(cfg.TLS.InsecureSkipVerify), log), nil
	default:
		return nil, fmt.Errorf("unknown transcription backend: %s (supported: whisper, whispercpp, openai, gemini)", cfg.Whisper.Backend)
	}
}
