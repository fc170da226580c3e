package transcriber

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
)

const transcribePrompt = "Transcribe the speech in this audio verbatim. " +
	"Return only the transcript text on a single line, without timestamps, speaker labels or commentary."

// geminiBackend sends the audio inline to a Gemini model
type geminiBackend struct {
	cfg        config.GeminiConfig
	shared     bool
	httpClient *http.Client
	logger     logger.Logger

	mu     sync.Mutex
	client *genai.Client
}

func newGemini(cfg config.GeminiConfig, shared bool, hc *http.Client, log logger.Logger) *geminiBackend {
	return &geminiBackend{
		cfg:        cfg,
		shared:     shared,
		httpClient: hc,
		logger:     log,
	}
}

func (g *geminiBackend) newClient(ctx context.Context) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     g.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	}
	if g.cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

func (g *geminiBackend) getClient(ctx context.Context) (*genai.Client, error) {
	if !g.shared {
		return g.newClient(ctx)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		client, err := g.newClient(ctx)
		if err != nil {
			return nil, err
		}
		g.client = client
	}
	return g.client, nil
}

// Prepare creates the shared client up front so a bad key fails before phase work starts
func (g *geminiBackend) Prepare(ctx context.Context) error {
	if !g.shared {
		return nil
	}
	_, err := g.getClient(ctx)
	return err
}

func (g *geminiBackend) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("read audio: %w", err)
	}

	client, err := g.getClient(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("gemini transcribe %s: %w", audioPath, err)
	}

	g.logger.Debug(ctx, "Sending %s (%d bytes) to Gemini model %s", audioPath, len(data), g.cfg.Model)

	parts := []*genai.Part{
		genai.NewPartFromText(transcribePrompt),
		genai.NewPartFromBytes(data, audioMIMEType(audioPath)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := client.Models.GenerateContent(ctx, g.cfg.Model, contents, nil)
	if err != nil {
		return Result{}, fmt.Errorf("gemini transcribe %s: %w", audioPath, err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		return Result{Text: strings.TrimSpace(text)}, nil
	}

	return Result{}, fmt.Errorf("gemini transcribe %s: empty response", audioPath)
}

func (g *geminiBackend) Close() error { return nil }

func audioMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	case ".m4a", ".aac":
		return "audio/aac"
	default:
		return "audio/mpeg"
	}
}
