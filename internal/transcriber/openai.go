package transcriber

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
)

// openAIBackend calls the hosted audio transcription endpoint.
// The client stands in for the model: per_call builds one per request.
type openAIBackend struct {
	cfg        config.OpenAIConfig
	language   string
	shared     bool
	httpClient *http.Client
	logger     logger.Logger

	once   sync.Once
	client *openai.Client
}

func newOpenAI(cfg config.OpenAIConfig, language string, shared bool, hc *http.Client, log logger.Logger) *openAIBackend {
	return &openAIBackend{
		cfg:        cfg,
		language:   language,
		shared:     shared,
		httpClient: hc,
		logger:     log,
	}
}

func (o *openAIBackend) newClient() *openai.Client {
	clientCfg := openai.DefaultConfig(o.cfg.APIKey)
	if o.cfg.BaseURL != "" {
		clientCfg.BaseURL = o.cfg.BaseURL
	}
	clientCfg.HTTPClient = o.httpClient
	return openai.NewClientWithConfig(clientCfg)
}

func (o *openAIBackend) getClient() *openai.Client {
	if !o.shared {
		return o.newClient()
	}
	o.once.Do(func() { o.client = o.newClient() })
	return o.client
}

func (o *openAIBackend) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	o.logger.Debug(ctx, "Sending %s to OpenAI model %s", audioPath, o.cfg.Model)

	resp, err := o.getClient().CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.cfg.Model,
		FilePath: audioPath,
		Language: o.language,
	})
	if err != nil {
		return Result{}, fmt.Errorf("openai transcribe %s: %w", audioPath, err)
	}

	return Result{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: time.Duration(resp.Duration * float64(time.Second)),
	}, nil
}

func (o *openAIBackend) Close() error { return nil }
