package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Transcription backends
const (
	BackendWhisper    = "whisper"
	BackendWhisperCPP = "whispercpp"
	BackendOpenAI     = "openai"
	BackendGemini     = "gemini"
)

// Model loading policies
const (
	LoadPerCall = "per_call"
	LoadShared  = "shared"
)

// Extraction failure policies
const (
	BestEffort = "best_effort"
	FailFast   = "fail_fast"
)

type Config struct {
	Whisper  WhisperConfig  `yaml:"whisper"`
	FFmpeg   FFmpegConfig   `yaml:"ffmpeg"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	TLS      TLSConfig      `yaml:"tls"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Paths    PathsConfig    `yaml:"paths"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type WhisperConfig struct {
	Backend      string `yaml:"backend"`
	Model        string `yaml:"model"`
	ModelLoading string `yaml:"model_loading"`
	PythonPath   string `yaml:"python_path"`
	ModelDir     string `yaml:"model_dir"`
	Language     string `yaml:"language"`

	// whisper.cpp only
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Threads    int    `yaml:"threads"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	AudioCodec string `yaml:"audio_codec"`
	Quality    string `yaml:"quality"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type TLSConfig struct {
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

type PipelineConfig struct {
	ExtractionFailure string `yaml:"extraction_failure"`
	OrderedOutput     bool   `yaml:"ordered_output"`
	MaxConcurrent     int    `yaml:"max_concurrent"`
	CleanupOnFailure  bool   `yaml:"cleanup_on_failure"`
}

type PathsConfig struct {
	LockDir string `yaml:"lock_dir"`
	DocxDir string `yaml:"docx_dir"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Validate checks enum values and fills defaults for anything left empty
func (c *Config) Validate() error {
	c.Whisper.Backend = strings.ToLower(strings.TrimSpace(c.Whisper.Backend))
	if c.Whisper.Backend == "" {
		c.Whisper.Backend = BackendWhisper
	}
	switch c.Whisper.Backend {
	case BackendWhisper, BackendWhisperCPP, BackendOpenAI, BackendGemini:
	default:
		return fmt.Errorf("whisper.backend %q is not one of whisper, whispercpp, openai, gemini", c.Whisper.Backend)
	}

	if c.Whisper.ModelLoading == "" {
		c.Whisper.ModelLoading = LoadPerCall
	}
	switch c.Whisper.ModelLoading {
	case LoadPerCall, LoadShared:
	default:
		return fmt.Errorf("whisper.model_loading %q is not one of per_call, shared", c.Whisper.ModelLoading)
	}
	if c.Whisper.Backend == BackendWhisperCPP && c.Whisper.ModelLoading == LoadShared {
		return fmt.Errorf("whisper.model_loading shared is not supported by the whispercpp backend")
	}

	if c.Whisper.Model == "" {
		c.Whisper.Model = "base"
	}
	if c.Whisper.PythonPath == "" {
		c.Whisper.PythonPath = "python3"
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Whisper.ModelPath == "" {
		c.Whisper.ModelPath = "models/ggml-base.bin"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}

	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.AudioCodec == "" {
		c.FFmpeg.AudioCodec = "libmp3lame"
	}
	if c.FFmpeg.Quality == "" {
		c.FFmpeg.Quality = "2"
	}

	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "whisper-1"
	}
	if c.Whisper.Backend == BackendOpenAI && c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required for the openai backend")
	}

	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Whisper.Backend == BackendGemini && c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.api_key is required for the gemini backend")
	}

	if c.Pipeline.ExtractionFailure == "" {
		c.Pipeline.ExtractionFailure = BestEffort
	}
	switch c.Pipeline.ExtractionFailure {
	case BestEffort, FailFast:
	default:
		return fmt.Errorf("pipeline.extraction_failure %q is not one of best_effort, fail_fast", c.Pipeline.ExtractionFailure)
	}
	if c.Pipeline.MaxConcurrent < 0 {
		return fmt.Errorf("pipeline.max_concurrent must not be negative")
	}

	if c.Paths.LockDir == "" {
		c.Paths.LockDir = filepath.Join(os.TempDir(), "vidscribe")
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
