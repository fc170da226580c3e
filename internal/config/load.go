package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no config path is given and the file exists.
const DefaultFile = "vidscribe.yaml"

// Environment variables that override the file
const (
	EnvConfig      = "VIDSCRIBE_CONFIG"
	EnvInsecureTLS = "VIDSCRIBE_INSECURE_TLS"
	EnvLogLevel    = "VIDSCRIBE_LOG_LEVEL"
	EnvOpenAIKey   = "OPENAI_API_KEY"
	EnvGeminiKey   = "GEMINI_API_KEY"
)

// Resolve builds the effective configuration: an optional YAML file,
// then .env and environment overrides, then validation.
// An explicit path that does not exist is an error; the default file is optional.
func Resolve(path string) (*Config, error) {
	// .env is optional; a missing file is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfig))
	}

	var cfg Config
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
	} else if err := decodeFile(DefaultFile, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvInsecureTLS)); v != "" {
		insecure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s must be a boolean, got %q", EnvInsecureTLS, v)
		}
		c.TLS.InsecureSkipVerify = insecure
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv(EnvOpenAIKey)
	}
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = os.Getenv(EnvGeminiKey)
	}
	return nil
}
