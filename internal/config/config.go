package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Speech     SpeechConfig
	Generation GenerationConfig
	Resilience ResilienceConfig
	Intake     IntakeConfig
	Pipeline   PipelineConfig
	Logging    LogConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// SpeechConfig points at an OpenAI-compatible transcription endpoint.
type SpeechConfig struct {
	APIKey  string  `envconfig:"OPENAI_API_KEY"`
	URL     string  `envconfig:"SPEECH_URL" default:"https://api.openai.com/v1/audio/transcriptions"`
	Model   string  `envconfig:"SPEECH_MODEL" default:"whisper-1"`
	UseMock bool    `envconfig:"USE_MOCK_TRANSCRIBE" default:"false"`
	RPS     float64 `envconfig:"SPEECH_RPS" default:"0"`
}

// GenerationConfig points at an OpenAI-compatible chat completions gateway.
type GenerationConfig struct {
	APIKey  string  `envconfig:"NVIDIA_API_KEY"`
	URL     string  `envconfig:"LLM_GATEWAY_URL" default:"https://integrate.api.nvidia.com/v1/chat/completions"`
	Model   string  `envconfig:"LLM_MODEL" default:"meta/llama-4-maverick-17b-128e-instruct"`
	UseMock bool    `envconfig:"USE_MOCK_LLM" default:"false"`
	RPS     float64 `envconfig:"LLM_RPS" default:"0"`
}

type ResilienceConfig struct {
	CallTimeout      time.Duration `envconfig:"CALL_TIMEOUT" default:"30s"`
	MaxRetries       uint64        `envconfig:"MAX_RETRIES" default:"3"`
	InitialDelay     time.Duration `envconfig:"RETRY_INITIAL_DELAY" default:"1s"`
	BackoffFactor    float64       `envconfig:"RETRY_BACKOFF_FACTOR" default:"2"`
	FailureThreshold uint32        `envconfig:"BREAKER_FAILURE_THRESHOLD" default:"3"`
	RecoveryTimeout  time.Duration `envconfig:"BREAKER_RECOVERY_TIMEOUT" default:"60s"`
}

type IntakeConfig struct {
	MaxUploadMB     int64         `envconfig:"MAX_UPLOAD_MB" default:"25"`
	MaxDownloadMB   int64         `envconfig:"MAX_DOWNLOAD_MB" default:"100"`
	DownloadTimeout time.Duration `envconfig:"DOWNLOAD_TIMEOUT" default:"60s"`
	TempDir         string        `envconfig:"TEMP_DIR"`
}

type PipelineConfig struct {
	ExtendedMetrics bool `envconfig:"EXTENDED_METRICS" default:"true"`
}

type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that every real provider has credentials.
func (c *Config) Validate() error {
	if !c.Speech.UseMock && c.Speech.APIKey == "" {
		return errors.New("OPENAI_API_KEY is missing or empty in environment")
	}
	if !c.Generation.UseMock && c.Generation.APIKey == "" {
		return errors.New("NVIDIA_API_KEY is missing or empty in environment")
	}
	if c.Resilience.BackoffFactor < 1 {
		return fmt.Errorf("RETRY_BACKOFF_FACTOR must be >= 1, got %v", c.Resilience.BackoffFactor)
	}
	if c.Resilience.FailureThreshold == 0 {
		return errors.New("BREAKER_FAILURE_THRESHOLD must be positive")
	}
	return nil
}

func (c IntakeConfig) MaxUploadBytes() int64   { return c.MaxUploadMB << 20 }
func (c IntakeConfig) MaxDownloadBytes() int64 { return c.MaxDownloadMB << 20 }
