package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Settings holds everything that differs between deployments. Tunables that
// never change live in the constants above.
type Settings struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":3000"`
	IsProd     bool   `env:"IS_PROD" envDefault:"false"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"debug"`

	AuthToken    string `env:"AUTH_TOKEN"`
	NoAuthBypass bool   `env:"NO_AUTH_BYPASS" envDefault:"false"`

	OpenAIKey   string `env:"OPENAI_API_KEY"`
	GeminiKey   string `env:"GEMINI_API_KEY"`
	TogetherKey string `env:"TOGETHER_API_KEY"`
	HFKey       string `env:"HF_API_KEY"`
	NewsAPIKey  string `env:"NEWSAPI_KEY"`
	SerperKey   string `env:"SERPER_API_KEY"`

	ChatProvider      string `env:"CHAT_LLM_PROVIDER" envDefault:"openai"`
	NewsProvider      string `env:"NEWS_LLM_PROVIDER" envDefault:"together"`
	EmbeddingProvider string `env:"EMBEDDING_PROVIDER" envDefault:"openai"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	QdrantHost string `env:"QDRANT_HOST" envDefault:"localhost"`
	QdrantPort int    `env:"QDRANT_PORT" envDefault:"6334"`

	CorpusDir     string `env:"CORPUS_DIR"`
	SemanticCache bool   `env:"SEMANTIC_CACHE" envDefault:"true"`
	MemoryWindow  int    `env:"MEMORY_WINDOW" envDefault:"0"`
}

const (
	ProviderOpenAI      = "openai"
	ProviderGemini      = "gemini"
	ProviderGoogle      = "google"
	ProviderTogether    = "together"
	ProviderHuggingFace = "huggingface"
)

// Load reads the optional .env file for the environment and parses the
// process environment into Settings.
func Load(environment string) (*Settings, error) {
	envFile := envFileName(environment)
	// missing env files are fine, containers set variables directly
	if err := godotenv.Load(envFile); err != nil {
		slog.Debug("env file not loaded", "file", envFile, "error", err)
	}

	s := &Settings{}
	if err := env.Parse(s); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return s, nil
}

// Validate checks that every selected provider has its credential.
func (s *Settings) Validate() error {
	var errs []error

	if !s.NoAuthBypass && s.AuthToken == "" {
		errs = append(errs, errors.New("AUTH_TOKEN is required unless NO_AUTH_BYPASS is set"))
	}
	if s.NewsAPIKey == "" {
		errs = append(errs, errors.New("NEWSAPI_KEY is required for /summarize"))
	}
	if s.SerperKey == "" {
		errs = append(errs, errors.New("SERPER_API_KEY is required for /followup"))
	}
	if s.MemoryWindow < 0 {
		errs = append(errs, fmt.Errorf("MEMORY_WINDOW must be >= 0, got %d", s.MemoryWindow))
	}

	for _, p := range []struct{ name, value string }{
		{"CHAT_LLM_PROVIDER", s.ChatProvider},
		{"NEWS_LLM_PROVIDER", s.NewsProvider},
	} {
		if err := s.requireKey(p.name, p.value); err != nil {
			errs = append(errs, err)
		}
	}

	switch strings.ToLower(s.EmbeddingProvider) {
	case ProviderOpenAI:
		if s.OpenAIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for openai embeddings"))
		}
	case ProviderGoogle, ProviderGemini:
		if s.GeminiKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for google embeddings"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown EMBEDDING_PROVIDER %q", s.EmbeddingProvider))
	}

	return errors.Join(errs...)
}

func (s *Settings) requireKey(setting string, provider string) error {
	var key string
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		key = s.OpenAIKey
	case ProviderGemini:
		key = s.GeminiKey
	case ProviderTogether:
		key = s.TogetherKey
	case ProviderHuggingFace:
		key = s.HFKey
	default:
		return fmt.Errorf("unknown %s %q", setting, provider)
	}
	if key == "" {
		return fmt.Errorf("%s=%s has no API key configured", setting, provider)
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto slog. Unknown values fall back to info.
func (s *Settings) SlogLevel() slog.Level {
	if s.IsProd && s.LogLevel == "" {
		return LOG_LEVEL_PROD
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func envFileName(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "", "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
