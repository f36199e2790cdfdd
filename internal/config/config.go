package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	// Server
	Port string `env:"PORT" envDefault:"3000"`
	Env  string `env:"ENV" envDefault:"development"`

	// Generation backend
	Provider string `env:"GENERATOR_PROVIDER" envDefault:"gemini"`

	// Gemini AI
	GeminiAPIKey         string   `env:"API_KEY"`
	GeminiModel          string   `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	GeminiTemperature    *float32 `env:"GEMINI_TEMPERATURE"`
	GeminiTopP           *float32 `env:"GEMINI_TOP_P"`
	GeminiConcurrentReqs int      `env:"GEMINI_CONCURRENT_REQUESTS" envDefault:"5"`

	// OpenAI
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// Redis (optional relay event fan-out)
	RedisURL string `env:"REDIS_URL"`

	// Frontend
	FrontendURL string `env:"FRONTEND_URL" envDefault:"*"`

	// Logging
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogNoColor bool   `env:"LOG_NO_COLOR" envDefault:"false"`
}

// ClientConfig configures the terminal chat client.
type ClientConfig struct {
	RelayURL   string `env:"RELAY_URL" envDefault:"http://localhost:3000"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"warn"`
	LogNoColor bool   `env:"LOG_NO_COLOR" envDefault:"false"`
}

// Load reads .env (if present) and the process environment once, at startup.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadClient() (*ClientConfig, error) {
	godotenv.Load()

	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}
	cfg.RelayURL = strings.TrimRight(cfg.RelayURL, "/")
	return cfg, nil
}

func (c *Config) validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))

	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("required environment variable API_KEY is not set")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("required environment variable OPENAI_API_KEY is not set")
		}
	default:
		return fmt.Errorf("unsupported GENERATOR_PROVIDER %q", c.Provider)
	}

	if c.GeminiConcurrentReqs < 1 {
		c.GeminiConcurrentReqs = 1
	}
	return nil
}

// Addr binds all interfaces.
func (c *Config) Addr() string {
	return ":" + c.Port
}
