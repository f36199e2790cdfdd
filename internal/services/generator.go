package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gemini-relay/internal/config"
)

var ErrEmptyPrompt = errors.New("prompt is empty")

// Generator is the hosted-model collaborator: one prompt in, generated text out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorCloser is a Generator holding client resources.
type GeneratorCloser interface {
	Generator
	Close() error
}

// NewGenerator builds the backend selected by cfg.Provider.
func NewGenerator(ctx context.Context, cfg *config.Config) (GeneratorCloser, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiService(ctx, GeminiOptions{
			APIKey:         cfg.GeminiAPIKey,
			Model:          cfg.GeminiModel,
			Temperature:    cfg.GeminiTemperature,
			TopP:           cfg.GeminiTopP,
			ConcurrentReqs: cfg.GeminiConcurrentReqs,
		})
	case config.ProviderOpenAI:
		return NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unsupported generator provider %q", cfg.Provider)
	}
}

func checkPrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}
