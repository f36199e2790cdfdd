package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiOptions struct {
	APIKey         string
	Model          string
	Temperature    *float32
	TopP           *float32
	ConcurrentReqs int
}

type GeminiService struct {
	client   *genai.Client
	model    contentGenerator
	name     string
	slotChan chan struct{} // upstream concurrency slots
}

// contentGenerator is the slice of *genai.GenerativeModel the relay uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

func NewGeminiService(ctx context.Context, opts GeminiOptions) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	if opts.Temperature != nil {
		model.SetTemperature(*opts.Temperature)
	}
	if opts.TopP != nil {
		model.SetTopP(*opts.TopP)
	}

	s := newGeminiService(model, opts.Model, opts.ConcurrentReqs)
	s.client = client
	return s, nil
}

func newGeminiService(model contentGenerator, name string, concurrentReqs int) *GeminiService {
	if concurrentReqs < 1 {
		concurrentReqs = 1
	}
	slotChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		slotChan <- struct{}{}
	}

	return &GeminiService{
		model:    model,
		name:     name,
		slotChan: slotChan,
	}
}

func (s *GeminiService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// acquireSlot blocks until an upstream slot is free or ctx is done.
func (s *GeminiService) acquireSlot(ctx context.Context) error {
	select {
	case <-s.slotChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *GeminiService) releaseSlot() {
	s.slotChan <- struct{}{}
}

// Generate sends prompt as a single text part and returns the concatenated
// text of every candidate.
func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	if err := checkPrompt(prompt); err != nil {
		return "", err
	}

	if err := s.acquireSlot(ctx); err != nil {
		return "", err
	}
	defer s.releaseSlot()

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	if resp == nil {
		return "", nil
	}
	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonUnspecified {
			slog.WarnContext(ctx, "gemini candidate stopped early",
				"model", s.name, "candidate", i, "finish_reason", cand.FinishReason.String())
		}
	}

	return extractText(resp), nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
