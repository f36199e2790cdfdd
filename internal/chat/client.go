package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gemini-relay/internal/models"
)

// HTTPRelay talks JSON to the relay service. It sets no timeout of its own.
type HTTPRelay struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRelay(baseURL string, client *http.Client) *HTTPRelay {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPRelay{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type conversationPayload struct {
	Conversation []models.Message `json:"conversation"`
}

type promptPayload struct {
	Prompt string `json:"prompt"`
}

// Request posts the whole conversation to /request.
func (c *HTTPRelay) Request(ctx context.Context, conversation []models.Message) (string, error) {
	if conversation == nil {
		conversation = []models.Message{}
	}
	return c.post(ctx, "/request", conversationPayload{Conversation: conversation})
}

// SpellCheck posts text to /spell-check.
func (c *HTTPRelay) SpellCheck(ctx context.Context, text string) (string, error) {
	return c.post(ctx, "/spell-check", promptPayload{Prompt: text})
}

func (c *HTTPRelay) post(ctx context.Context, path string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("Server error: %s", http.StatusText(resp.StatusCode))
	}

	var out models.RelayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return out.GeneratedText, nil
}
