package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"gemini-relay/internal/events"
	"gemini-relay/internal/logger"
	"gemini-relay/internal/models"
	"gemini-relay/internal/services"
)

const (
	maxBodyBytes   = 1 << 20
	publishTimeout = 2 * time.Second
)

// composeFunc turns a decoded request body into the prompt sent upstream.
type composeFunc func(req models.RelayRequest) (string, error)

// RelayHandler serves the stateless prompt relay endpoints. It holds no
// per-request state and is safe for concurrent use.
type RelayHandler struct {
	generator services.Generator
	publisher events.Publisher
}

func NewRelayHandler(generator services.Generator, publisher events.Publisher) *RelayHandler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RelayHandler{generator: generator, publisher: publisher}
}

// SpellCheck handles POST /spell-check.
func (h *RelayHandler) SpellCheck(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, "/spell-check", func(req models.RelayRequest) (string, error) {
		var text string
		if req.Prompt != nil {
			text = *req.Prompt
		}
		return services.SpellCheckPrompt(text), nil
	})
}

// Request handles POST /request.
func (h *RelayHandler) Request(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, "/request", services.RequestPrompt)
}

func (h *RelayHandler) relay(w http.ResponseWriter, r *http.Request, endpoint string, compose composeFunc) {
	ctx := r.Context()
	start := time.Now()
	var prompt string

	defer func() {
		if rec := recover(); rec != nil {
			h.fail(w, r, endpoint, prompt, start, fmt.Errorf("panic: %v", rec))
		}
	}()

	req, err := decodeRelayRequest(w, r)
	if err != nil {
		h.fail(w, r, endpoint, prompt, start, err)
		return
	}

	prompt, err = compose(req)
	if err != nil {
		h.fail(w, r, endpoint, prompt, start, fmt.Errorf("composing prompt: %w", err))
		return
	}
	slog.InfoContext(ctx, "received prompt", "endpoint", endpoint, "prompt", prompt)

	generatedText, err := h.generator.Generate(ctx, prompt)
	if err != nil {
		h.fail(w, r, endpoint, prompt, start, err)
		return
	}
	slog.InfoContext(ctx, "generated text", "endpoint", endpoint, "generated_text", generatedText)

	h.publish(ctx, models.RelayEvent{
		Endpoint:      endpoint,
		Prompt:        prompt,
		GeneratedText: generatedText,
		DurationMS:    time.Since(start).Milliseconds(),
	})

	writeJSON(w, http.StatusOK, models.RelayResponse{GeneratedText: generatedText})
}

// decodeRelayRequest treats an empty body as an empty request.
func decodeRelayRequest(w http.ResponseWriter, r *http.Request) (models.RelayRequest, error) {
	var req models.RelayRequest
	if r.Body == nil {
		return req, nil
	}

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if errors.Is(err, io.EOF) {
		return req, nil
	}
	if err != nil {
		return req, fmt.Errorf("decoding request body: %w", err)
	}
	return req, nil
}

func (h *RelayHandler) fail(w http.ResponseWriter, r *http.Request, endpoint, prompt string, start time.Time, err error) {
	ctx := r.Context()
	slog.ErrorContext(ctx, "relay failed", "endpoint", endpoint, logger.Err(err))

	h.publish(ctx, models.RelayEvent{
		Endpoint:   endpoint,
		Prompt:     prompt,
		Error:      err.Error(),
		DurationMS: time.Since(start).Milliseconds(),
	})

	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// publish never fails the relay; it outlives a cancelled request context.
func (h *RelayHandler) publish(ctx context.Context, event models.RelayEvent) {
	event.RequestID, _ = logger.RequestIDFromContext(ctx)
	event.At = time.Now().UTC()

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := h.publisher.Publish(pubCtx, event); err != nil {
		slog.WarnContext(ctx, "relay event not published", logger.Err(err))
	}
}
