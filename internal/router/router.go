package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"gemini-relay/internal/handlers"
	"gemini-relay/internal/middleware"
	"gemini-relay/internal/websocket"
)

// New wires the relay routes. wsHub may be nil, in which case /ws is not mounted.
func New(
	relayHandler *handlers.RelayHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", handlers.Health)

	// ──── Relay Routes ────
	r.Post("/spell-check", relayHandler.SpellCheck)
	r.Post("/request", relayHandler.Request)

	// ──── Relay event monitor ────
	if wsHub != nil {
		r.Get("/ws", wsHub.HandleWebSocket)
	}

	return r
}
