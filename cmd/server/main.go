package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"

	"gemini-relay/internal/config"
	"gemini-relay/internal/events"
	"gemini-relay/internal/handlers"
	"gemini-relay/internal/logger"
	"gemini-relay/internal/router"
	"gemini-relay/internal/services"
	"gemini-relay/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func run() (err error) {
	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, &logger.Options{
		Level:      logger.ParseLevel(cfg.LogLevel),
		TimeFormat: time.DateTime,
		ShortFile:  true,
		MsgPrefix:  "| ",
		NoColor:    cfg.LogNoColor,
	})))
	slog.Info("✓ Environment variables loaded", "env", cfg.Env, "provider", cfg.Provider)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: Initialize Generation Backend ────
	generator, err := services.NewGenerator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}
	defer func() {
		if closeErr := generator.Close(); closeErr != nil {
			err = multierror.Append(err, fmt.Errorf("closing generator: %w", closeErr))
		}
	}()
	slog.Info("✓ Generation client initialized", "provider", cfg.Provider)

	// ──── Step 3: Initialize Relay Event Fan-out (optional) ────
	var publisher events.Publisher = events.NopPublisher{}
	var wsHub *websocket.Hub
	if cfg.RedisURL != "" {
		redisClients, redisErr := events.NewRedisClients(cfg.RedisURL)
		if redisErr != nil {
			return fmt.Errorf("connecting to redis: %w", redisErr)
		}
		defer func() {
			if closeErr := redisClients.Close(); closeErr != nil {
				err = multierror.Append(err, closeErr)
			}
		}()

		publisher = events.NewRedisPublisher(redisClients.Publish)
		wsHub = websocket.NewHub(redisClients.PubSub)
		go wsHub.Run(ctx)
		defer wsHub.Close()
		slog.Info("✓ Redis connected, relay events enabled", "channel", events.Channel)
	}

	// ──── Step 4: Start HTTP Server ────
	relayHandler := handlers.NewRelayHandler(generator, publisher)
	r := router.New(relayHandler, wsHub, cfg.FrontendURL)

	// No write timeout: generation latency belongs to the upstream.
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("✓ Relay ready", "addr", cfg.Addr())
		serverErr <- server.ListenAndServe()
	}()

	select {
	case serveErr := <-serverErr:
		if !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", serveErr)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		return fmt.Errorf("shutting down server: %w", shutdownErr)
	}
	return nil
}
