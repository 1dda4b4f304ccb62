package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"healthmate-backend/internal/config"
	"healthmate-backend/internal/database"
	"healthmate-backend/internal/handlers"
	"healthmate-backend/internal/middleware"
	"healthmate-backend/internal/router"
	"healthmate-backend/internal/services"
	"healthmate-backend/internal/session"
	"healthmate-backend/internal/websocket"
)

const shutdownGrace = 30 * time.Second

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := middleware.SetupLogger(cfg.LogLevel, cfg.IsDevelopment())
	log.Info().Str("env", cfg.Env).Msg("starting HealthMate backend")

	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set; AI features will report the service as unavailable")
	}

	// ──── Step 2: Session Store ────
	var store session.Store
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer client.Close()
		store = session.NewRedisStore(client, cfg.SessionTTL)
		log.Info().Dur("ttl", cfg.SessionTTL).Msg("using redis session store")
	} else {
		store = session.NewMemoryStore(cfg.SessionMax, cfg.SessionTTL)
		log.Info().Int("max", cfg.SessionMax).Dur("ttl", cfg.SessionTTL).Msg("using in-memory session store")
	}

	// ──── Step 3: Gemini Gateway & Services ────
	gateway := services.NewGateway(cfg.Gemini())
	defer gateway.Close()

	healthService := services.NewHealthService(gateway, store)
	tokens := middleware.NewSessionTokens(cfg.SessionSecret, cfg.SessionTTL)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	wsChat := websocket.NewChatHandler(healthService, tokens)

	// ──── Step 4: HTTP Server ────
	r := router.New(logger, tokens, limiter, router.Handlers{
		Session: handlers.NewSessionHandler(healthService, tokens),
		Chat:    handlers.NewChatHandler(healthService),
		Feature: handlers.NewFeatureHandler(healthService, cfg.MaxImageBytes),
		Chart:   handlers.NewChartHandler(healthService),
		Info:    handlers.NewInfoHandler(healthService),
		WS:      wsChat,
	}, cfg.FrontendURL)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		limiter.Cleanup(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		wsChat.CloseAll()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
