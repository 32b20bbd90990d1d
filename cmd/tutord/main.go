package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studyhall-ai/tutord/internal/api"
	"github.com/studyhall-ai/tutord/internal/assistants"
	"github.com/studyhall-ai/tutord/internal/chat"
	"github.com/studyhall-ai/tutord/internal/completion"
	"github.com/studyhall-ai/tutord/internal/config"
	"github.com/studyhall-ai/tutord/internal/curriculum"
	"github.com/studyhall-ai/tutord/internal/deck"
	"github.com/studyhall-ai/tutord/internal/events"
	"github.com/studyhall-ai/tutord/internal/persona"
	"github.com/studyhall-ai/tutord/internal/router"
	"github.com/studyhall-ai/tutord/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("tutord starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	provider := assistants.NewClient(cfg.OpenAIAPIKey, cfg.AssistantModel)
	completions := completion.NewClient(cfg.OpenAIAPIKey, cfg.ChatModel)
	registry := persona.NewFileRegistry(cfg.RegistryPath)

	// NATS is optional — tutord works without it, just no event emission.
	var eventBus *events.Client
	if cfg.NatsURL != "" {
		eventBus, err = events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer eventBus.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — running without event emission")
	}

	personaRouter := router.New(completions, registry, slog.Default())
	chatSvc := chat.NewService(provider, completions, registry, personaRouter, db, eventBus,
		time.Duration(cfg.RunPollTimeout)*time.Second, slog.Default())
	personaSvc := persona.NewService(provider, registry, slog.Default())
	pipeline := curriculum.New(completions, curriculum.DefaultStages, cfg.CurriculumStages, slog.Default())
	formatter := deck.NewFormatter(completions, slog.Default())
	renderer := deck.NewRenderer(deck.PlaceholderSource{})

	srv := api.NewServer(cfg.Port, chatSvc, personaSvc, pipeline, formatter, renderer, cfg.WorkRoot, slog.Default())
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("tutord ready", "port", cfg.Port, "stages", cfg.CurriculumStages)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	cancel()
	slog.Info("tutord stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
