package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MikeSquared-Agency/triage/internal/agent"
	"github.com/MikeSquared-Agency/triage/internal/api"
	"github.com/MikeSquared-Agency/triage/internal/classifier"
	"github.com/MikeSquared-Agency/triage/internal/config"
	"github.com/MikeSquared-Agency/triage/internal/hermes"
	"github.com/MikeSquared-Agency/triage/internal/llm"
	"github.com/MikeSquared-Agency/triage/internal/processor"
	"github.com/MikeSquared-Agency/triage/internal/slack"
	"github.com/MikeSquared-Agency/triage/internal/store"
)

func main() {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("triage starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
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
	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	// Model client
	client, err := llm.New(cfg)
	if err != nil {
		slog.Error("failed to create LLM client", "provider", cfg.LLMProvider, "error", err)
		os.Exit(1)
	}
	slog.Info("llm client ready", "client", client.Name())

	ag := agent.New(client, slog.Default(), agent.Options{
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.LLMTimeout,
	})

	// NATS/Hermes
	hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer hermesClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	deps := processor.Deps{
		Analyzer: ag,
		Store:    db,
		Bus:      hermesClient,
	}

	// Classifier (optional; without it the suggested category comes from routing)
	if cfg.ClassifierURL != "" {
		deps.Classifier = classifier.New(cfg.ClassifierURL, slog.Default())
		slog.Info("classifier ready", "url", cfg.ClassifierURL)
	}

	// Slack poster (optional; escalations are still published on NATS)
	if cfg.EscalationEnabled() {
		deps.Notifier = slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
		slog.Info("slack poster ready", "channel", cfg.SlackChannel)
	} else {
		slog.Warn("slack not configured, escalations will not be posted")
	}

	proc := processor.New(deps, slog.Default())

	if err := hermesClient.Subscribe(hermes.SubjectComplaintSubmitted, proc.HandleComplaintSubmitted); err != nil {
		slog.Error("failed to subscribe to complaint events", "error", err)
		os.Exit(1)
	}
	if err := hermesClient.Subscribe(hermes.SubjectSlackReaction, proc.HandleReaction); err != nil {
		slog.Error("failed to subscribe to slack reactions", "error", err)
		os.Exit(1)
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, db, proc)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	if err := hermesClient.Publish("swarm.agent.triage.registered", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
		"llm":       client.Name(),
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("triage ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("triage stopped")
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
