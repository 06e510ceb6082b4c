package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hookd/internal/api"
	"hookd/internal/api/handlers"
	"hookd/internal/api/middleware"
	"hookd/internal/engine/walkers"
	"hookd/internal/engine/webhooks"
	"hookd/internal/pkg/logger"
	"hookd/internal/platform/audit"
	"hookd/internal/platform/auth"
	"hookd/internal/platform/config"
	"hookd/internal/platform/database"
	"hookd/internal/platform/repositories"

	zlog "github.com/rs/zerolog/log"
)

func main() {
	configPath := os.Getenv("HOOKD_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Repositories
	webhookRepo := repositories.NewWebhookRepository(db)
	apiKeyRepo := repositories.NewAPIKeyRepository(db)
	logRepo := repositories.NewDeliveryLogRepository(db)
	deadRepo := repositories.NewDeadLetterRepository(db)

	// Core engine
	manager := webhooks.NewManager(webhookRepo, apiKeyRepo)
	dispatcher := webhooks.NewDispatcher(webhookRepo, logRepo, deadRepo, cfg.Webhooks)
	dispatcher.Start()
	defer dispatcher.Stop()

	// Walker registry: completions feed the dispatcher.
	registry := walkers.NewRegistry()
	registerBuiltins(registry)
	runner := walkers.NewRunner(registry, cfg.Walkers.MaxConcurrent, func(c walkers.Completion) {
		if _, err := dispatcher.Enqueue(c.Walker, c.Payload); err != nil {
			zlog.Error().Err(err).Str("walker", c.Walker).Msg("failed to enqueue outbound deliveries")
		}
	})

	// Static subscriptions: config-defined plus walker-declared.
	seeds := append(registry.StaticWebhooks(), cfg.Webhooks.Static...)
	if err := manager.SeedStatic(seeds); err != nil {
		log.Fatalf("Failed to seed static webhooks: %v", err)
	}

	// Services and handlers
	tokenSvc := auth.NewTokenService(cfg.JWT)
	auditLog := audit.NewLogger(db)

	deps := &api.Dependencies{
		WebhookHandler:    handlers.NewWebhookHandler(manager, dispatcher, logRepo, auditLog),
		APIKeyHandler:     handlers.NewAPIKeyHandler(manager, auditLog),
		DeadLetterHandler: handlers.NewDeadLetterHandler(dispatcher, deadRepo, auditLog),
		InboundHandler:    handlers.NewInboundHandler(manager, runner),
		HealthHandler:     handlers.NewHealthHandler(db),
		MetricsHandler:    handlers.NewMetricsHandler(),
		AuthMiddleware:    middleware.NewAuthMiddleware(tokenSvc),
		RateLimiter:       middleware.NewRateLimiter(cfg.RateLimit.InboundPerMinute, cfg.RateLimit.InboundBurst),
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zlog.Info().Str("addr", addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zlog.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("server shutdown failed")
	}
}

// registerBuiltins registers the walkers this deployment serves. Real
// deployments link their own walkers here.
func registerBuiltins(registry *walkers.Registry) {
	registry.Register(walkers.Registration{
		Name: "Ping",
		Handler: func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
			return map[string]string{"status": "ok"}, nil
		},
	})
}
