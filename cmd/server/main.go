// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

// Package main is the Floodwatch server entry point.
//
// Startup order: configuration, logging, storage, domain services, the
// WebSocket hub, the HTTP router, and finally the supervisor tree that
// keeps the hub and the server running until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/floodwatch-io/floodwatch/internal/alerting"
	"github.com/floodwatch-io/floodwatch/internal/api"
	"github.com/floodwatch-io/floodwatch/internal/auth"
	"github.com/floodwatch-io/floodwatch/internal/config"
	"github.com/floodwatch-io/floodwatch/internal/database"
	"github.com/floodwatch-io/floodwatch/internal/logging"
	"github.com/floodwatch-io/floodwatch/internal/supervisor"
	"github.com/floodwatch-io/floodwatch/internal/ws"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("starting floodwatch")

	// Storage.
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("database close failed")
		}
	}()

	var writer api.ReadingWriter = db
	if cfg.Database.BreakerEnabled {
		writer = database.NewBreakerWriter(db, &cfg.Database)
	}

	// Auth.
	tokens, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("init token manager: %w", err)
	}
	verifier := auth.NewTokenVerifier(tokens, db)
	hasher := auth.NewPasswordHasher(cfg.Security.BcryptCost)

	// Domain services.
	evaluator := alerting.NewEvaluator(cfg.Alerts.WarningLevel, cfg.Alerts.CriticalLevel)

	// Real-time layer.
	registry := ws.NewRegistry()
	hub := ws.NewHub(registry, &cfg.WebSocket)
	endpoints := ws.NewEndpoints(hub, registry, verifier, db, &cfg.WebSocket, cfg.Security.CORSOrigins)

	// HTTP surface.
	handler := api.NewHandler(api.HandlerDeps{
		Users:     db,
		Writer:    writer,
		Readings:  db,
		Alerts:    db,
		Messages:  db,
		Hasher:    hasher,
		Tokens:    tokens,
		Evaluator: evaluator,
		Hub:       hub,
		Pinger:    db.Conn(),
		Config:    &cfg.API,
	})
	authmw := auth.NewMiddleware(verifier, api.RejectAuth)
	router := api.NewRouter(handler, authmw, api.NewChiMiddleware(&cfg.Security), endpoints)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Supervision.
	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	tree.AddRealtimeService(supervisor.NewHubService(hub))
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("floodwatch ready")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	logging.Info().Msg("floodwatch stopped")
	return nil
}
