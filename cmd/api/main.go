// Copyright (c) 2026 Clipflow. All rights reserved.

// Command api is the entry point for the Clipflow HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Prepare local media storage roots.
//  7. Wire domain services and HTTP handlers.
//  8. Start the upload session sweeper.
//  9. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/clipflow/clipflow/internal/api"
	"github.com/clipflow/clipflow/internal/asset"
	"github.com/clipflow/clipflow/internal/member"
	"github.com/clipflow/clipflow/internal/platform/config"
	"github.com/clipflow/clipflow/internal/platform/constants"
	"github.com/clipflow/clipflow/internal/platform/migration"
	pgstore "github.com/clipflow/clipflow/internal/platform/postgres"
	redisstore "github.com/clipflow/clipflow/internal/platform/redis"
	"github.com/clipflow/clipflow/internal/platform/sec"
	"github.com/clipflow/clipflow/internal/platform/storage"
	"github.com/clipflow/clipflow/internal/project"
	"github.com/clipflow/clipflow/internal/upload"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Clipflow] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Media Storage ──────────────────────────────────────────────────
	fileStore, err := storage.NewLocalStore(cfg.TempRoot, cfg.MediaRoot)
	must(log, err, "prepare media storage")

	// ── 7. Security Services ──────────────────────────────────────────────
	passwordHasher := sec.NewPasswordHasher(sec.DefaultHashIterations)
	tokenService, err := sec.NewTokenService(cfg.TokenSecret)
	must(log, err, "initialize token service")

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckStorage: func() error {
			_, statErr := os.Stat(cfg.TempRoot)
			return statErr
		},
	}, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	memberRepository := member.NewPostgresRepository(pool)
	identityCache := member.NewRedisIdentityCache(rdb)
	memberService := member.NewService(memberRepository, identityCache, passwordHasher, tokenService)
	memberHandler := member.NewHandler(memberService)

	projectRepository := project.NewPostgresRepository(pool)
	historyRepository := project.NewPostgresHistoryRepository(pool)
	projectService := project.NewService(projectRepository, historyRepository)
	projectHandler := project.NewHandler(projectService)

	assetRepository := asset.NewPostgresRepository(pool)
	assetService := asset.NewService(assetRepository, projectService, fileStore)
	assetHandler := asset.NewHandler(assetService)

	sessionRepository := upload.NewPostgresSessionRepository(pool)
	uploadCoordinator := upload.NewCoordinator(sessionRepository, assetRepository, projectService, fileStore)
	uploadHandler := upload.NewHandler(uploadCoordinator)

	// ── 10. Background Sweeper ────────────────────────────────────────────
	// Reclaims abandoned chunked-upload sessions and their staged bytes.
	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	sweeper := upload.NewSweeper(sessionRepository, fileStore, log, constants.UploadSweepInterval, constants.UploadSessionRetention)
	go sweeper.Run(runCtx)

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Member:    memberHandler,
		Project:   projectHandler,
		Asset:     assetHandler,
		Upload:    uploadHandler,
	}

	server := api.NewServer(runCtx, cfg, log, tokenService, memberService, handlers)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Stop the sweeper before draining connections.
	runCancel()

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
