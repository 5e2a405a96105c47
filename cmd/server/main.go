// Package main is the entrypoint for the rfpmarket API server.
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

	"github.com/kiranshivaraju/rfpmarket/internal/ai"
	"github.com/kiranshivaraju/rfpmarket/internal/api"
	"github.com/kiranshivaraju/rfpmarket/internal/api/handler"
	mw "github.com/kiranshivaraju/rfpmarket/internal/api/middleware"
	"github.com/kiranshivaraju/rfpmarket/internal/api/response"
	"github.com/kiranshivaraju/rfpmarket/internal/cache"
	"github.com/kiranshivaraju/rfpmarket/internal/config"
	"github.com/kiranshivaraju/rfpmarket/internal/evaluator"
	"github.com/kiranshivaraju/rfpmarket/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, cfg.Server.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create AI provider
	aiProvider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	if aiProvider != nil {
		slog.Info("AI provider initialized", "provider", aiProvider.Name())
	} else {
		slog.Info("no AI provider configured, audits use built-in texts")
	}

	// 6. Create store and services
	pgStore := store.NewPostgresStore(pool)

	audits := ai.NewAuditService(aiProvider, pgStore, redisCache, cfg.AI.InferenceTimeout)
	eval := newEvaluator(cfg.Evaluator, audits)
	uploads := ai.NewUploadService(eval, pgStore)
	proposals := ai.NewProposalService(aiProvider, cfg.AI.InferenceTimeout)

	// 7. Build router with dependencies
	roles := mw.NewCachedRoles(pgStore, redisCache, cfg.Redis.RoleTTL)

	deps := api.Dependencies{
		Auth:         mw.NewAuth(cfg.Auth.JWTSecret, roles),
		RateLimit:    mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMinute),
		MaxBodyBytes: cfg.Server.MaxBodyBytes,

		HealthHandler:           healthHandler(pgStore, redisCache),
		ProcessAdoptionHandler:  handler.NewProcessAdoptionHandler(uploads),
		EvaluateAdoptionHandler: handler.NewEvaluateAdoptionHandler(audits),
		ListAuditsHandler:       handler.NewListAuditsHandler(audits),
		GetAuditHandler:         handler.NewGetAuditHandler(audits),
		AnalyzeProposalHandler:  handler.NewAnalyzeProposalHandler(proposals),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AI.InferenceTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newEvaluator picks where uploads are scored. The in-process service is
// used unless a remote evaluate-adoption endpoint is configured.
func newEvaluator(cfg config.EvaluatorConfig, local ai.Evaluator) ai.Evaluator {
	if cfg.URL == "" {
		return local
	}
	slog.Info("uploads evaluated remotely", "url", cfg.URL)
	return evaluator.NewHTTPClient(cfg.URL, cfg.Timeout)
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
