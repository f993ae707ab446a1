package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"servicematch/internal/app"
	"servicematch/internal/config"
	"servicematch/internal/database"
	"servicematch/internal/logger"
	"servicematch/internal/middleware"
	jwtsvc "servicematch/internal/pkg/jwt"
)

const (
	shutdownTimeout        = 15 * time.Second
	limiterCleanupInterval = 10 * time.Minute
)

func main() {
	// .env is optional; real deployments use the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", "error", err)
	}
	logger.Init(cfg.AppEnv)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connect failed", "error", err)
	}
	if err := app.Migrate(db); err != nil {
		logger.Fatal("auto migrate failed", "error", err)
	}

	svcs, err := app.NewServices(cfg, db)
	if err != nil {
		logger.Fatal("service init failed", "error", err)
	}
	dispatcher := app.NewDispatcher(cfg, svcs)
	limiter := middleware.NewRateLimiter(cfg.RevealRatePerMinute, cfg.RevealRateBurst)

	router := app.NewRouter(cfg, svcs, app.RouterDeps{
		JWT:       jwtsvc.New(cfg.JWTSecret, 24*time.Hour, jwtsvc.WithIssuer(cfg.JWTIssuer), jwtsvc.WithLeeway(30*time.Second)),
		Publisher: dispatcher,
		Limiter:   limiter,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := limiter.Cleanup(); n > 0 {
					logger.Debug("rate limiter buckets evicted", "count", n)
				}
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return dispatcher.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server stopped with error", "error", err)
	}
	logger.Info("server stopped")
}
