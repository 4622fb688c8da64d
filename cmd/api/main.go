package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atmchallenge/atm-backend/internal/api"
	"github.com/atmchallenge/atm-backend/internal/auth"
	"github.com/atmchallenge/atm-backend/internal/config"
	"github.com/atmchallenge/atm-backend/internal/db"
	"github.com/atmchallenge/atm-backend/internal/logger"
	"github.com/atmchallenge/atm-backend/internal/metrics"
	"github.com/atmchallenge/atm-backend/internal/repository/postgres"
	"github.com/atmchallenge/atm-backend/internal/services"
	"github.com/atmchallenge/atm-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}
	if os.Getenv("APP_SEED") == "true" {
		if err := db.SeedDemoCards(ctx, pool); err != nil {
			log.Error("seed", "err", err)
			os.Exit(1)
		}
	}

	metrics.Init()

	repos := postgres.NewRepositories(pool)
	atomic := postgres.NewTxRunner(pool)
	wp := worker.NewPool(cfg.WorkerCount)
	defer wp.Stop()

	sessions := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionIssuer, cfg.SessionTTL)
	authSvc := services.NewAuthService(repos, atomic, wp, log, cfg.StorageTimeout)
	atmSvc := services.NewATMService(repos, atomic, wp, log, cfg.StorageTimeout)

	r := api.NewRouter(cfg, authSvc, atmSvc, sessions, log)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
