package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Clark-Hu/hotel-review-sentiment/db"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/app"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/config"
	httpserver "github.com/Clark-Hu/hotel-review-sentiment/internal/http"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/logging"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/metrics"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.Init(cfg.LogLevel, os.Stdout).With(slog.String("service", "hotel-reviews-api"))

	st, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()
	if err := metrics.RegisterPool(st.Stats); err != nil {
		logger.Warn("register pool metrics", slog.String("error", err.Error()))
	}

	if cfg.MigrateOnStartup {
		if err := st.Migrate(ctx, db.Migrations); err != nil {
			logger.Error("apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	repo := repository.New(st)
	if cfg.SeedOnStartup {
		if _, err := repo.Seed(ctx, logger); err != nil {
			logger.Warn("seed sample data", slog.String("error", err.Error()))
		}
	}

	engines, err := app.LoadEngines(ctx, cfg, logger)
	if err != nil {
		logger.Error("load models", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := httpserver.New(cfg, st, repo, engines.Analyzer, engines.Summarizer, logger)
	logger.Info("listening",
		slog.String("port", cfg.Port),
		slog.String("sentiment_model", engines.Analyzer.ModelName()),
		slog.String("summary_model", engines.Summarizer.ModelName()))

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("graceful shutdown error", slog.String("error", err.Error()))
	}
}
