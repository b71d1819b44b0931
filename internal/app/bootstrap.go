// Package app assembles the long-lived dependencies shared by the API server
// and the admin CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/config"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/inference"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/sentiment"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/store"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/summarize"
)

// OpenStore connects to DB_URL with the configured pool settings.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*store.Store, error) {
	dbCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.DBConnTimeoutSecs)*time.Second)
	defer cancel()

	return store.New(dbCtx, cfg.DBURL, store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	})
}

// Engines holds the loaded sentiment and summarization components.
type Engines struct {
	Analyzer   *sentiment.Normalizer
	Summarizer *summarize.Pipeline
}

// LoadEngines resolves the configured models once. Missing models never fail
// startup; they degrade to neutral sentiment and extractive summaries.
func LoadEngines(ctx context.Context, cfg config.Config, logger *slog.Logger) (Engines, error) {
	loader, err := inference.NewLoader(cfg, logger)
	if err != nil {
		return Engines{}, fmt.Errorf("init inference loader: %w", err)
	}
	return Engines{
		Analyzer:   sentiment.NewNormalizer(loader.Classifier(ctx), logger),
		Summarizer: summarize.NewPipeline(loader.Summarizer(ctx), summarize.DefaultOptions(), logger),
	}, nil
}
