// Command leadex-ingest embeds an enriched company JSON dump and loads it
// into the Redis vector index.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/leadex-cloud/leadex/internal/config"
	dbRedis "github.com/leadex-cloud/leadex/internal/db/redis"
	"github.com/leadex-cloud/leadex/internal/ingest"
	logpkg "github.com/leadex-cloud/leadex/internal/logger"
	"github.com/leadex-cloud/leadex/internal/metrics"
	companyrepo "github.com/leadex-cloud/leadex/internal/repository/company"
	openaiTransport "github.com/leadex-cloud/leadex/internal/transport/openai"
)

func main() {
	var (
		file      = flag.String("file", "", "path to the enriched company JSON dump (required)")
		workers   = flag.Int("workers", 0, "concurrent embedding workers (default from config)")
		batchSize = flag.Int("batch-size", 0, "records per embedding batch (default from config)")
	)
	flag.Parse()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if *file == "" {
		logger.Error("missing required -file flag")
		flag.Usage()
		os.Exit(2)
	}
	if *workers > 0 {
		cfg.Ingest.Workers = *workers
	}
	if *batchSize > 0 {
		cfg.Ingest.BatchSize = *batchSize
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	metrics.RegisterPipelineMetrics()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	companies := companyrepo.New(store, cfg.Index.KeyPrefix)
	if err := companies.EnsureIndex(ctx, companyrepo.IndexParams{
		Dimensions:  cfg.Embedding.Dimensions,
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	}); err != nil {
		logger.Fatal("Failed to ensure index", zap.Error(err))
	}

	records, err := ingest.LoadRecords(*file)
	if err != nil {
		logger.Fatal("Failed to load records", zap.Error(err))
	}

	ingester := ingest.New(embedder, companies, cfg.Ingest.Workers, cfg.Ingest.BatchSize, logger)
	stats, err := ingester.Run(ctx, records)
	if err != nil {
		logger.Fatal("Ingestion failed",
			zap.Int("records", stats.Records),
			zap.Int("failed", stats.Failed),
			zap.Error(err),
		)
	}
}
