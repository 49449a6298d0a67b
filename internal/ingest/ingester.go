package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leadex-cloud/leadex/internal/domain"
	"github.com/leadex-cloud/leadex/internal/repository/company"
)

// embedder is the consumer interface for batch vectorization.
type embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// upserter is the consumer interface for index writes.
type upserter interface {
	Upsert(ctx context.Context, docs []company.Document) error
}

// Stats summarizes one ingestion run.
type Stats struct {
	Records  int
	Batches  int
	Failed   int
	Tokens   int
	Duration time.Duration
}

// Ingester embeds company records in batches and writes them to the index.
type Ingester struct {
	embedder  embedder
	repo      upserter
	workers   int
	batchSize int
	logger    *zap.Logger
}

// New creates an ingester. workers and batchSize fall back to sane
// minimums when zero.
func New(e embedder, repo upserter, workers, batchSize int, logger *zap.Logger) *Ingester {
	if workers < 1 {
		workers = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &Ingester{
		embedder:  e,
		repo:      repo,
		workers:   workers,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run ingests all records. Batches are processed by a worker pool; one
// failed batch is logged and counted but does not stop the others.
func (in *Ingester) Run(ctx context.Context, records []CompanyRecord) (Stats, error) {
	start := time.Now()
	batches := splitBatches(records, in.batchSize)

	in.logger.Info("ingestion started",
		zap.Int("records", len(records)),
		zap.Int("batches", len(batches)),
		zap.Int("workers", in.workers),
	)

	jobs := make(chan []CompanyRecord)
	var wg sync.WaitGroup

	var mu sync.Mutex
	stats := Stats{Records: len(records), Batches: len(batches)}

	for w := 0; w < in.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				tokens, err := in.processBatch(ctx, batch)
				mu.Lock()
				if err != nil {
					stats.Failed += len(batch)
					in.logger.Error("batch failed",
						zap.Int("size", len(batch)),
						zap.Error(err),
					)
				} else {
					stats.Tokens += tokens
				}
				mu.Unlock()
			}
		}()
	}

	for _, batch := range batches {
		select {
		case jobs <- batch:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return stats, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	stats.Duration = time.Since(start)
	in.logger.Info("ingestion finished",
		zap.Int("records", stats.Records),
		zap.Int("failed", stats.Failed),
		zap.Int("tokens", stats.Tokens),
		zap.Duration("duration", stats.Duration),
	)

	if stats.Failed > 0 {
		return stats, fmt.Errorf("ingestion incomplete: %d of %d records failed", stats.Failed, stats.Records)
	}
	return stats, nil
}

// processBatch embeds one batch in a single provider call and upserts
// the resulting documents in one pipelined write.
func (in *Ingester) processBatch(ctx context.Context, batch []CompanyRecord) (int, error) {
	texts := make([]string, len(batch))
	for i, rec := range batch {
		texts[i] = rec.EmbedText()
	}

	res, err := in.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed batch: %w", err)
	}
	if len(res.Embeddings) != len(batch) {
		return 0, fmt.Errorf("embed batch: got %d vectors for %d records", len(res.Embeddings), len(batch))
	}

	docs := make([]company.Document, len(batch))
	for i, rec := range batch {
		docs[i] = company.Document{
			ID:      rec.DocID(),
			Vector:  res.Embeddings[i],
			Content: texts[i],
			Fields:  rec.HashFields(),
		}
	}

	if err := in.repo.Upsert(ctx, docs); err != nil {
		return 0, err
	}
	return res.TotalTokens, nil
}

func splitBatches(records []CompanyRecord, size int) [][]CompanyRecord {
	var batches [][]CompanyRecord
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}
	return batches
}
