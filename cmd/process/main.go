// Command process runs the full extraction pipeline over a feed of
// converted report documents and persists the results. The feed is read
// from S3 when CASEPIPE_FEED_BUCKET is set, otherwise from a local
// directory.
// Usage: go run ./cmd/process [input-dir]
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"casepipe/internal/config"
	"casepipe/internal/consolidate"
	"casepipe/internal/extract"
	"casepipe/internal/port"
	"casepipe/internal/repository/postgres"
	"casepipe/internal/service"
	"casepipe/internal/source"
	"casepipe/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	feed, feedName, err := buildSource(cfg)
	if err != nil {
		return err
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	extractCfg := extract.DefaultConfig()
	extractCfg.MinConfidence = cfg.Pipeline.MinConfidence
	extractCfg.FuzzyThreshold = cfg.Pipeline.FuzzyThreshold
	extractCfg.PageWorkers = cfg.Pipeline.PageWorkers

	consCfg := consolidate.DefaultConfig()
	consCfg.ToleranceMin = cfg.Pipeline.MergeToleranceMin
	consCfg.ChunkSize = cfg.Pipeline.ChunkSize

	pipeline, err := service.NewPipelineService(
		feed,
		postgres.NewTransactionRepo(db),
		postgres.NewCaseRepo(db),
		postgres.NewTrackedCaseRepo(db),
		postgres.NewRuleRepo(db),
		postgres.NewSummaryRepo(db),
		postgres.NewAuditRepo(db),
		extractCfg,
		consCfg,
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("process: starting run over %s", feedName)
	return pipeline.Run(ctx)
}

// buildSource picks the document feed: the S3 bucket when configured, the
// local directory otherwise. A command-line argument overrides the
// configured directory.
func buildSource(cfg *config.Config) (port.PageSource, string, error) {
	if cfg.Feed.Bucket != "" {
		store, err := s3.NewClient(&cfg.Feed)
		if err != nil {
			return nil, "", fmt.Errorf("creating s3 client: %w", err)
		}
		name := fmt.Sprintf("s3://%s/%s", cfg.Feed.Bucket, cfg.Feed.Prefix)
		return source.NewS3Source(store, cfg.Feed.Bucket, cfg.Feed.Prefix), name, nil
	}

	inputDir := cfg.Pipeline.InputDir
	if len(os.Args) > 1 {
		inputDir = os.Args[1]
	}
	return source.NewJSONSource(inputDir), inputDir, nil
}
