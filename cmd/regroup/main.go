// Command regroup reloads every stored transaction record, re-runs case
// consolidation and scoring, and upserts the resulting cases. Safe to run
// at any time; consolidation is deterministic over the stored record set.
// Usage: go run ./cmd/regroup
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
	"casepipe/internal/repository/postgres"
	"casepipe/internal/service"
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

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	consCfg := consolidate.DefaultConfig()
	consCfg.ToleranceMin = cfg.Pipeline.MergeToleranceMin
	consCfg.ChunkSize = cfg.Pipeline.ChunkSize

	pipeline, err := service.NewPipelineService(
		nil, // no page source; regrouping reads stored records only
		postgres.NewTransactionRepo(db),
		postgres.NewCaseRepo(db),
		postgres.NewTrackedCaseRepo(db),
		postgres.NewRuleRepo(db),
		postgres.NewSummaryRepo(db),
		postgres.NewAuditRepo(db),
		extract.DefaultConfig(),
		consCfg,
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return pipeline.Regroup(ctx)
}
