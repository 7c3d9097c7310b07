// Command exportaudit writes the diagnostics trail of one document as CSV,
// either to a local file or to the configured feed bucket.
// Usage: go run ./cmd/exportaudit [-s3] DOCUMENT_ID [out.csv]
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"casepipe/internal/audit"
	"casepipe/internal/config"
	"casepipe/internal/repository/postgres"
	"casepipe/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	toS3 := flag.Bool("s3", false, "upload the CSV to the configured feed bucket")
	flag.Parse()
	if flag.NArg() < 1 {
		return fmt.Errorf("usage: exportaudit [-s3] DOCUMENT_ID [out.csv]")
	}

	docID, err := uuid.Parse(flag.Arg(0))
	if err != nil {
		return fmt.Errorf("parsing document id: %w", err)
	}
	outName := docID.String() + "-audit.csv"
	if flag.NArg() > 1 {
		outName = flag.Arg(1)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	events, err := postgres.NewAuditRepo(db).ListByDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("loading audit events: %w", err)
	}
	if len(events) == 0 {
		log.Printf("exportaudit: no audit events for document %s", docID)
	}

	var buf bytes.Buffer
	buf.Write(audit.BOM)
	w := audit.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	if err := w.WriteEvents(events); err != nil {
		return fmt.Errorf("writing csv rows: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	if *toS3 {
		if cfg.Feed.Bucket == "" {
			return fmt.Errorf("-s3 requires CASEPIPE_FEED_BUCKET")
		}
		store, err := s3.NewClient(&cfg.Feed)
		if err != nil {
			return fmt.Errorf("creating s3 client: %w", err)
		}
		key := "audit/" + outName
		if err := store.Upload(ctx, cfg.Feed.Bucket, key, "text/csv", &buf); err != nil {
			return fmt.Errorf("uploading csv: %w", err)
		}
		log.Printf("exportaudit: wrote %d events to s3://%s/%s", len(events), cfg.Feed.Bucket, key)
		return nil
	}

	if err := os.WriteFile(outName, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outName, err)
	}
	log.Printf("exportaudit: wrote %d events to %s", len(events), outName)
	return nil
}
