package source

import (
	"context"
	"fmt"
	"path"
	"strings"

	"casepipe/internal/port"
)

type s3Source struct {
	store  port.ObjectStore
	bucket string
	prefix string
}

// NewS3Source creates a PageSource reading converted documents from a
// bucket prefix. Object base names play the role file names play for the
// directory source, so moving a feed between the two keeps document IDs
// stable.
func NewS3Source(store port.ObjectStore, bucket, prefix string) port.PageSource {
	return &s3Source{store: store, bucket: bucket, prefix: prefix}
}

// List downloads every .json object under the prefix in key order.
func (s *s3Source) List(ctx context.Context) ([]port.SourceDocument, error) {
	keys, err := s.store.ListKeys(ctx, s.bucket, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("s3Source.List: %w", err)
	}

	var docs []port.SourceDocument
	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := s.store.Download(ctx, s.bucket, key)
		if err != nil {
			return nil, fmt.Errorf("s3Source.List %s: %w", key, err)
		}
		doc, err := decodeDocument(path.Base(key), data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}
