package port

import (
	"context"
	"io"
)

// ObjectStore abstracts the bucket operations the feed source and audit
// export need. Implementations must be safe for concurrent use.
type ObjectStore interface {
	// ListKeys returns every object key under the prefix, in lexical order.
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)
	// Download fetches one object's full contents.
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	// Upload writes one object.
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) error
}
