package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote data. An empty etag
// forces a full download.
type Fetcher interface {
	// DownloadIfChanged fetches the URL only if the ETag has changed.
	// Returns (body, newETag, changed, error). If not changed, body is nil and changed is false.
	DownloadIfChanged(ctx context.Context, url string, etag string) (io.ReadCloser, string, bool, error)
}
