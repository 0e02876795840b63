// Package fetch downloads remote resources referenced by item content.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/readfold/readfold/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.AssetFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	// DefaultMaxSize caps a single download. Item content occasionally
	// links multi-hundred-megabyte videos; those stay remote.
	DefaultMaxSize = 50 << 20
)

// Fetcher downloads remote resources over HTTP.
type Fetcher struct {
	client  *http.Client
	maxSize int64
}

// NewFetcher creates a fetcher with default limits.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: DefaultTimeout},
		maxSize: DefaultMaxSize,
	}
}

// Fetch downloads one resource.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("fetch %s: exceeds size limit", url)
	}
	return data, nil
}
