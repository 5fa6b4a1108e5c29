// Package repofetch downloads auxiliary open-source repositories for
// reference alongside a generated project. Fetching is best-effort: a
// failed download is reported but never blocks project generation.
package repofetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RefsDir is the subdirectory of a generated project that holds fetched
// reference archives.
const RefsDir = ".refs"

const maxConcurrentFetches = 4

// Fetcher downloads repository archives over HTTP with bounded retry.
type Fetcher struct {
	client     *http.Client
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

// NewFetcher creates a Fetcher. logger may be nil.
func NewFetcher(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:     &http.Client{Timeout: 2 * time.Minute},
		logger:     logger,
		maxRetries: 2,
		retryDelay: 500 * time.Millisecond,
	}
}

// FetchAll downloads every archive URL into dest/.refs/ concurrently,
// returning the first error encountered. Partial downloads from other
// goroutines are left on disk.
func (f *Fetcher) FetchAll(ctx context.Context, dest string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	refsDir := filepath.Join(dest, RefsDir)
	if err := os.MkdirAll(refsDir, 0o755); err != nil {
		return fmt.Errorf("repofetch: failed to create %s: %w", refsDir, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for _, rawURL := range urls {
		g.Go(func() error {
			return f.fetchOne(ctx, refsDir, rawURL)
		})
	}
	return g.Wait()
}

func (f *Fetcher) fetchOne(ctx context.Context, refsDir, rawURL string) error {
	target := filepath.Join(refsDir, archiveName(rawURL))

	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(f.retryDelay << (attempt - 1)):
			}
		}

		if err := f.download(ctx, rawURL, target); err != nil {
			lastErr = err
			f.logger.Warn("reference fetch attempt failed",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}
		f.logger.Info("fetched reference archive",
			zap.String("url", rawURL),
			zap.String("path", target))
		return nil
	}
	return fmt.Errorf("repofetch: %s: %w", rawURL, lastErr)
}

func (f *Fetcher) download(ctx context.Context, rawURL, target string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(target)
		return err
	}
	return out.Close()
}

// archiveName derives a stable local filename from the URL, falling back
// to a random name when the URL has no usable path.
func archiveName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return uuid.NewString() + ".tar.gz"
	}
	base := path.Base(u.Path)
	base = strings.ReplaceAll(base, "..", "")
	if base == "" || base == "." || base == "/" {
		return uuid.NewString() + ".tar.gz"
	}
	if !strings.Contains(base, ".") {
		base += ".tar.gz"
	}
	return base
}
