// Package download provides the Downloader adapter used to acquire
// installable packages over the network.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

const userAgent = "wslup-installer"

// HTTPDownloader fetches artifacts over HTTP with bounded exponential retry.
type HTTPDownloader struct {
	client     *http.Client
	maxRetries uint64
	log        ports.Logger
}

// NewHTTPDownloader creates a downloader that retries each artifact at most
// maxRetries times after the initial attempt.
func NewHTTPDownloader(maxRetries int, log ports.Logger) *HTTPDownloader {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &HTTPDownloader{
		client:     &http.Client{Timeout: 10 * time.Minute},
		maxRetries: uint64(maxRetries),
		log:        log,
	}
}

// Download fetches url to dest. Transient failures are retried with
// exponential backoff; client errors (4xx) abort immediately. A partial file
// never survives a failed download.
func (d *HTTPDownloader) Download(ctx context.Context, url, dest string) error {
	attempt := 0
	op := func() error {
		attempt++
		err := d.downloadOnce(ctx, url, dest)
		if err != nil {
			d.log.Warn(ctx, "download attempt failed",
				ports.F("url", url),
				ports.F("attempt", attempt),
				ports.F("error", err.Error()))
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), d.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		if rmErr := os.Remove(dest); rmErr != nil && !os.IsNotExist(rmErr) {
			d.log.Warn(ctx, "failed to remove partial download", ports.F("error", rmErr.Error()))
		}
		return fmt.Errorf("download of %s failed: %w", url, err)
	}
	return nil
}

func (d *HTTPDownloader) downloadOnce(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(err)
		}
		return err
	}

	out, err := os.Create(dest)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create %q: %w", dest, err))
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write %q: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", dest, err)
	}
	return nil
}

// Ensure HTTPDownloader implements ports.Downloader.
var _ ports.Downloader = (*HTTPDownloader)(nil)
