package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sportsreels/pkg/httputil"
)

const (
	defaultTimeout = 60 * time.Second
	// Some image hosts reject requests without a browser user agent.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrArtifactNotReady is returned when a remote artifact never became
// fetchable within the readiness budget.
var ErrArtifactNotReady = errors.New("artifact not ready")

// DownloadError reports a fetch that reached the server but was refused.
type DownloadError struct {
	URL    string
	Status int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: status %d", e.URL, e.Status)
}

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher streams remote artifacts to local scratch storage.
type Fetcher struct {
	client doer
}

func NewFetcher() *Fetcher {
	base := &http.Client{Timeout: defaultTimeout}
	return &Fetcher{
		client: httputil.NewRetryClient(base, httputil.DefaultRetryConfig()),
	}
}

func newFetcherWithClient(client doer) *Fetcher {
	return &Fetcher{client: client}
}

// Download streams url to destPath without buffering the payload in memory.
// URLs with a file:// scheme are copied from the local filesystem, which
// lets local stub artifacts flow through the same path as remote ones.
func (f *Fetcher) Download(ctx context.Context, url, destPath string) error {
	if path, ok := strings.CutPrefix(url, "file://"); ok {
		return copyLocal(path, destPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DownloadError{URL: url, Status: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("stream %s: %w", url, err)
	}

	return nil
}

// WaitReady polls url with HEAD requests until it answers 200, giving up
// after attempts probes spaced delay apart. Succeeds on the first probe if
// the artifact is already there.
func (f *Fetcher) WaitReady(ctx context.Context, url string, attempts int, delay time.Duration) error {
	if path, ok := strings.CutPrefix(url, "file://"); ok {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s", ErrArtifactNotReady, url)
		}
		return nil
	}

	for i := 0; i < attempts; i++ {
		if i > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		ok, err := f.probe(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Debug("Readiness probe failed", "url", url, "attempt", i+1, "error", err)
			continue
		}
		if ok {
			return nil
		}

		slog.Debug("Artifact not ready yet", "url", url, "attempt", i+1)
	}

	return fmt.Errorf("%w after %d attempts: %s", ErrArtifactNotReady, attempts, url)
}

func copyLocal(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("copy %s: %w", srcPath, err)
	}

	return nil
}

func (f *Fetcher) probe(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK, nil
}
