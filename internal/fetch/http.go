package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const httpUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// HTTPFetcher fetches pages with a plain HTTP client. Fast, but blind to
// content the site renders with JavaScript.
type HTTPFetcher struct {
	client  *http.Client
	retries uint64
}

// NewHTTPFetcher creates a static fetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		retries: 2,
	}
}

func (f *HTTPFetcher) Name() string { return "http" }

// Fetch retrieves a URL, retrying transient network errors with exponential
// backoff. HTTP error statuses are not retried: the server answered, and an
// unchanged request will get an unchanged answer.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var body string

	operation := func() error {
		html, err := f.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		body = html
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), f.retries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", &FetchError{Backend: f.Name(), URL: url, Err: err}
	}
	return body, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", httpUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
