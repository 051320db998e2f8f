package fetch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// minRequestInterval keeps the headless browser from hammering the site.
	minRequestInterval = 2 * time.Second
)

// BrowserFetcher renders pages in headless Chrome before reading them, so
// tables populated by scripts are visible. Roughly an order of magnitude
// slower than the HTTP fetcher.
type BrowserFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// NewBrowserFetcher starts a shared Chrome exec allocator. Close must be
// called to release it.
func NewBrowserFetcher(timeout time.Duration) *BrowserFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(browserUserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &BrowserFetcher{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  timeout,
	}
}

func (f *BrowserFetcher) Name() string { return "browser" }

// Close releases the browser allocator.
func (f *BrowserFetcher) Close() {
	if f.cancel != nil {
		f.cancel()
	}
}

// Fetch renders a URL and returns the document HTML once the data table is
// visible. Requests are rate limited across goroutines.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.throttle()

	html, err := f.render(ctx, url)
	if err != nil {
		return "", &FetchError{Backend: f.Name(), URL: url, Err: err}
	}
	return html, nil
}

func (f *BrowserFetcher) throttle() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.lastRequest.IsZero() {
		if elapsed := time.Since(f.lastRequest); elapsed < minRequestInterval {
			wait := minRequestInterval - elapsed
			log.Printf("browser fetch: rate limiting, waiting %v", wait)
			time.Sleep(wait)
		}
	}
	f.lastRequest = time.Now()
}

func (f *BrowserFetcher) render(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browserCtx, cancelTab := chromedp.NewContext(f.allocCtx)
	defer cancelTab()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, f.timeout)
	defer cancelTimeout()

	// Tie the tab to the caller's context so cancellation propagates.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-done:
		}
	}()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`table`, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp: %w", err)
	}
	if html == "" {
		return "", fmt.Errorf("empty HTML content returned")
	}
	return html, nil
}
