// Package fetch provides the two interchangeable page fetchers: a static
// HTTP client and a headless-browser client for JavaScript-rendered pages.
// Callers depend only on the Fetcher interface; diagnostics picks between
// the implementations at runtime.
package fetch

import (
	"context"
	"fmt"
)

// Fetcher retrieves the text of a page. Implementations must honor the
// context deadline; a slow page surfaces as an error, never a hang.
type Fetcher interface {
	// Name identifies the backend in reports and logs.
	Name() string
	// Fetch returns the page HTML for a URL.
	Fetch(ctx context.Context, url string) (string, error)
}

// FetchError wraps a transport-level failure. Recoverable: the caller may
// retry later or switch backends.
type FetchError struct {
	Backend string
	URL     string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch of %s failed: %v", e.Backend, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
