package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPFetcherSuccess(t *testing.T) {
	var agent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent.Store(r.UserAgent())
		w.Write([]byte("<html><body><table></table></body></html>"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(5 * time.Second)
	html, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Errorf("unexpected body: %q", html)
	}
	if ua, _ := agent.Load().(string); !strings.Contains(ua, "Mozilla") {
		t.Errorf("expected a browser-like user agent, got %q", ua)
	}
}

func TestHTTPFetcherStatusErrorNotRetried(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewHTTPFetcher(5 * time.Second)
	_, err := f.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected a *FetchError, got %T", err)
	}
	if fetchErr.Backend != "http" || fetchErr.URL != server.URL {
		t.Errorf("unexpected error fields: %+v", fetchErr)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("expected exactly 1 request for an HTTP error status, got %d", got)
	}
}

func TestHTTPFetcherRetriesTransientFailure(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			// Drop the connection mid-request to simulate a network blip.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("response writer does not support hijacking")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Fatalf("hijack failed: %v", err)
			}
			conn.Close()
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(5 * time.Second)
	html, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed after retry: %v", err)
	}
	if html != "recovered" {
		t.Errorf("unexpected body: %q", html)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}
}

func TestHTTPFetcherContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := NewHTTPFetcher(5 * time.Second)
	if _, err := f.Fetch(ctx, server.URL); err == nil {
		t.Fatal("expected an error when the context expires")
	}
}

func TestFetchErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &FetchError{Backend: "http", URL: "https://example.test", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("FetchError should unwrap to the inner error")
	}
	if !strings.Contains(err.Error(), "https://example.test") {
		t.Errorf("error text should name the URL: %q", err.Error())
	}
}
