package main

import (
	"context"
	"fmt"
	"log"

	"github.com/fortuna/rinkside/internal/cache"
	"github.com/fortuna/rinkside/internal/config"
	"github.com/fortuna/rinkside/internal/diag"
	"github.com/fortuna/rinkside/internal/fetch"
	"github.com/fortuna/rinkside/internal/league"
)

// resolveFetcher builds the configured fetch backend. For "auto" it runs
// diagnostics against the team's pages first and uses the recommendation.
// The returned cleanup releases any browser resources and must always be
// called.
func resolveFetcher(ctx context.Context, cfg *config.Config) (fetch.Fetcher, func(), error) {
	switch cfg.Backend {
	case "http":
		return fetch.NewHTTPFetcher(cfg.FetchTimeout), func() {}, nil
	case "browser":
		browser := fetch.NewBrowserFetcher(cfg.FetchTimeout)
		return browser, browser.Close, nil
	case "auto":
		return autoSelectFetcher(ctx, cfg)
	default:
		return nil, func() {}, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func autoSelectFetcher(ctx context.Context, cfg *config.Config) (fetch.Fetcher, func(), error) {
	httpFetcher := fetch.NewHTTPFetcher(cfg.FetchTimeout)
	browser := fetch.NewBrowserFetcher(cfg.FetchTimeout)

	log.Println("backend: auto-selecting, running diagnostics")
	result := diag.Run(ctx, []fetch.Fetcher{httpFetcher, browser}, league.Pages(cfg.TeamID))

	switch result.Recommendation {
	case "http":
		browser.Close()
		log.Println("✓ Selected static HTTP backend")
		return httpFetcher, func() {}, nil
	case "browser":
		log.Println("✓ Selected browser-rendered backend")
		return browser, browser.Close, nil
	default:
		browser.Close()
		return nil, func() {}, fmt.Errorf("no viable fetch backend for team %s", cfg.TeamID)
	}
}

// openPageCache connects the optional Redis page cache. A missing or
// unreachable Redis downgrades to uncached scraping.
func openPageCache(cfg *config.Config) *cache.PageCache {
	if cfg.RedisURL == "" {
		return nil
	}
	pages, err := cache.NewPageCache(cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		log.Printf("cache: redis unavailable, scraping uncached: %v", err)
		return nil
	}
	log.Println("✓ Page cache connected")
	return pages
}
