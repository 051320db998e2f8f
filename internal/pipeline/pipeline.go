// Package pipeline runs the fetch → extract → normalize sequence for a page.
// The three stages are strictly sequential within a page: the date carried
// forward from header rows depends on ordered processing.
package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/fortuna/rinkside/internal/cache"
	"github.com/fortuna/rinkside/internal/extract"
	"github.com/fortuna/rinkside/internal/fetch"
	"github.com/fortuna/rinkside/internal/league"
	"github.com/fortuna/rinkside/internal/normalize"
)

// Pipeline binds a fetcher and an optional page cache to the per-page
// transformation stages.
type Pipeline struct {
	fetcher fetch.Fetcher
	pages   *cache.PageCache // nil when caching is disabled
}

// New creates a pipeline. A nil cache disables page caching.
func New(fetcher fetch.Fetcher, pages *cache.PageCache) *Pipeline {
	return &Pipeline{fetcher: fetcher, pages: pages}
}

// Backend names the fetcher driving this pipeline.
func (p *Pipeline) Backend() string {
	return p.fetcher.Name()
}

// Run scrapes one page and returns its normalized records.
func (p *Pipeline) Run(ctx context.Context, page league.Page) (league.PageData, error) {
	html, cached, err := p.page(ctx, page.URL)
	if err != nil {
		return league.PageData{Kind: page.Kind}, err
	}

	rows, err := extract.Rows(html, league.LayoutFor(page.Kind))
	if err != nil {
		return league.PageData{Kind: page.Kind}, err
	}

	data := normalize.Page(page.Kind, rows)
	log.Printf("pipeline: %s via %s: %d rows, %d records (cached=%v)",
		page.Label, p.fetcher.Name(), len(rows), data.Count(), cached)
	return data, nil
}

// RunAll scrapes every page in order, keyed by kind. A page whose table is
// missing fails that page only; the error for the first failure is returned
// alongside whatever succeeded.
func (p *Pipeline) RunAll(ctx context.Context, pages []league.Page) (map[league.PageKind]league.PageData, error) {
	results := make(map[league.PageKind]league.PageData, len(pages))
	var firstErr error
	for _, page := range pages {
		data, err := p.Run(ctx, page)
		if err != nil {
			log.Printf("pipeline: %s failed: %v", page.Label, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results[page.Kind] = data
	}
	return results, firstErr
}

func (p *Pipeline) page(ctx context.Context, url string) (html string, cached bool, err error) {
	if p.pages != nil {
		if html := p.pages.Get(ctx, url); html != "" {
			return html, true, nil
		}
	}

	started := time.Now()
	html, err = p.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", false, err
	}
	log.Printf("pipeline: fetched %s in %v", url, time.Since(started).Round(time.Millisecond))

	if p.pages != nil {
		if err := p.pages.Put(ctx, url, html); err != nil {
			log.Printf("pipeline: page cache write failed: %v", err)
		}
	}
	return html, false, nil
}
