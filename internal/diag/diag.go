// Package diag compares the candidate fetch backends against the real pages
// and recommends one. The static HTTP fetcher is much faster than the
// browser, but sees nothing when the site renders its tables with
// JavaScript; the comparison is record counts and field completeness, not
// page bytes.
package diag

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fortuna/rinkside/internal/fetch"
	"github.com/fortuna/rinkside/internal/league"
	"github.com/fortuna/rinkside/internal/pipeline"
	"github.com/fortuna/rinkside/internal/record"
)

// emptyFieldThreshold marks a field as missing when it is empty in at least
// this share of records. A few blank cells is normal data sparsity; a field
// blank across essentially every record means the content never rendered.
const emptyFieldThreshold = 0.9

// Result is the outcome of a diagnostics run. Recommendation is the name of
// the preferred backend, or empty when no backend was viable. Diagnostics
// itself never fails: what to do about zero viable backends belongs to the
// caller.
type Result struct {
	Reports        []record.BackendReport `json:"reports"`
	Recommendation string                 `json:"recommendation"`
	GeneratedAt    time.Time              `json:"generated_at"`
}

// Run tests every (fetcher, page) pair and builds one report per fetcher.
// Pairs are independent and run concurrently; each finished probe lands in
// its report slot under the lock, so a slow browser test cannot clobber a
// finished HTTP one.
func Run(ctx context.Context, fetchers []fetch.Fetcher, pages []league.Page) Result {
	reports := make([]record.BackendReport, len(fetchers))
	for i, f := range fetchers {
		reports[i] = record.BackendReport{
			Backend: f.Name(),
			Pages:   make([]record.PageProbe, len(pages)),
		}
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for fi, fetcher := range fetchers {
		for pi, page := range pages {
			wg.Add(1)
			go func(fi, pi int, fetcher fetch.Fetcher, page league.Page) {
				defer wg.Done()
				probe := probePage(ctx, fetcher, page)

				mu.Lock()
				reports[fi].Pages[pi] = probe
				reports[fi].Elapsed += probe.Elapsed
				mu.Unlock()
			}(fi, pi, fetcher, page)
		}
	}
	wg.Wait()

	for i := range reports {
		reports[i].Viable = viable(reports[i])
	}

	return Result{
		Reports:        reports,
		Recommendation: recommend(reports),
		GeneratedAt:    time.Now().UTC(),
	}
}

// probePage runs the full fetch → extract → normalize sequence for one pair
// and measures it. Diagnostics always bypasses the page cache: it is the
// fetcher under test, not the cache.
func probePage(ctx context.Context, fetcher fetch.Fetcher, page league.Page) record.PageProbe {
	probe := record.PageProbe{Page: page.Label, URL: page.URL}

	started := time.Now()
	data, err := pipeline.New(fetcher, nil).Run(ctx, page)
	probe.Elapsed = time.Since(started)

	if err != nil {
		probe.Error = err.Error()
		log.Printf("diag: %s/%s failed: %v", fetcher.Name(), page.Label, err)
		return probe
	}

	probe.Records = data.Count()
	probe.EmptyFields = emptyFields(page.Kind, data)
	return probe
}

// emptyFields returns the expected fields that came back empty in
// substantially all records.
func emptyFields(kind league.PageKind, data league.PageData) []string {
	cols, rows := league.FieldValues(kind, data)
	if len(rows) == 0 {
		return nil
	}

	colIndex := make(map[string]int, len(cols))
	for i, c := range cols {
		colIndex[c] = i
	}

	var missing []string
	for _, field := range league.ExpectedFields(kind) {
		idx, ok := colIndex[field]
		if !ok {
			continue
		}
		empty := 0
		for _, row := range rows {
			if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
				empty++
			}
		}
		if float64(empty) >= emptyFieldThreshold*float64(len(rows)) {
			missing = append(missing, field)
		}
	}
	return missing
}

// viable reports whether a backend passed on every page: no errors, at least
// one record, and no expected field missing.
func viable(report record.BackendReport) bool {
	for _, probe := range report.Pages {
		if probe.Error != "" || probe.Records == 0 || len(probe.EmptyFields) > 0 {
			return false
		}
	}
	return len(report.Pages) > 0
}

// recommend picks the fastest viable backend, uniformly for all pages.
// Per-page backend mixing is not worth the operational complexity of running
// two scrape paths. Ties break on name so the choice is deterministic.
func recommend(reports []record.BackendReport) string {
	candidates := make([]record.BackendReport, 0, len(reports))
	for _, r := range reports {
		if r.Viable {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Elapsed != candidates[j].Elapsed {
			return candidates[i].Elapsed < candidates[j].Elapsed
		}
		return candidates[i].Backend < candidates[j].Backend
	})
	return candidates[0].Backend
}

// Summary renders the human-readable recommendation line printed by the CLI.
func Summary(result Result) string {
	if result.Recommendation == "" {
		return "No viable scraping backend found. Check connectivity and site structure."
	}
	if result.Recommendation == "http" {
		return "Use the static HTTP backend."
	}
	return "Use the browser-rendered backend."
}
