package diag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/rinkside/internal/fetch"
	"github.com/fortuna/rinkside/internal/league"
	"github.com/fortuna/rinkside/internal/record"
)

const standingsHTML = `<html><body><table class="standings-table">
<tr><th>Team</th><th>W</th><th>L</th><th>T</th><th>Pts</th></tr>
<tr><td>Ultramar</td><td>5</td><td>1</td><td>2</td><td>12</td></tr>
<tr><td>Blues</td><td>4</td><td>4</td><td>0</td><td>8</td></tr>
</table></body></html>`

// The shell a script-rendered site serves to a static client: the table is
// there, but no data ever arrives.
const emptyStandingsHTML = `<html><body><table class="standings-table">
<tr><th>Team</th><th>W</th><th>L</th><th>T</th><th>Pts</th></tr>
</table></body></html>`

const blankTeamsHTML = `<html><body><table class="standings-table">
<tr><td></td><td>5</td><td>1</td><td>2</td><td>12</td></tr>
<tr><td></td><td>4</td><td>4</td><td>0</td><td>8</td></tr>
</table></body></html>`

type fakeFetcher struct {
	name  string
	html  string
	err   error
	delay time.Duration
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

func standingsPages() []league.Page {
	return []league.Page{
		{Kind: league.PageStandings, Label: "Standings", URL: "https://example.test/standings"},
	}
}

func TestRunRecommendsViableBackend(t *testing.T) {
	fetchers := []fetch.Fetcher{
		&fakeFetcher{name: "static", html: emptyStandingsHTML},
		&fakeFetcher{name: "rendered", html: standingsHTML},
	}

	result := Run(context.Background(), fetchers, standingsPages())
	if result.Recommendation != "rendered" {
		t.Fatalf("recommendation = %q, expected rendered", result.Recommendation)
	}
	if len(result.Reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(result.Reports))
	}

	for _, report := range result.Reports {
		switch report.Backend {
		case "static":
			if report.Viable {
				t.Error("backend seeing zero records should not be viable")
			}
			if report.Pages[0].Records != 0 {
				t.Errorf("static records = %d, expected 0", report.Pages[0].Records)
			}
		case "rendered":
			if !report.Viable {
				t.Error("rendered backend should be viable")
			}
			if report.Pages[0].Records != 2 {
				t.Errorf("rendered records = %d, expected 2", report.Pages[0].Records)
			}
		}
	}
}

func TestRunPrefersFasterViableBackend(t *testing.T) {
	fetchers := []fetch.Fetcher{
		&fakeFetcher{name: "slow", html: standingsHTML, delay: 50 * time.Millisecond},
		&fakeFetcher{name: "quick", html: standingsHTML},
	}

	for i := 0; i < 3; i++ {
		result := Run(context.Background(), fetchers, standingsPages())
		if result.Recommendation != "quick" {
			t.Fatalf("run %d: recommendation = %q, expected quick", i, result.Recommendation)
		}
	}
}

func TestRunNoViableBackend(t *testing.T) {
	fetchers := []fetch.Fetcher{
		&fakeFetcher{name: "static", err: errors.New("connection refused")},
		&fakeFetcher{name: "rendered", err: errors.New("browser crashed")},
	}

	result := Run(context.Background(), fetchers, standingsPages())
	if result.Recommendation != "" {
		t.Fatalf("recommendation = %q, expected none", result.Recommendation)
	}
	for _, report := range result.Reports {
		if report.Viable {
			t.Errorf("backend %s should not be viable", report.Backend)
		}
		if report.Pages[0].Error == "" {
			t.Errorf("backend %s should carry the fetch error", report.Backend)
		}
	}
	if !strings.Contains(Summary(result), "No viable") {
		t.Errorf("unexpected summary: %q", Summary(result))
	}
}

func TestRunDetectsEmptyFields(t *testing.T) {
	fetchers := []fetch.Fetcher{
		&fakeFetcher{name: "static", html: blankTeamsHTML},
	}

	result := Run(context.Background(), fetchers, standingsPages())
	report := result.Reports[0]
	if report.Viable {
		t.Error("backend with a blank expected field should not be viable")
	}

	found := false
	for _, field := range report.Pages[0].EmptyFields {
		if field == "team" {
			found = true
		}
	}
	if !found {
		t.Errorf("empty fields = %v, expected to include team", report.Pages[0].EmptyFields)
	}
	if result.Recommendation != "" {
		t.Errorf("recommendation = %q, expected none", result.Recommendation)
	}
}

func TestRecommendTieBreaksOnName(t *testing.T) {
	elapsed := 100 * time.Millisecond
	reports := []record.BackendReport{
		{Backend: "zeta", Viable: true, Elapsed: elapsed, Pages: []record.PageProbe{{Records: 1}}},
		{Backend: "alpha", Viable: true, Elapsed: elapsed, Pages: []record.PageProbe{{Records: 1}}},
	}
	if got := recommend(reports); got != "alpha" {
		t.Errorf("recommend = %q, expected the name tie-break alpha", got)
	}
}

func TestViable(t *testing.T) {
	tests := []struct {
		name   string
		report record.BackendReport
		want   bool
	}{
		{
			name: "all pages clean",
			report: record.BackendReport{Pages: []record.PageProbe{
				{Records: 3}, {Records: 10},
			}},
			want: true,
		},
		{
			name: "one page errored",
			report: record.BackendReport{Pages: []record.PageProbe{
				{Records: 3}, {Error: "timeout"},
			}},
			want: false,
		},
		{
			name: "one page empty",
			report: record.BackendReport{Pages: []record.PageProbe{
				{Records: 3}, {Records: 0},
			}},
			want: false,
		},
		{
			name: "missing expected field",
			report: record.BackendReport{Pages: []record.PageProbe{
				{Records: 3, EmptyFields: []string{"team"}},
			}},
			want: false,
		},
		{
			name:   "no pages probed",
			report: record.BackendReport{},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := viable(tt.report); got != tt.want {
				t.Errorf("viable = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	if s := Summary(Result{Recommendation: "http"}); !strings.Contains(s, "HTTP") {
		t.Errorf("unexpected summary: %q", s)
	}
	if s := Summary(Result{Recommendation: "browser"}); !strings.Contains(s, "browser") {
		t.Errorf("unexpected summary: %q", s)
	}
}
