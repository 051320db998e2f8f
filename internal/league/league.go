// Package league models the Amherst Adult Hockey League site: page URLs,
// table layouts, and the expected field sets per page kind.
package league

import (
	"net/url"

	"github.com/fortuna/rinkside/internal/record"
)

const BaseURL = "https://www.amherstadulthockey.com/teams/default.asp"

// DefaultTeamID is the league-wide division id used when none is configured.
const DefaultTeamID = "DSMALL"

// PageKind identifies one of the site's data pages.
type PageKind string

const (
	PageSchedule  PageKind = "schedule"
	PageStats     PageKind = "stats"
	PageStandings PageKind = "standings"
)

// Page is one scrape target: a page kind bound to a concrete URL.
type Page struct {
	Kind  PageKind
	Label string
	URL   string
}

// BuildURL assembles a team page URL. The site routes every page through
// default.asp with u/s/p query parameters.
func BuildURL(teamID string, kind PageKind, params url.Values) string {
	q := url.Values{}
	q.Set("u", teamID)
	q.Set("s", "hockey")
	q.Set("p", string(kind))
	for key, vals := range params {
		for _, v := range vals {
			q.Add(key, v)
		}
	}
	return BaseURL + "?" + q.Encode()
}

// Pages returns the standard scrape targets for a team.
func Pages(teamID string) []Page {
	return []Page{
		{
			Kind:  PageSchedule,
			Label: "Schedule",
			URL:   BuildURL(teamID, PageSchedule, url.Values{"format": {"List"}, "d": {"ALL"}}),
		},
		{
			Kind:  PageStats,
			Label: "Player Statistics",
			URL:   BuildURL(teamID, PageStats, url.Values{"psort": {"points"}}),
		},
		{
			Kind:  PageStandings,
			Label: "Standings",
			URL:   BuildURL(teamID, PageStandings, nil),
		},
	}
}

// Layout describes what a page's data table looks like: which row widths are
// real data rows and which header labels the site uses for its column row.
type Layout struct {
	// AcceptWidths are the cell counts accepted as data rows.
	AcceptWidths []int
	// HeaderLabels are lowercased column labels; a row made of these is the
	// table's own column header, not data.
	HeaderLabels []string
	// ClassCandidates are table classes probed before falling back to the
	// largest table on the page.
	ClassCandidates []string
}

var tableClasses = []string{"table", "schedule-table", "stats-table", "standings-table", "data-table"}

// LayoutFor returns the table layout for a page kind.
func LayoutFor(kind PageKind) Layout {
	switch kind {
	case PageSchedule:
		// time, away, away score, [vs], home, [home score], location.
		// Five-cell rows are games with no home score cell yet.
		return Layout{
			AcceptWidths:    []int{5, 6, 7},
			HeaderLabels:    []string{"time", "away", "visitor", "vs", "home", "location", "rink", "score", "result"},
			ClassCandidates: tableClasses,
		}
	case PageStats:
		return Layout{
			AcceptWidths:    []int{6, 7},
			HeaderLabels:    []string{"#", "no", "number", "name", "player", "team", "gp", "g", "a", "pts", "goals", "assists", "points"},
			ClassCandidates: tableClasses,
		}
	case PageStandings:
		return Layout{
			AcceptWidths:    []int{3, 4, 5},
			HeaderLabels:    []string{"team", "record", "w", "l", "t", "pts", "wins", "losses", "ties", "points"},
			ClassCandidates: tableClasses,
		}
	default:
		return Layout{ClassCandidates: tableClasses}
	}
}

// ExpectedFields lists the fields diagnostics inspects for emptiness on each
// page kind. Optional fields (scores, ties) are excluded: blanks there are
// normal data sparsity, not a rendering failure.
func ExpectedFields(kind PageKind) []string {
	switch kind {
	case PageSchedule:
		return []string{"time", "away", "home", "location"}
	case PageStats:
		return []string{"name", "team", "games_played"}
	case PageStandings:
		return []string{"team", "points"}
	default:
		return nil
	}
}

// FieldValues flattens normalized records into column-keyed values for
// diagnostics' per-field emptiness accounting.
func FieldValues(kind PageKind, data PageData) (cols []string, rows [][]string) {
	switch kind {
	case PageSchedule:
		cols = record.ScheduleColumns
		for _, e := range data.Schedule {
			rows = append(rows, e.Row())
		}
	case PageStats:
		cols = record.StatColumns
		for _, e := range data.Stats {
			rows = append(rows, e.Row())
		}
	case PageStandings:
		cols = record.StandingsColumns
		for _, e := range data.Standings {
			rows = append(rows, e.Row())
		}
	}
	return cols, rows
}

// PageData carries the normalized records of a single page scrape. Exactly
// one slice is populated, matching Kind.
type PageData struct {
	Kind      PageKind
	Schedule  []record.ScheduleEntry
	Stats     []record.PlayerStatEntry
	Standings []record.StandingsEntry
}

// Count returns the number of normalized records.
func (d PageData) Count() int {
	switch d.Kind {
	case PageSchedule:
		return len(d.Schedule)
	case PageStats:
		return len(d.Stats)
	case PageStandings:
		return len(d.Standings)
	}
	return 0
}
