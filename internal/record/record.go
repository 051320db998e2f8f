package record

import (
	"strconv"
	"time"
)

// RowKind classifies a raw table row by its content shape.
type RowKind string

const (
	KindData       RowKind = "data"
	KindDateHeader RowKind = "date_header"
	KindWeekHeader RowKind = "week_header"
	KindUnknown    RowKind = "unknown"
)

// RawRow is one table row as read from the page: ordered cell text plus the
// classification tag. LeadSpan carries the colspan of the first cell so that
// merged header rows survive classification.
type RawRow struct {
	Cells    []string
	Kind     RowKind
	LeadSpan int
}

// Flags mark non-fatal anomalies attached to a record during normalization.
const (
	FlagCoerced        = "coerced"
	FlagPointsMismatch = "points_mismatch"
)

// FlagSet is an ordered list of anomaly flags. Empty for clean records.
type FlagSet []string

func (f FlagSet) Has(flag string) bool {
	for _, v := range f {
		if v == flag {
			return true
		}
	}
	return false
}

// ScheduleEntry is one scheduled or completed game. Date is ISO (2006-01-02)
// or empty when no date header preceded the row. A game with both scores set
// is completed; with neither it is upcoming.
type ScheduleEntry struct {
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Away      string  `json:"away"`
	Home      string  `json:"home"`
	AwayScore *int    `json:"away_score"`
	HomeScore *int    `json:"home_score"`
	Location  string  `json:"location"`
	Flags     FlagSet `json:"flags,omitempty"`
}

// Completed reports whether both final scores are present.
func (e ScheduleEntry) Completed() bool {
	return e.AwayScore != nil && e.HomeScore != nil
}

// PlayerStatEntry is one line of the player statistics table.
type PlayerStatEntry struct {
	Number      string  `json:"number"`
	Name        string  `json:"name"`
	Team        string  `json:"team"`
	GamesPlayed int     `json:"games_played"`
	Goals       int     `json:"goals"`
	Assists     int     `json:"assists"`
	Points      int     `json:"points"`
	Flags       FlagSet `json:"flags,omitempty"`
}

// StandingsEntry is one team line of the standings table.
type StandingsEntry struct {
	Team   string  `json:"team"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Ties   int     `json:"ties"`
	Points int     `json:"points"`
	Flags  FlagSet `json:"flags,omitempty"`
}

// ScheduleColumns is the stable CSV/field order for schedule exports.
var ScheduleColumns = []string{"date", "time", "away", "away_score", "home", "home_score", "location"}

// StatColumns is the stable CSV/field order for player stat exports.
var StatColumns = []string{"number", "name", "team", "games_played", "goals", "assists", "points"}

// StandingsColumns is the stable CSV/field order for standings exports.
var StandingsColumns = []string{"team", "wins", "losses", "ties", "points"}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// Row returns the entry's values in ScheduleColumns order.
func (e ScheduleEntry) Row() []string {
	return []string{e.Date, e.Time, e.Away, optInt(e.AwayScore), e.Home, optInt(e.HomeScore), e.Location}
}

// Row returns the entry's values in StatColumns order.
func (e PlayerStatEntry) Row() []string {
	return []string{
		e.Number, e.Name, e.Team,
		strconv.Itoa(e.GamesPlayed), strconv.Itoa(e.Goals), strconv.Itoa(e.Assists), strconv.Itoa(e.Points),
	}
}

// Row returns the entry's values in StandingsColumns order.
func (e StandingsEntry) Row() []string {
	return []string{e.Team, strconv.Itoa(e.Wins), strconv.Itoa(e.Losses), strconv.Itoa(e.Ties), strconv.Itoa(e.Points)}
}

// PageProbe is the per-page outcome of a diagnostics test.
type PageProbe struct {
	Page        string        `json:"page"`
	URL         string        `json:"url"`
	Records     int           `json:"records"`
	EmptyFields []string      `json:"empty_fields,omitempty"`
	Elapsed     time.Duration `json:"elapsed"`
	Error       string        `json:"error,omitempty"`
}

// BackendReport summarizes one fetcher's diagnostics run across all pages.
type BackendReport struct {
	Backend string        `json:"backend"`
	Pages   []PageProbe   `json:"pages"`
	Elapsed time.Duration `json:"elapsed"`
	Viable  bool          `json:"viable"`
}
