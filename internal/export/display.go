package export

import (
	"sort"
	"strings"
	"time"

	"github.com/fortuna/rinkside/internal/record"
)

const (
	displayGameLimit   = 10
	displayScorerLimit = 20
)

// homeLocation filters the display feed to games at the home rink.
const homeLocation = "amherst"

// RankedScorer is a stat line with its leaderboard rank attached.
type RankedScorer struct {
	Rank int `json:"rank"`
	record.PlayerStatEntry
}

// DisplayData is the envelope the signage player polls. Unlike the raw
// exports, this feed is presentation-sorted: standings by points descending,
// scorers ranked, games capped.
type DisplayData struct {
	Timestamp     time.Time               `json:"timestamp"`
	Standings     []record.StandingsEntry `json:"standings"`
	TopScorers    []RankedScorer          `json:"top_scorers"`
	RecentResults []record.ScheduleEntry  `json:"recent_results"`
	UpcomingGames []record.ScheduleEntry  `json:"upcoming_games"`
}

// BuildDisplay assembles the signage feed from normalized records. Team and
// player names are corrected against the standings teams, which carry the
// site's cleanest spellings.
func BuildDisplay(schedule []record.ScheduleEntry, stats []record.PlayerStatEntry, standings []record.StandingsEntry, now time.Time) DisplayData {
	teams := make([]string, 0, len(standings))
	for _, s := range standings {
		teams = append(teams, s.Team)
	}
	corrector := NewCorrector(teams...)

	return DisplayData{
		Timestamp:     now.UTC(),
		Standings:     rankedStandings(standings, corrector),
		TopScorers:    topScorers(stats, corrector),
		RecentResults: recentResults(schedule, corrector),
		UpcomingGames: upcomingGames(schedule, corrector),
	}
}

// rankedStandings applies the canonical sort: points descending, stable, so
// the source order breaks ties.
func rankedStandings(standings []record.StandingsEntry, corrector *Corrector) []record.StandingsEntry {
	out := make([]record.StandingsEntry, len(standings))
	copy(out, standings)
	for i := range out {
		out[i].Team = corrector.Correct(out[i].Team)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Points > out[j].Points
	})
	return out
}

func topScorers(stats []record.PlayerStatEntry, corrector *Corrector) []RankedScorer {
	sorted := make([]record.PlayerStatEntry, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Points > sorted[j].Points
	})

	if len(sorted) > displayScorerLimit {
		sorted = sorted[:displayScorerLimit]
	}

	ranked := make([]RankedScorer, len(sorted))
	for i, s := range sorted {
		s.Name = corrector.Correct(s.Name)
		s.Team = corrector.Correct(s.Team)
		ranked[i] = RankedScorer{Rank: i + 1, PlayerStatEntry: s}
	}
	return ranked
}

// recentResults keeps the last completed home games in chronological order.
func recentResults(schedule []record.ScheduleEntry, corrector *Corrector) []record.ScheduleEntry {
	var completed []record.ScheduleEntry
	for _, game := range schedule {
		if atHome(game) && game.Completed() {
			completed = append(completed, correctTeams(game, corrector))
		}
	}
	if len(completed) > displayGameLimit {
		completed = completed[len(completed)-displayGameLimit:]
	}
	return completed
}

// upcomingGames keeps the next unplayed home games.
func upcomingGames(schedule []record.ScheduleEntry, corrector *Corrector) []record.ScheduleEntry {
	var upcoming []record.ScheduleEntry
	for _, game := range schedule {
		if atHome(game) && !game.Completed() {
			upcoming = append(upcoming, correctTeams(game, corrector))
			if len(upcoming) == displayGameLimit {
				break
			}
		}
	}
	return upcoming
}

func atHome(game record.ScheduleEntry) bool {
	return strings.Contains(strings.ToLower(game.Location), homeLocation)
}

func correctTeams(game record.ScheduleEntry, corrector *Corrector) record.ScheduleEntry {
	game.Away = corrector.Correct(game.Away)
	game.Home = corrector.Correct(game.Home)
	return game
}
