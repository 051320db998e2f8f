package export

import (
	"fmt"
	"testing"
	"time"

	"github.com/fortuna/rinkside/internal/record"
)

func intp(v int) *int { return &v }

func TestBuildDisplayStandingsSorted(t *testing.T) {
	standings := []record.StandingsEntry{
		{Team: "Blues", Points: 8},
		{Team: "Ultramar", Points: 12},
		{Team: "Ice Dogs", Points: 8},
	}

	display := BuildDisplay(nil, nil, standings, time.Now())
	if len(display.Standings) != 3 {
		t.Fatalf("expected 3 standings, got %d", len(display.Standings))
	}
	if display.Standings[0].Team != "Ultramar" {
		t.Errorf("first team = %s, expected Ultramar", display.Standings[0].Team)
	}
	// Stable sort: the 8-point tie keeps source order.
	if display.Standings[1].Team != "Blues" || display.Standings[2].Team != "Ice Dogs" {
		t.Errorf("tie order changed: %s then %s", display.Standings[1].Team, display.Standings[2].Team)
	}
}

func TestBuildDisplayTopScorers(t *testing.T) {
	var stats []record.PlayerStatEntry
	for i := 0; i < 25; i++ {
		stats = append(stats, record.PlayerStatEntry{
			Name:   fmt.Sprintf("Player %d", i),
			Points: i,
		})
	}

	display := BuildDisplay(nil, stats, nil, time.Now())
	if len(display.TopScorers) != 20 {
		t.Fatalf("expected scorer list capped at 20, got %d", len(display.TopScorers))
	}
	if display.TopScorers[0].Points != 24 || display.TopScorers[0].Rank != 1 {
		t.Errorf("leader = %+v, expected 24 points at rank 1", display.TopScorers[0])
	}
	for i, s := range display.TopScorers {
		if s.Rank != i+1 {
			t.Errorf("scorer %d has rank %d", i, s.Rank)
		}
	}
}

func TestBuildDisplayGames(t *testing.T) {
	var schedule []record.ScheduleEntry
	// Twelve completed home games, then upcoming ones, then an away game.
	for i := 0; i < 12; i++ {
		schedule = append(schedule, record.ScheduleEntry{
			Date:      fmt.Sprintf("2025-10-%02d", i+1),
			Away:      "Blues",
			Home:      "Ultramar",
			AwayScore: intp(2),
			HomeScore: intp(3),
			Location:  "Amherst Arena",
		})
	}
	schedule = append(schedule,
		record.ScheduleEntry{Date: "2025-11-01", Away: "Ice Dogs", Home: "Ultramar", Location: "Amherst Arena"},
		record.ScheduleEntry{Date: "2025-11-02", Away: "Ultramar", Home: "Blues", Location: "Maltby Rink"},
	)

	display := BuildDisplay(schedule, nil, nil, time.Now())

	if len(display.RecentResults) != 10 {
		t.Fatalf("expected 10 recent results, got %d", len(display.RecentResults))
	}
	// The cap keeps the latest games, not the earliest.
	if display.RecentResults[0].Date != "2025-10-03" {
		t.Errorf("first recent result dated %s, expected 2025-10-03", display.RecentResults[0].Date)
	}
	if display.RecentResults[9].Date != "2025-10-12" {
		t.Errorf("last recent result dated %s, expected 2025-10-12", display.RecentResults[9].Date)
	}

	if len(display.UpcomingGames) != 1 {
		t.Fatalf("expected 1 upcoming home game, got %d", len(display.UpcomingGames))
	}
	if display.UpcomingGames[0].Away != "Ice Dogs" {
		t.Errorf("upcoming game = %+v", display.UpcomingGames[0])
	}
}

func TestBuildDisplayCorrectsNames(t *testing.T) {
	standings := []record.StandingsEntry{
		{Team: "Ultramar", Points: 12},
		{Team: "Maltby Sports", Points: 5},
	}
	schedule := []record.ScheduleEntry{
		{Date: "2025-11-01", Away: "Maltby Sport", Home: "Ultramr", Location: "Amherst Arena"},
	}

	display := BuildDisplay(schedule, nil, standings, time.Now())
	if len(display.UpcomingGames) != 1 {
		t.Fatalf("expected 1 upcoming game, got %d", len(display.UpcomingGames))
	}
	game := display.UpcomingGames[0]
	if game.Away != "Maltby Sports" || game.Home != "Ultramar" {
		t.Errorf("names not corrected: away=%q home=%q", game.Away, game.Home)
	}
}

func TestBuildDisplayTimestamp(t *testing.T) {
	now := time.Date(2025, 11, 3, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))
	display := BuildDisplay(nil, nil, nil, now)
	if !display.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, expected %v", display.Timestamp, now)
	}
	if display.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp should be UTC, got %v", display.Timestamp.Location())
	}
}
