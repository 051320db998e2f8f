package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fortuna/rinkside/internal/config"
	"github.com/fortuna/rinkside/internal/extract"
	"github.com/fortuna/rinkside/internal/league"
	"github.com/fortuna/rinkside/internal/record"
)

func TestFilterRecentWeeks(t *testing.T) {
	now := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
	schedule := []record.ScheduleEntry{
		{Date: "2025-09-01", Away: "old"},
		{Date: "2025-11-03", Away: "last week"},
		{Date: "2025-11-09", Away: "yesterday"},
		{Date: "", Away: "undated"},
		{Date: "someday", Away: "unparseable"},
	}

	got := filterRecentWeeks(schedule, 2, now)

	want := []string{"last week", "yesterday", "undated", "unparseable"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, away := range want {
		if got[i].Away != away {
			t.Errorf("entry %d = %q, expected %q", i, got[i].Away, away)
		}
	}
}

func TestWriteExports(t *testing.T) {
	outdir := t.TempDir()
	score := 4
	results := map[league.PageKind]league.PageData{
		league.PageSchedule: {
			Kind: league.PageSchedule,
			Schedule: []record.ScheduleEntry{
				{Date: "2025-10-28", Time: "8:45 pm", Away: "Maltby Sports", AwayScore: &score, Home: "Ultramar", Location: "Amherst"},
			},
		},
		league.PageStats: {
			Kind:  league.PageStats,
			Stats: []record.PlayerStatEntry{{Name: "Sam Hart", Team: "Ultramar", Points: 20}},
		},
		league.PageStandings: {
			Kind:      league.PageStandings,
			Standings: []record.StandingsEntry{{Team: "Ultramar", Wins: 5, Points: 12}},
		},
	}

	if err := writeExports(outdir, results, true, true, 1); err != nil {
		t.Fatalf("writeExports failed: %v", err)
	}

	want := []string{
		"schedule.json", "player_stats.json", "standings.json", "schedule_recent.json",
		"schedule.csv", "player_stats.csv", "standings.csv",
		"display.json",
	}
	for _, name := range want {
		if _, err := os.Stat(filepath.Join(outdir, name)); err != nil {
			t.Errorf("missing export %s: %v", name, err)
		}
	}
}

func TestWriteExportsPartialResults(t *testing.T) {
	outdir := t.TempDir()
	results := map[league.PageKind]league.PageData{
		league.PageSchedule: {Kind: league.PageSchedule},
	}

	if err := writeExports(outdir, results, true, false, 0); err != nil {
		t.Fatalf("writeExports failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outdir, "schedule.json")); err != nil {
		t.Errorf("schedule.json should exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outdir, "display.json")); !os.IsNotExist(err) {
		t.Error("display.json should not be rebuilt from a partial scrape")
	}
	if _, err := os.Stat(filepath.Join(outdir, "schedule.csv")); !os.IsNotExist(err) {
		t.Error("schedule.csv should not be written with CSV disabled")
	}
	if _, err := os.Stat(filepath.Join(outdir, "standings.json")); !os.IsNotExist(err) {
		t.Error("standings.json should not be written for an unscraped page")
	}
}

// A failed page must cost that page only: whatever the pipeline did produce
// gets written before the failure is surfaced.
func TestFinishScrapeExportsPartialResults(t *testing.T) {
	cfg := &config.Config{OutDir: t.TempDir()}
	results := map[league.PageKind]league.PageData{
		league.PageStandings: {
			Kind:      league.PageStandings,
			Standings: []record.StandingsEntry{{Team: "Ultramar", Wins: 5, Points: 12}},
		},
	}
	runErr := fmt.Errorf("Schedule: %w", extract.ErrTableNotFound)

	err := finishScrape(context.Background(), cfg, "http", time.Now(), results, runErr, true, true, 0)
	if err == nil {
		t.Fatal("the page failure must still be reported")
	}
	if !errors.Is(err, extract.ErrTableNotFound) {
		t.Errorf("error should wrap the page failure, got %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(cfg.OutDir, "standings.json")); statErr != nil {
		t.Errorf("standings.json should be written despite the schedule failure: %v", statErr)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.OutDir, "schedule.json")); !os.IsNotExist(statErr) {
		t.Error("schedule.json should not be written for the failed page")
	}
}

func TestFinishScrapeNothingScraped(t *testing.T) {
	cfg := &config.Config{OutDir: t.TempDir()}
	runErr := errors.New("connection refused")

	err := finishScrape(context.Background(), cfg, "http", time.Now(), nil, runErr, true, true, 0)
	if !errors.Is(err, runErr) {
		t.Fatalf("expected the scrape failure back, got %v", err)
	}

	entries, readErr := os.ReadDir(cfg.OutDir)
	if readErr != nil {
		t.Fatalf("reading outdir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("no files should be written when nothing was scraped, found %d", len(entries))
	}
}

func TestSelectPages(t *testing.T) {
	pages, err := selectPages("DSMALL", nil)
	if err != nil {
		t.Fatalf("selectPages failed: %v", err)
	}
	if len(pages) != 3 {
		t.Errorf("expected all 3 pages by default, got %d", len(pages))
	}

	pages, err = selectPages("DSMALL", []string{"standings", "schedule"})
	if err != nil {
		t.Fatalf("selectPages failed: %v", err)
	}
	if len(pages) != 2 || pages[0].Kind != league.PageStandings || pages[1].Kind != league.PageSchedule {
		t.Errorf("unexpected pages: %+v", pages)
	}

	if _, err := selectPages("DSMALL", []string{"roster"}); err == nil {
		t.Error("expected an error for an unknown target")
	}
}
