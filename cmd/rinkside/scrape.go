package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fortuna/rinkside/internal/config"
	"github.com/fortuna/rinkside/internal/export"
	"github.com/fortuna/rinkside/internal/league"
	"github.com/fortuna/rinkside/internal/pipeline"
	"github.com/fortuna/rinkside/internal/record"
	"github.com/fortuna/rinkside/internal/store"
)

func newScrapeCmd(flags *rootFlags) *cobra.Command {
	var (
		targets      []string
		noJSON       bool
		noCSV        bool
		recentWeeks  int
		refreshCache bool
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the league pages once and write the export files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			pages, err := selectPages(cfg.TeamID, targets)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fetcher, cleanup, err := resolveFetcher(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			pageCache := openPageCache(cfg)
			if pageCache != nil {
				defer pageCache.Close()
				if refreshCache {
					urls := make([]string, len(pages))
					for i, p := range pages {
						urls[i] = p.URL
					}
					if err := pageCache.Invalidate(ctx, urls...); err != nil {
						log.Printf("cache: invalidation failed, cached pages may be served: %v", err)
					}
				}
			}

			started := time.Now()
			results, runErr := pipeline.New(fetcher, pageCache).RunAll(ctx, pages)
			return finishScrape(ctx, cfg, fetcher.Name(), started, results, runErr, !noJSON, !noCSV, recentWeeks)
		},
	}

	cmd.Flags().StringSliceVar(&targets, "targets", nil, "pages to scrape: schedule, stats, standings (default all)")
	cmd.Flags().BoolVar(&noJSON, "no-json", false, "skip JSON exports")
	cmd.Flags().BoolVar(&noCSV, "no-csv", false, "skip CSV exports")
	cmd.Flags().IntVar(&recentWeeks, "recent-weeks", 0, "also export schedule_recent.json limited to the last N weeks")
	cmd.Flags().BoolVar(&refreshCache, "refresh", false, "drop cached pages before scraping")
	return cmd
}

// finishScrape exports and archives whatever the pipeline produced, then
// surfaces the scrape failure if there was one. A failed page costs that page
// only: partial data is written before the error is reported.
func finishScrape(ctx context.Context, cfg *config.Config, backend string, started time.Time,
	results map[league.PageKind]league.PageData, runErr error, writeJSON, writeCSV bool, recentWeeks int) error {

	if len(results) > 0 {
		if err := writeExports(cfg.OutDir, results, writeJSON, writeCSV, recentWeeks); err != nil {
			return err
		}
		if cfg.PostgresDSN != "" {
			archiveRun(ctx, cfg, backend, started, results)
		}
	}

	if runErr != nil {
		return fmt.Errorf("scrape finished with failures: %w", runErr)
	}
	log.Printf("✓ Scrape complete in %v", time.Since(started).Round(time.Millisecond))
	return nil
}

// selectPages resolves the --targets flag against the team's standard pages.
// No targets means every page.
func selectPages(teamID string, targets []string) ([]league.Page, error) {
	all := league.Pages(teamID)
	if len(targets) == 0 {
		return all, nil
	}

	byKind := make(map[league.PageKind]league.Page, len(all))
	for _, p := range all {
		byKind[p.Kind] = p
	}

	pages := make([]league.Page, 0, len(targets))
	for _, target := range targets {
		page, ok := byKind[league.PageKind(target)]
		if !ok {
			return nil, fmt.Errorf("unknown target %q (want schedule, stats, or standings)", target)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// writeExports writes the JSON/CSV files for every scraped page. Pages absent
// from results (not targeted, or failed) leave their files untouched, and the
// display feed is only rebuilt when every page is present: a partial scrape
// must not blank out a complete feed already on disk.
func writeExports(outdir string, results map[league.PageKind]league.PageData, writeJSON, writeCSV bool, recentWeeks int) error {
	if data, ok := results[league.PageSchedule]; ok {
		if writeJSON {
			if err := export.WriteJSON(filepath.Join(outdir, "schedule.json"), data.Schedule); err != nil {
				return err
			}
			if recentWeeks > 0 {
				recent := filterRecentWeeks(data.Schedule, recentWeeks, time.Now())
				if err := export.WriteJSON(filepath.Join(outdir, "schedule_recent.json"), recent); err != nil {
					return err
				}
			}
		}
		if writeCSV {
			if err := export.WriteScheduleCSV(filepath.Join(outdir, "schedule.csv"), data.Schedule); err != nil {
				return err
			}
		}
	}

	if data, ok := results[league.PageStats]; ok {
		if writeJSON {
			if err := export.WriteJSON(filepath.Join(outdir, "player_stats.json"), data.Stats); err != nil {
				return err
			}
		}
		if writeCSV {
			if err := export.WriteStatsCSV(filepath.Join(outdir, "player_stats.csv"), data.Stats); err != nil {
				return err
			}
		}
	}

	if data, ok := results[league.PageStandings]; ok {
		if writeJSON {
			if err := export.WriteJSON(filepath.Join(outdir, "standings.json"), data.Standings); err != nil {
				return err
			}
		}
		if writeCSV {
			if err := export.WriteStandingsCSV(filepath.Join(outdir, "standings.csv"), data.Standings); err != nil {
				return err
			}
		}
	}

	if allPagesPresent(results) {
		display := export.BuildDisplay(
			results[league.PageSchedule].Schedule,
			results[league.PageStats].Stats,
			results[league.PageStandings].Standings,
			time.Now(),
		)
		if err := export.WriteJSON(filepath.Join(outdir, "display.json"), display); err != nil {
			return err
		}
	}

	log.Printf("✓ Exports written to %s", outdir)
	return nil
}

func allPagesPresent(results map[league.PageKind]league.PageData) bool {
	for _, kind := range []league.PageKind{league.PageSchedule, league.PageStats, league.PageStandings} {
		if _, ok := results[kind]; !ok {
			return false
		}
	}
	return true
}

// filterRecentWeeks keeps games dated within the last n weeks. Entries whose
// date never resolved are kept: dropping them silently would hide games.
func filterRecentWeeks(schedule []record.ScheduleEntry, n int, now time.Time) []record.ScheduleEntry {
	cutoff := now.AddDate(0, 0, -7*n)

	out := make([]record.ScheduleEntry, 0, len(schedule))
	for _, e := range schedule {
		date, err := time.Parse("2006-01-02", e.Date)
		if err != nil || !date.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// archiveRun persists the scrape to Postgres. Archive failures are logged,
// not fatal: the exports already landed.
func archiveRun(ctx context.Context, cfg *config.Config, backend string, started time.Time, results map[league.PageKind]league.PageData) {
	db, err := store.NewDatabase(cfg.PostgresDSN)
	if err != nil {
		log.Printf("archive: database unavailable: %v", err)
		return
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Printf("archive: migrations failed: %v", err)
		return
	}

	run := store.Run{
		TeamID:     cfg.TeamID,
		Backend:    backend,
		StartedAt:  started.UTC(),
		FinishedAt: time.Now().UTC(),
	}
	runID, err := store.NewArchive(db).SaveRun(ctx, run,
		results[league.PageSchedule].Schedule,
		results[league.PageStats].Stats,
		results[league.PageStandings].Standings,
	)
	if err != nil {
		log.Printf("archive: save failed: %v", err)
		return
	}
	log.Printf("✓ Run archived (run_id=%d)", runID)
}
