package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fortuna/rinkside/internal/export"
	"github.com/fortuna/rinkside/internal/record"
)

// newDisplayCmd rebuilds display.json from exports already on disk, for
// tweaking the feed without re-scraping the site.
func newDisplayCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "display",
		Short: "Rebuild the display feed from existing export files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			var (
				schedule  []record.ScheduleEntry
				stats     []record.PlayerStatEntry
				standings []record.StandingsEntry
			)
			if err := readExport(cfg.OutDir, "schedule.json", &schedule); err != nil {
				return err
			}
			if err := readExport(cfg.OutDir, "player_stats.json", &stats); err != nil {
				return err
			}
			if err := readExport(cfg.OutDir, "standings.json", &standings); err != nil {
				return err
			}

			display := export.BuildDisplay(schedule, stats, standings, time.Now())
			path := filepath.Join(cfg.OutDir, "display.json")
			if err := export.WriteJSON(path, display); err != nil {
				return err
			}
			log.Printf("✓ Display feed rebuilt at %s", path)
			return nil
		},
	}
}

func readExport(outdir, name string, v any) error {
	path := filepath.Join(outdir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s (run scrape first): %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
