package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fortuna/rinkside/internal/store"
)

// newRunsCmd inspects the Postgres archive: recent scrape runs, or the
// standings snapshot of one archived run.
func newRunsCmd(flags *rootFlags) *cobra.Command {
	var (
		limit        int
		standingsRun int
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived scrape runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cfg.PostgresDSN == "" {
				return fmt.Errorf("no archive configured (set AAHL_POSTGRES_DSN)")
			}

			db, err := store.NewDatabase(cfg.PostgresDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			archive := store.NewArchive(db)
			out := cmd.OutOrStdout()

			if standingsRun > 0 {
				entries, err := archive.StandingsForRun(ctx, standingsRun)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintf(out, "no standings archived for run %d\n", standingsRun)
					return nil
				}
				for _, e := range entries {
					fmt.Fprintf(out, "%-24s %2d-%d-%d  %3d pts\n", e.Team, e.Wins, e.Losses, e.Ties, e.Points)
				}
				return nil
			}

			runs, err := archive.RecentRuns(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs archived yet")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(out, "#%-5d %-10s %-8s %s  %4d records in %v\n",
					r.RunID, r.TeamID, r.Backend,
					r.StartedAt.Local().Format("2006-01-02 15:04"),
					r.Records, r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of runs to list")
	cmd.Flags().IntVar(&standingsRun, "standings", 0, "print the archived standings of one run id")
	return cmd
}
