package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fortuna/rinkside/internal/diag"
	"github.com/fortuna/rinkside/internal/export"
	"github.com/fortuna/rinkside/internal/fetch"
	"github.com/fortuna/rinkside/internal/league"
)

const timeUnit = time.Millisecond

func newDiagnoseCmd(flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Test both fetch backends against the live pages and recommend one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			httpFetcher := fetch.NewHTTPFetcher(cfg.FetchTimeout)
			browser := fetch.NewBrowserFetcher(cfg.FetchTimeout)
			defer browser.Close()

			result := diag.Run(ctx, []fetch.Fetcher{httpFetcher, browser}, league.Pages(cfg.TeamID))

			out := cmd.OutOrStdout()
			for _, report := range result.Reports {
				fmt.Fprintf(out, "\nBackend: %s (viable=%v, total %v)\n",
					report.Backend, report.Viable, report.Elapsed.Round(timeUnit))
				for _, probe := range report.Pages {
					if probe.Error != "" {
						fmt.Fprintf(out, "  %-20s ERROR: %s\n", probe.Page, probe.Error)
						continue
					}
					line := fmt.Sprintf("  %-20s %3d records in %v", probe.Page, probe.Records, probe.Elapsed.Round(timeUnit))
					if len(probe.EmptyFields) > 0 {
						line += fmt.Sprintf("  (empty: %v)", probe.EmptyFields)
					}
					fmt.Fprintln(out, line)
				}
			}
			fmt.Fprintf(out, "\n%s\n", diag.Summary(result))

			if output != "" {
				return export.WriteJSON(output, result)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the full report as JSON to this file")
	return cmd
}
