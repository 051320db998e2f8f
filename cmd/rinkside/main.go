// Command rinkside scrapes the Amherst Adult Hockey League site into typed
// schedule, player-stat, and standings records, exports them as JSON/CSV,
// and can serve the signage display feed.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fortuna/rinkside/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	team    string
	backend string
	outdir  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "rinkside",
		Short:         "Scrape and publish Amherst Adult Hockey League data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.team, "team", "", "team/division id to scrape (default from AAHL_TEAM)")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "fetch backend: http, browser, or auto")
	root.PersistentFlags().StringVar(&flags.outdir, "outdir", "", "directory for output files")

	root.AddCommand(
		newScrapeCmd(flags),
		newDiagnoseCmd(flags),
		newServeCmd(flags),
		newDisplayCmd(flags),
		newRunsCmd(flags),
	)
	return root
}

// loadConfig applies command-line overrides on top of the environment.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.team != "" {
		cfg.TeamID = flags.team
	}
	if flags.backend != "" {
		cfg.Backend = flags.backend
	}
	if flags.outdir != "" {
		cfg.OutDir = flags.outdir
	}
	return cfg, nil
}
