package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fortuna/rinkside/internal/api"
	"github.com/fortuna/rinkside/internal/export"
	"github.com/fortuna/rinkside/internal/league"
	"github.com/fortuna/rinkside/internal/pipeline"
	"github.com/fortuna/rinkside/internal/scheduler"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Scrape on a schedule and serve the display API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
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
			}

			pl := pipeline.New(fetcher, pageCache)
			server := api.NewServer(cfg.Port)
			if pageCache != nil {
				server.AddHealthCheck("cache", pageCache.HealthCheck)
			}

			// Pages that fail one refresh keep their last good data until a
			// later refresh replaces it.
			var (
				mu     sync.Mutex
				latest = map[league.PageKind]league.PageData{}
			)

			refresh := func(ctx context.Context) error {
				started := time.Now()
				results, runErr := pl.RunAll(ctx, league.Pages(cfg.TeamID))
				if len(results) == 0 {
					return runErr
				}

				mu.Lock()
				for kind, data := range results {
					latest[kind] = data
				}
				merged := make(map[league.PageKind]league.PageData, len(latest))
				for kind, data := range latest {
					merged[kind] = data
				}
				mu.Unlock()

				if err := writeExports(cfg.OutDir, merged, true, true, 0); err != nil {
					return err
				}
				if cfg.PostgresDSN != "" {
					archiveRun(ctx, cfg, pl.Backend(), started, results)
				}

				schedule := merged[league.PageSchedule].Schedule
				stats := merged[league.PageStats].Stats
				standings := merged[league.PageStandings].Standings
				server.SetSnapshot(&api.Snapshot{
					Schedule:  schedule,
					Stats:     stats,
					Standings: standings,
					Display:   export.BuildDisplay(schedule, stats, standings, time.Now()),
					UpdatedAt: time.Now().UTC(),
				})
				return runErr
			}

			if err := refresh(ctx); err != nil {
				log.Printf("serve: initial scrape failed, serving once a scrape succeeds: %v", err)
			}

			sched, err := scheduler.New(cfg.ScrapeInterval, cfg.DailyHour, refresh)
			if err != nil {
				return err
			}
			if err := sched.Start(ctx); err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("✓ Display API listening on :%s", cfg.Port)
				if err := server.Start(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case <-ctx.Done():
				log.Println("serve: shutting down")
			case err := <-errCh:
				return err
			}

			if err := sched.Stop(); err != nil {
				log.Printf("serve: scheduler shutdown: %v", err)
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
