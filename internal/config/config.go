// Package config loads runtime configuration from the environment, with an
// optional .env file for local runs.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/fortuna/rinkside/internal/league"
)

// Config carries every tunable. Redis and Postgres are optional: empty
// settings disable the page cache and the archive respectively.
type Config struct {
	TeamID         string        `envconfig:"TEAM"`
	Backend        string        `envconfig:"BACKEND" default:"http"` // http | browser | auto
	FetchTimeout   time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	OutDir         string        `envconfig:"OUTDIR" default:"data"`
	RedisURL       string        `envconfig:"REDIS_URL"`
	CacheTTL       time.Duration `envconfig:"CACHE_TTL" default:"10m"`
	PostgresDSN    string        `envconfig:"POSTGRES_DSN"`
	Port           string        `envconfig:"PORT" default:"8080"`
	ScrapeInterval time.Duration `envconfig:"SCRAPE_INTERVAL" default:"30m"`
	DailyHour      int           `envconfig:"DAILY_HOUR" default:"6"`
}

// Load reads AAHL_* environment variables, after loading .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("aahl", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.TeamID == "" {
		c.TeamID = league.DefaultTeamID
	}

	switch c.Backend {
	case "http", "browser", "auto":
	default:
		return nil, fmt.Errorf("invalid backend %q (want http, browser, or auto)", c.Backend)
	}
	if c.DailyHour < 0 || c.DailyHour > 23 {
		return nil, fmt.Errorf("invalid daily hour %d", c.DailyHour)
	}
	return &c, nil
}
