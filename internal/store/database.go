// Package store archives scrape runs and their normalized records in
// Postgres, giving the league a queryable history the site itself never
// keeps (past standings, week-over-week stat movement).
package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database wraps the archive connection.
type Database struct {
	conn *sql.DB
}

// NewDatabase opens and verifies the archive connection.
func NewDatabase(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{conn: db}, nil
}

// Close closes the database connection.
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries.
func (db *Database) DB() *sql.DB {
	return db.conn
}

type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "001_create_scrape_runs",
		sql: `
			CREATE TABLE IF NOT EXISTS scrape_runs (
				run_id      SERIAL PRIMARY KEY,
				team_id     VARCHAR(32) NOT NULL,
				backend     VARCHAR(16) NOT NULL,
				started_at  TIMESTAMPTZ NOT NULL,
				finished_at TIMESTAMPTZ NOT NULL,
				records     INT NOT NULL DEFAULT 0
			)`,
	},
	{
		version: "002_create_schedule_entries",
		sql: `
			CREATE TABLE IF NOT EXISTS schedule_entries (
				id         SERIAL PRIMARY KEY,
				run_id     INT NOT NULL REFERENCES scrape_runs(run_id) ON DELETE CASCADE,
				game_date  VARCHAR(10) NOT NULL DEFAULT '',
				game_time  VARCHAR(16) NOT NULL DEFAULT '',
				away_team  TEXT NOT NULL,
				home_team  TEXT NOT NULL,
				away_score INT,
				home_score INT,
				location   TEXT NOT NULL DEFAULT ''
			)`,
	},
	{
		version: "003_create_player_stats",
		sql: `
			CREATE TABLE IF NOT EXISTS player_stats (
				id           SERIAL PRIMARY KEY,
				run_id       INT NOT NULL REFERENCES scrape_runs(run_id) ON DELETE CASCADE,
				number       VARCHAR(8) NOT NULL DEFAULT '',
				name         TEXT NOT NULL,
				team         TEXT NOT NULL DEFAULT '',
				games_played INT NOT NULL DEFAULT 0,
				goals        INT NOT NULL DEFAULT 0,
				assists      INT NOT NULL DEFAULT 0,
				points       INT NOT NULL DEFAULT 0
			)`,
	},
	{
		version: "004_create_standings",
		sql: `
			CREATE TABLE IF NOT EXISTS standings (
				id     SERIAL PRIMARY KEY,
				run_id INT NOT NULL REFERENCES scrape_runs(run_id) ON DELETE CASCADE,
				team   TEXT NOT NULL,
				wins   INT NOT NULL DEFAULT 0,
				losses INT NOT NULL DEFAULT 0,
				ties   INT NOT NULL DEFAULT 0,
				points INT NOT NULL DEFAULT 0
			)`,
	},
}

// RunMigrations applies any unapplied schema migrations in order.
func (db *Database) RunMigrations() error {
	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		if err := db.runMigration(m); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}
	}

	log.Println("✓ All archive migrations applied")
	return nil
}

func (db *Database) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.conn.Exec(query)
	return err
}

func (db *Database) runMigration(m migration) error {
	var exists bool
	err := db.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.version).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
		return err
	}
	return tx.Commit()
}
