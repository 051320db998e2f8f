package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fortuna/rinkside/internal/record"
)

// Run describes one archived scrape.
type Run struct {
	RunID      int       `json:"run_id"`
	TeamID     string    `json:"team_id"`
	Backend    string    `json:"backend"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Records    int       `json:"records"`
}

// Archive persists the records of a scrape run.
type Archive struct {
	db *Database
}

// NewArchive creates an archive over an open database.
func NewArchive(db *Database) *Archive {
	return &Archive{db: db}
}

// SaveRun records one scrape run and all its records in a single
// transaction, so a failed archive never leaves a half-written run.
func (a *Archive) SaveRun(ctx context.Context, run Run,
	schedule []record.ScheduleEntry, stats []record.PlayerStatEntry, standings []record.StandingsEntry) (int, error) {

	tx, err := a.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning archive tx: %w", err)
	}
	defer tx.Rollback()

	run.Records = len(schedule) + len(stats) + len(standings)

	var runID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO scrape_runs (team_id, backend, started_at, finished_at, records)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING run_id`,
		run.TeamID, run.Backend, run.StartedAt, run.FinishedAt, run.Records,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("inserting scrape run: %w", err)
	}

	for _, e := range schedule {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO schedule_entries (run_id, game_date, game_time, away_team, home_team, away_score, home_score, location)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			runID, e.Date, e.Time, e.Away, e.Home, nullableInt(e.AwayScore), nullableInt(e.HomeScore), e.Location,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting schedule entry: %w", err)
		}
	}

	for _, e := range stats {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO player_stats (run_id, number, name, team, games_played, goals, assists, points)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			runID, e.Number, e.Name, e.Team, e.GamesPlayed, e.Goals, e.Assists, e.Points,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting player stat: %w", err)
		}
	}

	for _, e := range standings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO standings (run_id, team, wins, losses, ties, points)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			runID, e.Team, e.Wins, e.Losses, e.Ties, e.Points,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting standings entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing archive tx: %w", err)
	}
	return runID, nil
}

// RecentRuns returns the newest archived runs, newest first.
func (a *Archive) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := a.db.DB().QueryContext(ctx, `
		SELECT run_id, team_id, backend, started_at, finished_at, records
		FROM scrape_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.TeamID, &r.Backend, &r.StartedAt, &r.FinishedAt, &r.Records); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// StandingsForRun returns the archived standings of one run in source order.
func (a *Archive) StandingsForRun(ctx context.Context, runID int) ([]record.StandingsEntry, error) {
	rows, err := a.db.DB().QueryContext(ctx, `
		SELECT team, wins, losses, ties, points
		FROM standings
		WHERE run_id = $1
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying standings: %w", err)
	}
	defer rows.Close()

	var entries []record.StandingsEntry
	for rows.Next() {
		var e record.StandingsEntry
		if err := rows.Scan(&e.Team, &e.Wins, &e.Losses, &e.Ties, &e.Points); err != nil {
			return nil, fmt.Errorf("scanning standings entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullableInt(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}
