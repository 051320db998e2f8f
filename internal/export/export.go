// Package export writes normalized records to the JSON/CSV files consumed
// downstream and builds the signage display feed.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fortuna/rinkside/internal/record"
)

// WriteJSON marshals v to an indented JSON file, creating parent directories
// as needed.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes a header row plus data rows.
func WriteCSV(path string, columns []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteScheduleCSV writes schedule entries in their stable column order.
func WriteScheduleCSV(path string, entries []record.ScheduleEntry) error {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = e.Row()
	}
	return WriteCSV(path, record.ScheduleColumns, rows)
}

// WriteStatsCSV writes player stat entries in their stable column order.
func WriteStatsCSV(path string, entries []record.PlayerStatEntry) error {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = e.Row()
	}
	return WriteCSV(path, record.StatColumns, rows)
}

// WriteStandingsCSV writes standings entries in their stable column order.
func WriteStandingsCSV(path string, entries []record.StandingsEntry) error {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = e.Row()
	}
	return WriteCSV(path, record.StandingsColumns, rows)
}
