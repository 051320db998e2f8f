// Package normalize maps classified table rows into typed records. Malformed
// cells are coerced and flagged instead of dropping the row, so record counts
// stay in parity with the source table for auditing.
package normalize

import (
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/rinkside/internal/league"
	"github.com/fortuna/rinkside/internal/record"
)

var (
	// "4L", "5W", "3T", "4" or letter-first variants the site has produced.
	scoreTrailingCode = regexp.MustCompile(`^(\d+)\s*([WLTwlt])?$`)
	scoreLeadingCode  = regexp.MustCompile(`^([WLTwlt])\s*(\d+)$`)

	recordCellPattern = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)(?:\s*-\s*(\d+))?$`)
)

var dateHeaderFormats = []string{
	"Monday, January 2, 2006",
	"Monday January 2, 2006",
	"Monday, January 2 2006",
}

// Page normalizes rows for the given page kind.
func Page(kind league.PageKind, rows []record.RawRow) league.PageData {
	data := league.PageData{Kind: kind}
	switch kind {
	case league.PageSchedule:
		data.Schedule = Schedule(rows)
	case league.PageStats:
		data.Stats = Stats(rows)
	case league.PageStandings:
		data.Standings = Standings(rows)
	}
	return data
}

// Schedule converts classified rows into schedule entries. The current date
// is carried forward from the most recent date header: set on a date header,
// cleared at a week boundary, empty until the first header is seen.
func Schedule(rows []record.RawRow) []record.ScheduleEntry {
	entries := make([]record.ScheduleEntry, 0, len(rows))
	currentDate := ""

	for _, row := range rows {
		switch row.Kind {
		case record.KindDateHeader:
			currentDate = parseHeaderDate(firstCell(row.Cells))
		case record.KindWeekHeader:
			// A new week does not imply a new date until an explicit
			// date header arrives.
			currentDate = ""
		case record.KindData:
			entries = append(entries, scheduleEntry(row.Cells, currentDate))
		}
	}
	return entries
}

func scheduleEntry(cells []string, date string) record.ScheduleEntry {
	// Widths: 7 = time, away, score, "vs", home, score, location;
	// 6 drops the filler column; 5 also lacks the home score cell.
	var timeCell, away, awayCell, home, homeCell, location string
	switch len(cells) {
	case 7:
		timeCell, away, awayCell, home, homeCell, location = cells[0], cells[1], cells[2], cells[4], cells[5], cells[6]
	case 6:
		timeCell, away, awayCell, home, homeCell, location = cells[0], cells[1], cells[2], cells[3], cells[4], cells[5]
	case 5:
		timeCell, away, awayCell, home, location = cells[0], cells[1], cells[2], cells[3], cells[4]
	}

	entry := record.ScheduleEntry{
		Date:     date,
		Time:     timeCell,
		Away:     strings.TrimSpace(away),
		Home:     strings.TrimSpace(home),
		Location: strings.TrimSpace(location),
	}

	var coerced bool
	entry.AwayScore, coerced = parseScoreCell(awayCell)
	if coerced {
		entry.Flags = append(entry.Flags, record.FlagCoerced)
	}
	entry.HomeScore, coerced = parseScoreCell(homeCell)
	if coerced && !entry.Flags.Has(record.FlagCoerced) {
		entry.Flags = append(entry.Flags, record.FlagCoerced)
	}
	return entry
}

// Stats converts classified rows into player stat entries. Blank numeric
// cells mean zero in this league, not unknown. When the table has no points
// column, points = goals + assists; an explicit points cell that disagrees
// with the sum is kept as-is and flagged.
func Stats(rows []record.RawRow) []record.PlayerStatEntry {
	entries := make([]record.PlayerStatEntry, 0, len(rows))

	for _, row := range rows {
		if row.Kind != record.KindData {
			continue
		}
		cells := row.Cells

		entry := record.PlayerStatEntry{
			Number: strings.TrimSpace(cells[0]),
			Name:   strings.TrimSpace(cells[1]),
			Team:   strings.TrimSpace(cells[2]),
		}

		var coerced bool
		entry.GamesPlayed, coerced = parseIntCell(cells[3])
		flagged := coerced
		entry.Goals, coerced = parseIntCell(cells[4])
		flagged = flagged || coerced
		entry.Assists, coerced = parseIntCell(cells[5])
		flagged = flagged || coerced

		if len(cells) >= 7 && strings.TrimSpace(cells[6]) != "" {
			entry.Points, coerced = parseIntCell(cells[6])
			flagged = flagged || coerced
			if entry.Points != entry.Goals+entry.Assists {
				entry.Flags = append(entry.Flags, record.FlagPointsMismatch)
			}
		} else {
			entry.Points = entry.Goals + entry.Assists
		}

		if flagged {
			entry.Flags = append(entry.Flags, record.FlagCoerced)
			log.Printf("normalize: coerced malformed stat cell for %q", entry.Name)
		}
		entries = append(entries, entry)
	}
	return entries
}

// Standings converts classified rows into standings entries. A three-cell
// row carries a combined "W-L" (or "W-L-T") record cell; ties default to
// zero for formats without tie games. Source order is preserved: sorting by
// points is a presentation concern.
func Standings(rows []record.RawRow) []record.StandingsEntry {
	entries := make([]record.StandingsEntry, 0, len(rows))

	for _, row := range rows {
		if row.Kind != record.KindData {
			continue
		}
		cells := row.Cells

		entry := record.StandingsEntry{Team: strings.TrimSpace(cells[0])}
		var flagged bool

		switch len(cells) {
		case 3:
			var coerced bool
			entry.Wins, entry.Losses, entry.Ties, coerced = parseRecordCell(cells[1])
			flagged = coerced
			entry.Points, coerced = parseIntCell(cells[2])
			flagged = flagged || coerced
		case 4:
			var coerced bool
			entry.Wins, coerced = parseIntCell(cells[1])
			flagged = coerced
			entry.Losses, coerced = parseIntCell(cells[2])
			flagged = flagged || coerced
			entry.Points, coerced = parseIntCell(cells[3])
			flagged = flagged || coerced
		case 5:
			var coerced bool
			entry.Wins, coerced = parseIntCell(cells[1])
			flagged = coerced
			entry.Losses, coerced = parseIntCell(cells[2])
			flagged = flagged || coerced
			entry.Ties, coerced = parseIntCell(cells[3])
			flagged = flagged || coerced
			entry.Points, coerced = parseIntCell(cells[4])
			flagged = flagged || coerced
		}

		if flagged {
			entry.Flags = append(entry.Flags, record.FlagCoerced)
			log.Printf("normalize: coerced malformed standings cell for %q", entry.Team)
		}
		entries = append(entries, entry)
	}
	return entries
}

// parseHeaderDate turns "Tuesday, October 28, 2025" into "2025-10-28".
// Unparseable headers leave the date empty rather than guessing.
func parseHeaderDate(text string) string {
	text = strings.TrimSpace(text)
	for _, format := range dateHeaderFormats {
		if t, err := time.Parse(format, text); err == nil {
			return t.Format("2006-01-02")
		}
	}
	log.Printf("normalize: unparseable date header %q", text)
	return ""
}

// parseScoreCell parses a schedule score cell like "4L", "5W" or "3". The
// win/loss letter is dropped: the result is derivable from comparing scores
// and storing it separately invites contradiction. Blank means the game has
// not been played (nil score). A non-blank unparseable cell yields nil and a
// coercion flag.
func parseScoreCell(cell string) (score *int, coerced bool) {
	text := strings.TrimSpace(cell)
	if text == "" {
		return nil, false
	}
	if m := scoreTrailingCode.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return &n, false
	}
	if m := scoreLeadingCode.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[2])
		return &n, false
	}
	return nil, true
}

// parseIntCell coerces a numeric stat cell. Blank is zero by league
// convention; junk is zero plus a coercion flag.
func parseIntCell(cell string) (value int, coerced bool) {
	text := strings.TrimSpace(cell)
	if text == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(text); err == nil {
		return n, false
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return int(f), false
	}
	return 0, true
}

// parseRecordCell splits a combined "5-1" or "5-1-2" record cell.
func parseRecordCell(cell string) (wins, losses, ties int, coerced bool) {
	m := recordCellPattern.FindStringSubmatch(strings.TrimSpace(cell))
	if m == nil {
		return 0, 0, 0, strings.TrimSpace(cell) != ""
	}
	wins, _ = strconv.Atoi(m[1])
	losses, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		ties, _ = strconv.Atoi(m[3])
	}
	return wins, losses, ties, false
}

func firstCell(cells []string) string {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}
