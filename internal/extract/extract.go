// Package extract locates the data table in a fetched AAHL page and
// classifies its rows. The site mixes data rows with date headers, week
// separators, and column-label rows inside a single table, and marks header
// rows inconsistently (sometimes th, sometimes a spanning td), so
// classification works on cell content rather than markup.
package extract

import (
	"errors"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/rinkside/internal/league"
	"github.com/fortuna/rinkside/internal/record"
)

// ErrTableNotFound means no table matched on the page. Fatal for that page:
// refetching unchanged HTML cannot help.
var ErrTableNotFound = errors.New("extract: no matching table found")

var (
	whitespacePattern = regexp.MustCompile(`\s+`)

	// "Tuesday, October 28, 2025"
	dateHeaderPattern = regexp.MustCompile(
		`^(?:Sunday|Monday|Tuesday|Wednesday|Thursday|Friday|Saturday),?\s+` +
			`(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+` +
			`\d{1,2},?\s+\d{4}$`)

	// "Mon, 10/27/25 to Sun, 11/2/25" with optional trailing "Week 3"
	weekRangePattern = regexp.MustCompile(`(?i)^[a-z]{3},?\s*\d{1,2}/\d{1,2}/\d{2,4}\s+to\s+[a-z]{3},?\s*\d{1,2}/\d{1,2}/\d{2,4}`)
	weekLabelPattern = regexp.MustCompile(`(?i)\bweek\s+\d+\b`)
)

// Rows parses page HTML, locates the data table per the layout, and returns
// every row classified in document order. A located table with no rows yields
// an empty slice and no error: an empty week is valid data.
func Rows(html string, layout league.Layout) ([]record.RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	table := findTable(doc, layout.ClassCandidates)
	if table == nil {
		return nil, ErrTableNotFound
	}

	var rows []record.RawRow
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells, leadSpan := readCells(tr)
		if len(cells) == 0 {
			return
		}
		row := record.RawRow{
			Cells:    cells,
			Kind:     Classify(cells, leadSpan, layout),
			LeadSpan: leadSpan,
		}
		if row.Kind == record.KindUnknown {
			log.Printf("extract: dropping unclassified row (%d cells): %q", len(cells), strings.Join(cells, " | "))
		}
		rows = append(rows, row)
	})

	return rows, nil
}

// Classify tags one row by cell count and content pattern. Pure function so
// historical row shapes can be pinned in tests.
func Classify(cells []string, leadSpan int, layout league.Layout) record.RowKind {
	if isColumnLabelRow(cells, layout.HeaderLabels) {
		return record.KindUnknown
	}

	// A single cell, or a first cell spanning several logical columns, is a
	// header row no matter how many trailing filler cells the markup has.
	if len(cells) == 1 || leadSpan > 1 {
		text := firstNonEmpty(cells)
		switch {
		case dateHeaderPattern.MatchString(text):
			return record.KindDateHeader
		case weekRangePattern.MatchString(text) || weekLabelPattern.MatchString(text):
			return record.KindWeekHeader
		default:
			return record.KindUnknown
		}
	}

	for _, w := range layout.AcceptWidths {
		if len(cells) == w {
			return record.KindData
		}
	}
	return record.KindUnknown
}

// findTable picks the page's data table: first class-candidate match, else
// the table with the most rows.
func findTable(doc *goquery.Document, classCandidates []string) *goquery.Selection {
	for _, class := range classCandidates {
		if sel := doc.Find("table." + class).First(); sel.Length() > 0 {
			return sel
		}
	}

	var best *goquery.Selection
	bestRows := -1
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		n := sel.Find("tr").Length()
		if n > bestRows {
			best = sel
			bestRows = n
		}
	})
	return best
}

// readCells returns trimmed cell text (th and td alike) plus the colspan of
// the first cell.
func readCells(tr *goquery.Selection) ([]string, int) {
	var cells []string
	leadSpan := 1
	tr.Find("td, th").Each(func(i int, cell *goquery.Selection) {
		text := whitespacePattern.ReplaceAllString(strings.TrimSpace(cell.Text()), " ")
		cells = append(cells, text)
		if i == 0 {
			if raw, ok := cell.Attr("colspan"); ok {
				if span, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && span > 1 {
					leadSpan = span
				}
			}
		}
	})
	return cells, leadSpan
}

// isColumnLabelRow detects the table's own column header ("Time | Away |
// Home | ..."), which matches a data width but carries no record.
func isColumnLabelRow(cells []string, labels []string) bool {
	if len(labels) == 0 || len(cells) < 2 {
		return false
	}
	labelSet := make(map[string]bool, len(labels))
	for _, l := range labels {
		labelSet[l] = true
	}

	matched, nonEmpty := 0, 0
	for _, cell := range cells {
		text := strings.ToLower(strings.TrimSpace(cell))
		if text == "" {
			continue
		}
		nonEmpty++
		if labelSet[text] {
			matched++
		}
	}
	return matched >= 2 && matched*2 >= nonEmpty
}

func firstNonEmpty(cells []string) string {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}
