package export

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxCorrectionDistance bounds how far a fuzzy match may drift before we
// leave the scraped spelling alone.
const maxCorrectionDistance = 2

// defaultOverrides fixes spellings the site gets wrong consistently enough
// that fuzzy matching alone cannot recover them.
var defaultOverrides = map[string]string{
	"meathead":  "Marshall",
	"mccrossin": "McCrossin",
}

// Corrector fixes scraped names against a canonical set. The site's tables
// disagree with themselves (nicknames, caps, truncation), so the display
// feed unifies spellings before rendering.
type Corrector struct {
	overrides map[string]string
	canonical []string
}

// NewCorrector builds a corrector with the static override table and an
// optional canonical name list (e.g. team names from the standings page).
func NewCorrector(canonical ...string) *Corrector {
	return &Corrector{
		overrides: defaultOverrides,
		canonical: canonical,
	}
}

// Correct returns the canonical form of a scraped name: overrides applied
// word-by-word, then the closest canonical match within the edit-distance
// bound. Unmatched names pass through unchanged.
func (c *Corrector) Correct(name string) string {
	fields := strings.Fields(name)
	for i, word := range fields {
		if fixed, ok := c.overrides[strings.ToLower(word)]; ok {
			fields[i] = fixed
		}
	}
	fixed := strings.Join(fields, " ")

	if len(c.canonical) == 0 || fixed == "" {
		return fixed
	}

	ranks := fuzzy.RankFindNormalizedFold(fixed, c.canonical)
	best := -1
	for i, rank := range ranks {
		if rank.Distance <= maxCorrectionDistance && (best == -1 || rank.Distance < ranks[best].Distance) {
			best = i
			if rank.Distance == 0 {
				break
			}
		}
	}
	if best >= 0 {
		return ranks[best].Target
	}
	return fixed
}
