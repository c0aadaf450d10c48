package criteria

import (
	"regexp"
	"strings"

	"github.com/specledger/specledger/internal/model"
)

// Item is one extracted checklist entry, in document order.
type Item struct {
	Ordinal  int
	Text     string
	Hash     string
	Met      bool
	Category string // nearest preceding subsection heading, if any
}

var (
	sectionStartRe = regexp.MustCompile(`(?i)^##\s+Acceptance\s+Criteria\s*$`)
	subsectionRe   = regexp.MustCompile(`^###\s+(.+)$`)
	checkboxRe     = regexp.MustCompile(`^-\s*\[([ xX])\]\s*(.+)$`)
)

// minTextLength filters out degenerate checklist entries.
const minTextLength = 3

// Extract scans a document body for the Acceptance Criteria section
// and returns its checklist items with ordinals 1..N in document
// order. Nested "### Success Criteria" (or any other ###) subsections
// stay inside the section and contribute the item category.
// Bracket-only placeholders and items shorter than three characters
// are skipped.
func Extract(body string) []Item {
	if body == "" {
		return nil
	}

	var items []Item
	inSection := false
	category := ""
	ordinal := 1

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)

		if sectionStartRe.MatchString(trimmed) {
			inSection = true
			category = ""
			continue
		}
		if !inSection {
			continue
		}

		// A new H1 or H2 heading ends the section; H3 is a subsection.
		if strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "###") {
			break
		}
		if m := subsectionRe.FindStringSubmatch(trimmed); m != nil {
			category = strings.TrimSpace(m[1])
			continue
		}

		m := checkboxRe.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[2])
		if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
			continue // template placeholder, e.g. "[User-observable outcome 1]"
		}
		if len(text) < minTextLength {
			continue
		}

		items = append(items, Item{
			Ordinal:  ordinal,
			Text:     text,
			Hash:     model.CriterionHash(text),
			Met:      strings.EqualFold(m[1], "x"),
			Category: category,
		})
		ordinal++
	}

	return items
}

// Summary aggregates completion state over a version's criteria rows.
type SummaryStats struct {
	Total   int
	Met     int
	Unmet   int
	Percent float64
}

// Summarize returns completion counts for display.
func Summarize(rows []model.Criterion) SummaryStats {
	s := SummaryStats{Total: len(rows)}
	for _, r := range rows {
		if r.Met {
			s.Met++
		}
	}
	s.Unmet = s.Total - s.Met
	if s.Total > 0 {
		s.Percent = float64(s.Met) / float64(s.Total) * 100
	}
	return s
}
