package doc

import (
	"regexp"
	"strings"
)

// maxDescriptionLength bounds the derived description.
const maxDescriptionLength = 500

// descriptionSectionRe finds the first known description-bearing
// section heading and captures its first paragraph.
var descriptionSectionRe = regexp.MustCompile(`(?s)##\s+(?:Vision|Purpose|User Story|Description)\s*\n\n(.+?)(?:\n\n|\n#|$)`)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Description derives a document description from its body. The
// description is never authored directly: the first paragraph of a
// Vision/Purpose/User Story/Description section wins, otherwise the
// opening of the body, truncated at a word boundary with an ellipsis.
func Description(body string) string {
	raw := body
	if m := descriptionSectionRe.FindStringSubmatch(body); m != nil {
		raw = m[1]
	}
	return truncateAtWord(raw, maxDescriptionLength)
}

// truncateAtWord collapses whitespace and truncates at a word boundary,
// appending an ellipsis when text was dropped.
func truncateAtWord(text string, max int) string {
	text = whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	if len(text) <= max {
		return text
	}
	cut := text[:max]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
