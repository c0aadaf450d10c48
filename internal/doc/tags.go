package doc

import (
	"sort"
	"strings"
)

// Reserved status indicators. These tags are injected at read time
// from database state; letting an author set them would make a stored
// document lie about its lifecycle.
var (
	reservedExactTags = map[string]bool{
		"draft":      true,
		"review":     true,
		"approved":   true,
		"deprecated": true,
	}
	reservedTagPrefixes = []string{"deployed-"}
)

// ValidateTags rejects user-provided tags that collide with a reserved
// status indicator, either by exact match or reserved prefix.
func ValidateTags(tags []string) error {
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		if reservedExactTags[lower] {
			return &ReservedTagError{
				Tag: tag,
				Message: "status tags (" + strings.Join(sortedReservedTags(), ", ") +
					") are injected automatically from lifecycle state",
			}
		}
		for _, prefix := range reservedTagPrefixes {
			if strings.HasPrefix(lower, prefix) {
				return &ReservedTagError{
					Tag:     tag,
					Message: "tags starting with '" + prefix + "' are injected automatically for deployed documents",
				}
			}
		}
	}
	return nil
}

func sortedReservedTags() []string {
	names := make([]string, 0, len(reservedExactTags))
	for t := range reservedExactTags {
		names = append(names, t)
	}
	sort.Strings(names)
	return names
}
