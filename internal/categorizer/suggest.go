package categorizer

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestionDistance bounds how far a free-text suggestion may be from a
// known category and still be snapped to it.
const maxSuggestionDistance = 2

// SnapToKnownCategory maps a free-text suggestion onto one of known. Exact
// case-insensitive matches win; otherwise the closest label within
// maxSuggestionDistance edits is used, ties going to the first in known.
func SnapToKnownCategory(suggestion string, known []string) (string, bool) {
	s := strings.TrimSpace(suggestion)
	s = strings.Trim(s, `"'.`)
	if s == "" {
		return "", false
	}
	for _, k := range known {
		if strings.EqualFold(k, s) {
			return k, true
		}
	}

	upper := strings.ToUpper(s)
	best, bestDist := "", maxSuggestionDistance+1
	for _, k := range known {
		d := levenshtein.ComputeDistance(upper, strings.ToUpper(k))
		if d < bestDist {
			best, bestDist = k, d
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}
