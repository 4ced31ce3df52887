package categorizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"fjacquet/txn-categorizer/internal/models"
)

// Wildcard is the single trailing marker that turns a pattern into a prefix match.
const Wildcard = "*"

// Rule maps a keyword pattern to a category.
//
// A pattern is either an exact literal ("WALMART") or a literal followed by a
// single trailing wildcard ("NETFLIX*"). Patterns are stored upper case.
type Rule struct {
	Pattern     string
	Category    string
	Specificity int
	Wildcard    bool
}

// NewRule normalizes pattern and category and derives specificity.
func NewRule(pattern, category string) (Rule, error) {
	p := NormalizePattern(pattern)
	c := strings.TrimSpace(category)
	if p == "" {
		return Rule{}, fmt.Errorf("%w: empty pattern", ErrInvalidRule)
	}
	if c == "" || models.IsUncategorized(c) {
		return Rule{}, fmt.Errorf("%w: pattern %q has no usable category", ErrInvalidRule, p)
	}

	r := Rule{Pattern: p, Category: c}
	literal := p
	if strings.HasSuffix(p, Wildcard) {
		r.Wildcard = true
		literal = strings.TrimSuffix(p, Wildcard)
	}
	r.Specificity = utf8.RuneCountInString(literal)
	return r, nil
}

// NormalizePattern upper-cases and trims a pattern.
func NormalizePattern(pattern string) string {
	return strings.ToUpper(strings.TrimSpace(pattern))
}

// Literal returns the pattern without its wildcard marker.
func (r Rule) Literal() string {
	if r.Wildcard {
		return strings.TrimSuffix(r.Pattern, Wildcard)
	}
	return r.Pattern
}

// Matches reports whether an already normalized description satisfies the rule.
func (r Rule) Matches(normalized string) bool {
	if r.Wildcard {
		return strings.HasPrefix(normalized, r.Literal())
	}
	return normalized == r.Pattern
}

// better reports whether a should win over b when both match the same
// description: higher specificity first, then exact literals over wildcards,
// then the lexicographically smallest pattern, then the smallest category.
func better(a, b Rule) bool {
	if a.Specificity != b.Specificity {
		return a.Specificity > b.Specificity
	}
	if a.Wildcard != b.Wildcard {
		return !a.Wildcard
	}
	if a.Pattern != b.Pattern {
		return a.Pattern < b.Pattern
	}
	return a.Category < b.Category
}
