package categorizer

import (
	"iter"

	"fjacquet/txn-categorizer/internal/models"
)

// RuleSource is anything that can enumerate rules.
type RuleSource interface {
	AllRules() iter.Seq[Rule]
}

// Matcher resolves a description to the category of its best matching rule.
// It reads the source on every call, so rules learned mid-run are honoured.
type Matcher struct {
	rules RuleSource
}

// NewMatcher creates a matcher over rules.
func NewMatcher(rules RuleSource) *Matcher {
	return &Matcher{rules: rules}
}

// Match returns the winning category or models.CategoryUncategorized.
func (m *Matcher) Match(description string) string {
	if r, ok := m.BestRule(description); ok {
		return r.Category
	}
	return models.CategoryUncategorized
}

// BestRule returns the winning rule for description. The result depends only
// on the rule set, never on the order rules are enumerated in.
func (m *Matcher) BestRule(description string) (Rule, bool) {
	normalized := models.NormalizeDescription(description)
	if normalized == "" {
		return Rule{}, false
	}

	var best Rule
	found := false
	for r := range m.rules.AllRules() {
		if !r.Matches(normalized) {
			continue
		}
		if !found || better(r, best) {
			best = r
			found = true
		}
	}
	return best, found
}
