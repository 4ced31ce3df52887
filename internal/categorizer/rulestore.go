package categorizer

import (
	"iter"
	"slices"
	"sync"
)

// RuleStore holds the keyword rules for a run. It only grows: a pattern, once
// added, keeps its category for the lifetime of the store.
type RuleStore struct {
	mu    sync.RWMutex
	rules []Rule
	index map[string]int
	dirty bool
}

// NewRuleStore creates an empty store.
func NewRuleStore() *RuleStore {
	return &RuleStore{index: make(map[string]int)}
}

// AddRule appends a rule. Adding an identical mapping again is a no-op; mapping
// an existing pattern to another category returns *DuplicatePatternError.
func (s *RuleStore) AddRule(pattern, category string) error {
	r, err := NewRule(pattern, category)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[r.Pattern]; ok {
		existing := s.rules[i]
		if existing.Category == r.Category {
			return nil
		}
		return &DuplicatePatternError{
			Pattern:          r.Pattern,
			ExistingCategory: existing.Category,
			NewCategory:      r.Category,
		}
	}

	s.index[r.Pattern] = len(s.rules)
	s.rules = append(s.rules, r)
	s.dirty = true
	return nil
}

// AllRules yields every rule. Callers must not rely on the order.
func (s *RuleStore) AllRules() iter.Seq[Rule] {
	snapshot := s.Rules()
	return func(yield func(Rule) bool) {
		for _, r := range snapshot {
			if !yield(r) {
				return
			}
		}
	}
}

// Rules returns a copy of the rules in insertion order.
func (s *RuleStore) Rules() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rules)
}

// Lookup returns the rule stored for pattern, if any.
func (s *RuleStore) Lookup(pattern string) (Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[NormalizePattern(pattern)]
	if !ok {
		return Rule{}, false
	}
	return s.rules[i], true
}

// Len returns the number of rules.
func (s *RuleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Categories returns the distinct categories in use, sorted.
func (s *RuleStore) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool, len(s.rules))
	var out []string
	for _, r := range s.rules {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	slices.Sort(out)
	return out
}

// Dirty reports whether rules were added since the last MarkClean.
func (s *RuleStore) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// MarkClean is called after the store has been persisted.
func (s *RuleStore) MarkClean() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}
