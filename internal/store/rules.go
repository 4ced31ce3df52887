package store

import (
	"errors"
	"fmt"

	"fjacquet/txn-categorizer/internal/categorizer"
	"fjacquet/txn-categorizer/internal/logging"
)

// LoadRuleStore builds a RuleStore from repo. A missing table is seeded with
// DefaultRules when seed is set; the seeds stay dirty so the next save writes
// them out. Conflicting rows keep the first mapping and are logged.
func LoadRuleStore(repo RuleRepository, seed bool, logger logging.Logger) (*categorizer.RuleStore, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	records, exists, err := repo.LoadRules()
	if err != nil {
		return nil, err
	}

	rs := categorizer.NewRuleStore()
	if !exists {
		if !seed {
			return rs, nil
		}
		for _, r := range DefaultRules {
			if err := rs.AddRule(r.Keyword, r.Category); err != nil {
				return nil, fmt.Errorf("store: seed rule %q: %w", r.Keyword, err)
			}
		}
		logger.Info("Rule table not found, seeded default rules",
			logging.Field{Key: logging.FieldCount, Value: rs.Len()})
		return rs, nil
	}

	for i, r := range records {
		err := rs.AddRule(r.Keyword, r.Category)
		if err == nil {
			continue
		}
		var dup *categorizer.DuplicatePatternError
		if errors.As(err, &dup) || errors.Is(err, categorizer.ErrInvalidRule) {
			logger.WithError(err).Warn("Skipping rule",
				logging.Field{Key: logging.FieldLine, Value: i + 2},
				logging.Field{Key: logging.FieldPattern, Value: r.Keyword})
			continue
		}
		return nil, err
	}
	rs.MarkClean()
	return rs, nil
}

// SaveRuleStore writes rs back to repo in insertion order when it has changed.
func SaveRuleStore(repo RuleRepository, rs *categorizer.RuleStore) error {
	if !rs.Dirty() {
		return nil
	}
	rules := rs.Rules()
	records := make([]RuleRecord, len(rules))
	for i, r := range rules {
		records[i] = RuleRecord{Keyword: r.Pattern, Category: r.Category}
	}
	if err := repo.SaveRules(records); err != nil {
		return err
	}
	rs.MarkClean()
	return nil
}
