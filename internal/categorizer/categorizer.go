// Package categorizer assigns categories to transactions. Keyword rules are
// tried first; descriptions no rule matches are handed to an Oracle (Gemini,
// an interactive prompt, or nothing) once per distinct description, and
// accepted answers become new exact rules.
package categorizer

import (
	"context"
	"errors"
	"slices"
	"strings"

	"fjacquet/txn-categorizer/internal/logging"
	"fjacquet/txn-categorizer/internal/models"
)

// Categorizer wires a RuleStore, its Matcher and an Oracle together.
type Categorizer struct {
	rules      *RuleStore
	matcher    *Matcher
	oracle     Oracle
	vocabulary []string
	logger     logging.Logger
}

// BatchResult counts what CategorizeBatch did.
type BatchResult struct {
	Matched        int
	OracleResolved int
	Unknown        int
	OracleCalls    int
	OracleFailures int
	NewRules       []Rule
	Stopped        bool
}

// NewCategorizer creates a categorizer. A nil oracle behaves like NoopOracle.
// vocabulary is offered to the oracle together with the rule categories.
func NewCategorizer(rules *RuleStore, oracle Oracle, vocabulary []string, logger logging.Logger) *Categorizer {
	if oracle == nil {
		oracle = NoopOracle{}
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Categorizer{
		rules:      rules,
		matcher:    NewMatcher(rules),
		oracle:     oracle,
		vocabulary: vocabulary,
		logger:     logger.WithField(logging.FieldComponent, "categorizer"),
	}
}

// Rules returns the underlying store.
func (c *Categorizer) Rules() *RuleStore {
	return c.rules
}

// Matcher returns the rule matcher.
func (c *Categorizer) Matcher() *Matcher {
	return c.matcher
}

// KnownCategories is the sorted union of the vocabulary and the categories
// already used by rules.
func (c *Categorizer) KnownCategories() []string {
	known := append(slices.Clone(c.vocabulary), c.rules.Categories()...)
	slices.Sort(known)
	known = slices.Compact(known)
	return slices.DeleteFunc(known, func(s string) bool {
		return strings.TrimSpace(s) == "" || models.IsUncategorized(s)
	})
}

// Categorize resolves a single description, consulting the oracle if no rule
// matches. It returns the category (possibly models.CategoryUncategorized).
func (c *Categorizer) Categorize(ctx context.Context, description string) (string, error) {
	batch := []models.Transaction{{Description: description, Category: models.CategoryUncategorized}}
	if _, err := c.CategorizeBatch(ctx, batch); err != nil {
		return models.CategoryUncategorized, err
	}
	return batch[0].Category, nil
}

// CategorizeBatch sets Category on every uncategorized transaction in txns,
// in place. Transactions that already carry a category are left alone.
//
// The oracle is asked at most once per distinct normalized description, in
// the order descriptions first appear. Oracle failures count as skips; only
// context cancellation is returned as an error.
func (c *Categorizer) CategorizeBatch(ctx context.Context, txns []models.Transaction) (BatchResult, error) {
	var res BatchResult

	pending := make(map[string][]int)
	var order []string
	for i := range txns {
		if !txns[i].IsUncategorized() {
			continue
		}
		if r, ok := c.matcher.BestRule(txns[i].Description); ok {
			txns[i].Category = r.Category
			res.Matched++
			continue
		}
		txns[i].Category = models.CategoryUncategorized
		desc := txns[i].NormalizedDescription()
		if desc == "" {
			continue
		}
		if _, seen := pending[desc]; !seen {
			order = append(order, desc)
		}
		pending[desc] = append(pending[desc], i)
	}

	for _, desc := range order {
		if res.Stopped {
			break
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		category, err := c.resolve(ctx, desc, &res)
		if err != nil {
			return res, err
		}
		if category == "" {
			continue
		}

		for _, i := range pending[desc] {
			txns[i].Category = category
		}
		res.OracleResolved += len(pending[desc])
	}

	for i := range txns {
		if txns[i].IsUncategorized() {
			res.Unknown++
		}
	}

	c.logger.Info("Categorized batch",
		logging.Field{Key: logging.FieldCount, Value: len(txns)},
		logging.Field{Key: "matched", Value: res.Matched},
		logging.Field{Key: "oracle_resolved", Value: res.OracleResolved},
		logging.Field{Key: "unknown", Value: res.Unknown},
		logging.Field{Key: "new_rules", Value: len(res.NewRules)})
	return res, nil
}

// resolve asks the oracle about one description and learns the answer. An
// empty category means the description stays unknown.
func (c *Categorizer) resolve(ctx context.Context, desc string, res *BatchResult) (string, error) {
	log := c.logger.WithFields(
		logging.Field{Key: logging.FieldDescription, Value: desc},
		logging.Field{Key: logging.FieldOracle, Value: c.oracle.Name()})

	res.OracleCalls++
	decision, err := c.oracle.Resolve(ctx, desc, c.KnownCategories())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return "", ctxErr
		}
		res.OracleFailures++
		oe := &OracleError{Oracle: c.oracle.Name(), Description: desc, Err: err}
		log.WithError(oe).Warn("Oracle failed, leaving description uncategorized")
		return "", nil
	}

	switch decision.Kind {
	case DecisionStop:
		res.Stopped = true
		log.Info("Oracle asked to stop, remaining descriptions stay uncategorized")
		return "", nil
	case DecisionSkip:
		log.Debug("Oracle skipped description")
		return "", nil
	}

	category := strings.TrimSpace(decision.Category)
	if category == "" || models.IsUncategorized(category) {
		return "", nil
	}

	c.learn(desc, category, res, log)
	return category, nil
}

// learn records an exact rule for desc. A description ending in the wildcard
// marker cannot be stored as a literal, so it is applied without a rule.
func (c *Categorizer) learn(desc, category string, res *BatchResult, log logging.Logger) {
	if strings.HasSuffix(desc, Wildcard) {
		log.Warn("Description ends with the wildcard marker, category applied without a rule",
			logging.Field{Key: logging.FieldCategory, Value: category})
		return
	}

	if err := c.rules.AddRule(desc, category); err != nil {
		var dup *DuplicatePatternError
		if errors.As(err, &dup) {
			log.WithError(err).Warn("Learned rule conflicts with an existing one")
		} else {
			log.WithError(err).Warn("Could not learn rule")
		}
		return
	}

	if r, ok := c.rules.Lookup(desc); ok {
		res.NewRules = append(res.NewRules, r)
	}
	log.Info("Learned rule", logging.Field{Key: logging.FieldCategory, Value: category})
}
