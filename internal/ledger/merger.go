package ledger

import (
	"fmt"

	"fjacquet/txn-categorizer/internal/logging"
	"fjacquet/txn-categorizer/internal/models"
)

// ConsistencyWarning reports a merge pass that resolved an already settled
// record to a different category. The settled category is kept.
type ConsistencyWarning struct {
	IdentityKey      string
	Description      string
	ExistingCategory string
	NewCategory      string
}

func (w ConsistencyWarning) String() string {
	return fmt.Sprintf("%q is settled as %q, ignoring %q",
		w.Description, w.ExistingCategory, w.NewCategory)
}

// MergeResult is the outcome of a merge. Added counts records new to the
// ledger and Resolved counts existing unknown records that got a category.
type MergeResult struct {
	Ledger   *Ledger
	Added    int
	Resolved int
	Warnings []ConsistencyWarning
}

// Merger reconciles new transactions against an existing ledger.
type Merger struct {
	logger logging.Logger
}

// NewMerger creates a merger.
func NewMerger(logger logging.Logger) *Merger {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Merger{logger: logger.WithField(logging.FieldComponent, "merger")}
}

// Merge folds newTxns into a copy of existing; existing itself is not touched.
//
// Unseen identity keys are inserted. A matching record that is still unknown
// takes the new category, which is the only mutation made to existing records.
// When both sides are resolved the existing category wins and a disagreement
// is reported as a ConsistencyWarning.
func (m *Merger) Merge(newTxns []models.Transaction, existing *Ledger) MergeResult {
	var updated *Ledger
	if existing == nil {
		updated = New()
	} else {
		updated = existing.Clone()
	}
	res := MergeResult{Ledger: updated}
	addedNow := make(map[string]bool)

	for _, tx := range newTxns {
		key := tx.IdentityKey()
		i, ok := updated.index[key]
		if !ok {
			updated.insert(tx)
			addedNow[key] = true
			res.Added++
			continue
		}

		stored := &updated.records[i]
		switch {
		case tx.IsUncategorized():
			// nothing learned
		case stored.IsUncategorized():
			stored.Category = tx.Category
			if !addedNow[key] {
				res.Resolved++
				m.logger.Debug("Backfilled category",
					logging.Field{Key: logging.FieldIdentityKey, Value: key},
					logging.Field{Key: logging.FieldCategory, Value: tx.Category})
			}
		case stored.Category != tx.Category:
			w := ConsistencyWarning{
				IdentityKey:      key,
				Description:      stored.Description,
				ExistingCategory: stored.Category,
				NewCategory:      tx.Category,
			}
			res.Warnings = append(res.Warnings, w)
			m.logger.Warn("Ledger consistency warning, keeping settled category",
				logging.Field{Key: logging.FieldIdentityKey, Value: key},
				logging.Field{Key: logging.FieldDescription, Value: stored.Description},
				logging.Field{Key: logging.FieldCategory, Value: stored.Category},
				logging.Field{Key: "rejected_category", Value: tx.Category})
		}
	}

	m.logger.Info("Merged transactions into ledger",
		logging.Field{Key: logging.FieldCount, Value: len(newTxns)},
		logging.Field{Key: "added", Value: res.Added},
		logging.Field{Key: "resolved", Value: res.Resolved},
		logging.Field{Key: "warnings", Value: len(res.Warnings)},
		logging.Field{Key: "ledger_size", Value: updated.Len()})
	return res
}
