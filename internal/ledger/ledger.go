// Package ledger holds the master transaction set and merges newly parsed
// transactions into it without ever creating duplicates.
package ledger

import (
	"slices"
	"strings"

	"fjacquet/txn-categorizer/internal/models"
)

// Ledger is the deduplicated set of every transaction ever seen, keyed by
// identity key. The zero value is not usable; use New or FromTransactions.
type Ledger struct {
	records []models.Transaction
	index   map[string]int
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{index: make(map[string]int)}
}

// FromTransactions builds a ledger from persisted rows. Rows sharing an
// identity key collapse onto the first one; the number dropped is returned.
func FromTransactions(txns []models.Transaction) (*Ledger, int) {
	l := &Ledger{
		records: make([]models.Transaction, 0, len(txns)),
		index:   make(map[string]int, len(txns)),
	}
	dropped := 0
	for _, tx := range txns {
		if !l.insert(tx) {
			dropped++
		}
	}
	return l, dropped
}

func (l *Ledger) insert(tx models.Transaction) bool {
	key := tx.IdentityKey()
	if _, ok := l.index[key]; ok {
		return false
	}
	if strings.TrimSpace(tx.Category) == "" {
		tx.Category = models.CategoryUncategorized
	}
	l.index[key] = len(l.records)
	l.records = append(l.records, tx)
	return true
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Get returns the record stored under key.
func (l *Ledger) Get(key string) (models.Transaction, bool) {
	i, ok := l.index[key]
	if !ok {
		return models.Transaction{}, false
	}
	return l.records[i], true
}

// Records returns a copy of the records in insertion order.
func (l *Ledger) Records() []models.Transaction {
	return slices.Clone(l.records)
}

// Uncategorized returns copies of the records still carrying the unknown sentinel.
func (l *Ledger) Uncategorized() []models.Transaction {
	var out []models.Transaction
	for _, tx := range l.records {
		if tx.IsUncategorized() {
			out = append(out, tx)
		}
	}
	return out
}

// Clone returns an independent copy.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		records: slices.Clone(l.records),
		index:   make(map[string]int, len(l.index)),
	}
	for k, v := range l.index {
		c.index[k] = v
	}
	return c
}

// Sorted returns the records in persistence order: date, account, description,
// amount and finally identity key, so a rewrite of an unchanged ledger is
// byte-identical.
func (l *Ledger) Sorted() []models.Transaction {
	out := slices.Clone(l.records)
	slices.SortStableFunc(out, compareForPersistence)
	return out
}

func compareForPersistence(a, b models.Transaction) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := strings.Compare(a.Account, b.Account); c != 0 {
		return c
	}
	if c := strings.Compare(a.Description, b.Description); c != 0 {
		return c
	}
	if c := a.Amount.Cmp(b.Amount); c != 0 {
		return c
	}
	return strings.Compare(a.IdentityKey(), b.IdentityKey())
}
