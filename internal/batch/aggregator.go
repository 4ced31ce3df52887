// Package batch folds a merged ledger into the summary tables written at the
// end of every run.
package batch

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"fjacquet/txn-categorizer/internal/logging"
	"fjacquet/txn-categorizer/internal/models"

	"github.com/shopspring/decimal"
)

// DateRange represents a date range with start and end dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s",
		dr.Start.Format(models.DateLayout),
		dr.End.Format(models.DateLayout))
}

// Aggregator produces the category, account and month summaries of a ledger.
type Aggregator struct {
	logger logging.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(logger logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Aggregator{logger: logger.WithField(logging.FieldComponent, "aggregator")}
}

// Aggregate is Summarize with logging.
func (a *Aggregator) Aggregate(txns []models.Transaction) models.Summaries {
	s := Summarize(txns)
	a.logger.Info("Aggregated ledger",
		logging.Field{Key: logging.FieldCount, Value: len(txns)},
		logging.Field{Key: "categories", Value: len(s.ByCategory)},
		logging.Field{Key: "accounts", Value: len(s.ByAccount)},
		logging.Field{Key: "months", Value: len(s.ByMonth)})
	return s
}

// Summarize groups resolved transactions three ways. Uncategorized records are
// excluded. Every table is sorted by key ascending; month keys are YYYY-MM so
// lexical order is chronological.
func Summarize(txns []models.Transaction) models.Summaries {
	byCategory := make(map[string]decimal.Decimal)
	byAccount := make(map[string]decimal.Decimal)
	byMonth := make(map[string]decimal.Decimal)

	for _, tx := range txns {
		if tx.IsUncategorized() {
			continue
		}
		add(byCategory, tx.Category, tx.Amount)
		add(byAccount, tx.Account, tx.Amount)
		add(byMonth, tx.Date.Format(models.MonthLayout), tx.Amount)
	}

	return models.Summaries{
		ByCategory: rows(byCategory),
		ByAccount:  rows(byAccount),
		ByMonth:    rows(byMonth),
	}
}

func add(m map[string]decimal.Decimal, key string, amount decimal.Decimal) {
	if cur, ok := m[key]; ok {
		m[key] = cur.Add(amount)
		return
	}
	m[key] = amount
}

func rows(m map[string]decimal.Decimal) []models.SummaryRow {
	out := make([]models.SummaryRow, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, models.SummaryRow{Key: k, Total: m[k]})
	}
	return out
}

// Uncategorized counts unknown records per normalized description, most
// frequent first, ties by description.
func Uncategorized(txns []models.Transaction) []models.UncategorizedEntry {
	counts := make(map[string]int)
	for _, tx := range txns {
		if tx.IsUncategorized() {
			counts[tx.NormalizedDescription()]++
		}
	}
	out := make([]models.UncategorizedEntry, 0, len(counts))
	for desc, n := range counts {
		out = append(out, models.UncategorizedEntry{Description: desc, Count: n})
	}
	slices.SortFunc(out, func(a, b models.UncategorizedEntry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Description, b.Description)
	})
	return out
}

// CalculateDateRange returns the earliest and latest transaction dates.
func CalculateDateRange(txns []models.Transaction) DateRange {
	if len(txns) == 0 {
		return DateRange{}
	}

	start := txns[0].Date
	end := txns[0].Date
	for _, tx := range txns {
		if tx.Date.Before(start) {
			start = tx.Date
		}
		if tx.Date.After(end) {
			end = tx.Date
		}
	}
	return DateRange{Start: start, End: end}
}
