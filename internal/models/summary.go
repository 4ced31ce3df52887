package models

import "github.com/shopspring/decimal"

// SummaryRow is one (key, total) line of a group-by summary.
type SummaryRow struct {
	Key   string
	Total decimal.Decimal
}

// Summaries bundles the three independent group-bys of a ledger.
type Summaries struct {
	ByCategory []SummaryRow
	ByAccount  []SummaryRow
	ByMonth    []SummaryRow
}

// UncategorizedEntry counts ledger records still unknown for one description.
type UncategorizedEntry struct {
	Description string
	Count       int
}
