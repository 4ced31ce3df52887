// Package store persists the keyword rule table and the master ledger. Every
// save replaces the previous content atomically.
package store

import (
	"context"

	"fjacquet/txn-categorizer/internal/models"
)

// RuleRecord is one persisted (keyword, category) row.
type RuleRecord struct {
	Keyword  string `csv:"Keyword" yaml:"keyword"`
	Category string `csv:"Category" yaml:"category"`
}

// RuleRepository loads and saves the rule table.
type RuleRepository interface {
	// LoadRules returns the stored rules and whether the table existed.
	LoadRules() ([]RuleRecord, bool, error)
	SaveRules(rules []RuleRecord) error
}

// LedgerRepository loads and saves the master ledger.
type LedgerRepository interface {
	LoadLedger(ctx context.Context) ([]models.Transaction, error)
	SaveLedger(ctx context.Context, txns []models.Transaction) error
	Close() error
}

// DefaultRules seeds a rule table that does not exist yet. They are prefix
// rules so that statement suffixes such as branch numbers still match.
var DefaultRules = []RuleRecord{
	{Keyword: "PAYROLL*", Category: "Income"},
	{Keyword: "DEPOSIT*", Category: "Income"},
	{Keyword: "INTERAC E-TRANSFER*", Category: "Transfer"},
	{Keyword: "WITHDRAWAL*", Category: "Cash Withdrawal"},
	{Keyword: "BILL PAYMENT*", Category: "Housing & Utilities"},
	{Keyword: "ENBRIDGE*", Category: "Utilities"},
	{Keyword: "WATER*", Category: "Utilities"},
	{Keyword: "PAYPAL*", Category: "Shopping"},
	{Keyword: "UBER*", Category: "Transportation"},
	{Keyword: "ACT*VILLED*", Category: "Utilities"},
	{Keyword: "CITY OF OTTAWA PARKING*", Category: "Transportation"},
	{Keyword: "IKEA*", Category: "Shopping"},
	{Keyword: "PRINCESS AUTO*", Category: "Shopping"},
	{Keyword: "CANADA COMPUTERS*", Category: "Electronics"},
	{Keyword: "STARBUCKS*", Category: "Food & Dining"},
	{Keyword: "EQUATOR COFFEE*", Category: "Food & Dining"},
	{Keyword: "LCBO*", Category: "Entertainment"},
}
