package store

import (
	"context"
	"slices"

	"fjacquet/txn-categorizer/internal/models"
)

// MockRuleRepository is an in-memory RuleRepository for tests.
type MockRuleRepository struct {
	Rules     []RuleRecord
	Exists    bool
	LoadError error
	SaveError error
	Saves     int
}

// LoadRules returns a copy of the mock rules.
func (m *MockRuleRepository) LoadRules() ([]RuleRecord, bool, error) {
	if m.LoadError != nil {
		return nil, false, m.LoadError
	}
	return slices.Clone(m.Rules), m.Exists, nil
}

// SaveRules stores a copy of rules.
func (m *MockRuleRepository) SaveRules(rules []RuleRecord) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Rules = slices.Clone(rules)
	m.Exists = true
	m.Saves++
	return nil
}

// MockLedgerRepository is an in-memory LedgerRepository for tests.
type MockLedgerRepository struct {
	Transactions []models.Transaction
	LoadError    error
	SaveError    error
	Saves        int
	Closed       bool
}

// LoadLedger returns a copy of the mock ledger.
func (m *MockLedgerRepository) LoadLedger(ctx context.Context) ([]models.Transaction, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	return slices.Clone(m.Transactions), nil
}

// SaveLedger stores a copy of txns.
func (m *MockLedgerRepository) SaveLedger(ctx context.Context, txns []models.Transaction) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Transactions = slices.Clone(txns)
	m.Saves++
	return nil
}

// Close marks the repository closed.
func (m *MockLedgerRepository) Close() error {
	m.Closed = true
	return nil
}
