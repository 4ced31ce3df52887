// Package models provides the data structures used throughout the application.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one statement line after parsing.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = debit
	Account     string
	Category    string
}

// IdentityKey derives the value used to detect that two records describe the
// same real-world transaction. Amounts compare by value so "-15.990" and
// "-15.99" produce the same key. Fields are length-prefixed, so no content
// can make two different tuples encode alike.
func (t Transaction) IdentityKey() string {
	h := sha256.New()
	for _, part := range []string{
		t.Date.Format(DateLayout),
		strings.TrimSpace(t.Description),
		t.Amount.String(),
		strings.TrimSpace(t.Account),
	} {
		fmt.Fprintf(h, "%d:%s", len(part), part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// IsUncategorized reports whether the category is still unresolved.
func (t Transaction) IsUncategorized() bool {
	return IsUncategorized(t.Category)
}

// NormalizedDescription is the form used for rule matching: upper case, trimmed.
func (t Transaction) NormalizedDescription() string {
	return NormalizeDescription(t.Description)
}

// IsUncategorized reports whether category is the unknown sentinel. An empty
// label read back from disk counts as unknown too.
func IsUncategorized(category string) bool {
	c := strings.TrimSpace(category)
	return c == "" || strings.EqualFold(c, CategoryUncategorized)
}

// NormalizeDescription upper-cases and trims a description.
func NormalizeDescription(description string) string {
	return strings.ToUpper(strings.TrimSpace(description))
}

// NewDate truncates t to a calendar date in UTC.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FormatAmount renders an amount with at least two decimals, keeping any extra
// precision so a written amount reads back to the same value.
func FormatAmount(d decimal.Decimal) string {
	s := d.String()
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > 2 {
		return s
	}
	return d.StringFixed(2)
}
