package models

// CategoryUncategorized is the sentinel for a transaction nobody could resolve.
// It is persisted in the ledger but never reported as a summary bucket.
const CategoryUncategorized = "Uncategorized"

// DateLayout is the on-disk date format for ledger rows.
const DateLayout = "2006-01-02"

// MonthLayout is the on-disk key format for month summaries.
const MonthLayout = "2006-01"

// File permissions
const (
	PermissionDataFile  = 0644
	PermissionDirectory = 0750
)

// DefaultCategories is the category vocabulary offered to an oracle in addition
// to whatever categories already appear in the rule table.
var DefaultCategories = []string{
	"Cash Withdrawal",
	"Education",
	"Electronics",
	"Entertainment",
	"Fees",
	"Food & Dining",
	"Gifts & Donations",
	"Healthcare",
	"Home Improvement",
	"Housing & Utilities",
	"Income",
	"Insurance",
	"Personal Care",
	"Shopping",
	"Subscriptions",
	"Transfer",
	"Transportation",
	"Travel",
	"Utilities",
}
