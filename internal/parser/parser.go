// Package parser turns raw bank and credit-card CSV exports into transactions.
package parser

import (
	"io"

	"fjacquet/txn-categorizer/internal/models"
	"fjacquet/txn-categorizer/internal/parsererror"
)

// Parser reads one statement. filePath names the source for account fallback
// and error messages; it is not opened.
type Parser interface {
	Parse(r io.Reader, filePath string) (Result, error)
}

// Result is everything recovered from one file. Malformed rows are reported,
// not fatal.
type Result struct {
	Transactions []models.Transaction
	Malformed    []*parsererror.MalformedRecordError
	Mapping      Mapping
}
