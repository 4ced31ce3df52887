// Package parsererror defines the error types raised while reading raw
// statement files.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrMissingField marks a row without a required value.
var ErrMissingField = errors.New("missing required field")

// ParseError represents a value that could not be converted
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s='%s': %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MalformedRecordError is a raw row that cannot become a transaction. The row
// is skipped and counted; the run continues.
type MalformedRecordError struct {
	FilePath string
	Line     int
	Err      error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at %s:%d: %v", e.FilePath, e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an input file whose layout cannot be mapped to
// date, description and amount columns.
type InvalidFormatError struct {
	FilePath string
	Columns  []string
	Msg      string
}

func (e *InvalidFormatError) Error() string {
	if len(e.Columns) > 0 {
		return fmt.Sprintf("invalid format in file '%s': %s. Columns: %v", e.FilePath, e.Msg, e.Columns)
	}
	return fmt.Sprintf("invalid format in file '%s': %s", e.FilePath, e.Msg)
}
