package categorizer

import (
	"errors"
	"fmt"
)

// ErrInvalidRule is returned for rules with an empty pattern or category, or
// a category equal to the unknown sentinel.
var ErrInvalidRule = errors.New("invalid rule")

// DuplicatePatternError is returned by AddRule when the pattern already maps to
// a different category. The existing rule is left untouched.
type DuplicatePatternError struct {
	Pattern          string
	ExistingCategory string
	NewCategory      string
}

func (e *DuplicatePatternError) Error() string {
	return fmt.Sprintf("pattern %q already maps to %q, refusing %q",
		e.Pattern, e.ExistingCategory, e.NewCategory)
}

// OracleError wraps a failed oracle call. The categorizer treats it as a skip.
type OracleError struct {
	Oracle      string
	Description string
	Err         error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s failed for %q: %v", e.Oracle, e.Description, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}
