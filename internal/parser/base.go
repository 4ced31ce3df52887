package parser

import (
	"fjacquet/txn-categorizer/internal/logging"
)

// BaseParser carries the logger shared by parser implementations.
type BaseParser struct {
	logger logging.Logger
}

// NewBaseParser creates a new BaseParser. A nil logger falls back to an info
// level logrus adapter.
func NewBaseParser(logger logging.Logger) BaseParser {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return BaseParser{logger: logger}
}
