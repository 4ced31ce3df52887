package parsererror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	err := &ParseError{Field: "amount", Value: "abc", Err: errors.New("invalid decimal")}
	assert.Equal(t, "failed to parse amount='abc': invalid decimal", err.Error())
	assert.EqualError(t, errors.Unwrap(err), "invalid decimal")
}

func TestMalformedRecordError(t *testing.T) {
	inner := &ParseError{Field: "date", Value: "31/31/2024", Err: errors.New("bad date")}
	err := error(&MalformedRecordError{FilePath: "visa.csv", Line: 4, Err: inner})

	assert.Equal(t, "malformed record at visa.csv:4: failed to parse date='31/31/2024': bad date", err.Error())

	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, "date", pe.Field)

	missing := &MalformedRecordError{FilePath: "a.csv", Line: 2, Err: ErrMissingField}
	assert.ErrorIs(t, missing, ErrMissingField)
}

func TestInvalidFormatError(t *testing.T) {
	tests := []struct {
		name     string
		err      *InvalidFormatError
		expected string
	}{
		{
			name:     "with columns",
			err:      &InvalidFormatError{FilePath: "x.csv", Columns: []string{"Foo", "Bar"}, Msg: "no date column"},
			expected: "invalid format in file 'x.csv': no date column. Columns: [Foo Bar]",
		},
		{
			name:     "without columns",
			err:      &InvalidFormatError{FilePath: "x.csv", Msg: "empty file"},
			expected: "invalid format in file 'x.csv': empty file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}
