package categorizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRule(t *testing.T) {
	tests := []struct {
		name            string
		pattern         string
		category        string
		wantPattern     string
		wantSpecificity int
		wantWild        bool
		wantErr         bool
	}{
		{name: "exact literal", pattern: "WALMART", category: "Groceries", wantPattern: "WALMART", wantSpecificity: 7},
		{name: "wildcard", pattern: "NETFLIX*", category: "Entertainment", wantPattern: "NETFLIX*", wantSpecificity: 7, wantWild: true},
		{name: "normalized", pattern: "  amazon prime* ", category: " Subscriptions ", wantPattern: "AMAZON PRIME*", wantSpecificity: 12, wantWild: true},
		{name: "bare wildcard", pattern: "*", category: "Misc", wantPattern: "*", wantSpecificity: 0, wantWild: true},
		{name: "empty pattern", pattern: "  ", category: "Misc", wantErr: true},
		{name: "empty category", pattern: "FOO", category: "", wantErr: true},
		{name: "sentinel category", pattern: "FOO", category: "Uncategorized", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRule(tt.pattern, tt.category)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRule)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPattern, r.Pattern)
			assert.Equal(t, tt.wantSpecificity, r.Specificity)
			assert.Equal(t, tt.wantWild, r.Wildcard)
		})
	}
}

func TestRule_Matches(t *testing.T) {
	exact, err := NewRule("WALMART", "Groceries")
	require.NoError(t, err)
	prefix, err := NewRule("NETFLIX*", "Entertainment")
	require.NoError(t, err)

	assert.True(t, exact.Matches("WALMART"))
	assert.False(t, exact.Matches("WALMART SUPERCENTER"), "exact literal must not match as substring")
	assert.False(t, exact.Matches("MY WALMART"))

	assert.True(t, prefix.Matches("NETFLIX.COM"))
	assert.True(t, prefix.Matches("NETFLIX"))
	assert.False(t, prefix.Matches("PAY NETFLIX"))
}

func TestBetter(t *testing.T) {
	mk := func(p, c string) Rule {
		r, err := NewRule(p, c)
		require.NoError(t, err)
		return r
	}

	assert.True(t, better(mk("AMAZON PRIME*", "Subscriptions"), mk("AMAZON*", "Shopping")))
	assert.True(t, better(mk("ABCD", "X"), mk("ABCD*", "Y")), "exact beats wildcard at equal specificity")
	assert.True(t, better(mk("ABC*", "X"), mk("ABD*", "X")), "smaller pattern wins")
	assert.True(t, better(mk("ABC*", "A"), mk("ABC*", "B")), "smaller category wins")
	assert.False(t, better(mk("AMAZON*", "Shopping"), mk("AMAZON PRIME*", "Subscriptions")))
}
