package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLogger_DerivedLoggersShareEntries(t *testing.T) {
	root := NewMockLogger()
	child := root.WithField(FieldComponent, "merger")
	child.WithError(errors.New("boom")).Warn("conflict")
	root.Info("done")

	entries := root.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0].Level)
	assert.Equal(t, "conflict", entries[0].Message)
	assert.EqualError(t, entries[0].Error, "boom")
	assert.Equal(t, []Field{{Key: FieldComponent, Value: "merger"}}, entries[0].Fields)
	assert.True(t, root.HasEntry("INFO", "done"))
}

func TestMockLogger_ZeroValueUsable(t *testing.T) {
	var m MockLogger
	m.WithField("k", "v").Error("bad")
	assert.Len(t, m.GetEntriesByLevel("ERROR"), 1)
	m.Clear()
	assert.Empty(t, m.GetEntries())
}
