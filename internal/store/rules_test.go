package store

import (
	"errors"
	"testing"

	"fjacquet/txn-categorizer/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRuleStore_SeedsMissingTable(t *testing.T) {
	repo := &MockRuleRepository{}

	rs, err := LoadRuleStore(repo, true, logging.NewMockLogger())
	require.NoError(t, err)

	assert.Equal(t, len(DefaultRules), rs.Len())
	assert.True(t, rs.Dirty(), "seeded rules must be written on the next save")

	require.NoError(t, SaveRuleStore(repo, rs))
	assert.Equal(t, 1, repo.Saves)
	assert.Equal(t, DefaultRules[0].Keyword, repo.Rules[0].Keyword)
	assert.False(t, rs.Dirty())
}

func TestLoadRuleStore_NoSeed(t *testing.T) {
	rs, err := LoadRuleStore(&MockRuleRepository{}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rs.Len())
}

func TestLoadRuleStore_ExistingTable(t *testing.T) {
	repo := &MockRuleRepository{
		Exists: true,
		Rules: []RuleRecord{
			{Keyword: "NETFLIX.COM", Category: "Entertainment"},
			{Keyword: "netflix.com", Category: "Subscriptions"},
			{Keyword: "", Category: "Shopping"},
			{Keyword: "AMAZON*", Category: "Shopping"},
		},
	}
	logger := logging.NewMockLogger()

	rs, err := LoadRuleStore(repo, true, logger)
	require.NoError(t, err)

	assert.Equal(t, 2, rs.Len())
	r, ok := rs.Lookup("NETFLIX.COM")
	require.True(t, ok)
	assert.Equal(t, "Entertainment", r.Category, "first mapping wins")
	assert.Len(t, logger.GetEntriesByLevel("WARN"), 2)
	assert.False(t, rs.Dirty())

	require.NoError(t, SaveRuleStore(repo, rs))
	assert.Equal(t, 0, repo.Saves, "clean store is not rewritten")
}

func TestLoadRuleStore_LoadError(t *testing.T) {
	_, err := LoadRuleStore(&MockRuleRepository{LoadError: errors.New("disk gone")}, true, nil)
	assert.Error(t, err)
}

func TestSaveRuleStore_KeepsInsertionOrder(t *testing.T) {
	repo := &MockRuleRepository{Exists: true}
	rs, err := LoadRuleStore(repo, false, nil)
	require.NoError(t, err)

	require.NoError(t, rs.AddRule("ZULU", "Shopping"))
	require.NoError(t, rs.AddRule("ALPHA", "Income"))
	require.NoError(t, SaveRuleStore(repo, rs))

	require.Len(t, repo.Rules, 2)
	assert.Equal(t, "ZULU", repo.Rules[0].Keyword)
	assert.Equal(t, "ALPHA", repo.Rules[1].Keyword)
}

func TestSaveRuleStore_PropagatesError(t *testing.T) {
	repo := &MockRuleRepository{Exists: true, SaveError: errors.New("read-only")}
	rs, err := LoadRuleStore(repo, false, nil)
	require.NoError(t, err)
	require.NoError(t, rs.AddRule("ZULU", "Shopping"))

	assert.Error(t, SaveRuleStore(repo, rs))
	assert.True(t, rs.Dirty())
}
