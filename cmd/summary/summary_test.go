package summary_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/txn-categorizer/cmd/root"
	"fjacquet/txn-categorizer/cmd/summary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryCommand_Metadata(t *testing.T) {
	assert.Equal(t, "summary", summary.Cmd.Use)
	limit := summary.Cmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "n", limit.Shorthand)
	assert.Equal(t, "10", limit.DefValue)
}

func TestSummaryCommand_FromLedger(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "all_transactions.csv"), []byte(
		"Date,Description,Amount,Account,Category\n"+
			"2024-01-05,NETFLIX.COM,-15.99,Visa,Entertainment\n"+
			"2024-01-06,WALMART,-52.10,Visa,Groceries\n"+
			"2024-01-07,UNKNOWNSHOP,-10.00,Visa,Uncategorized\n"), 0o600))

	root.Init()
	root.Cmd.AddCommand(summary.Cmd)
	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetErr(&out)
	root.Cmd.SetIn(strings.NewReader(""))
	root.Cmd.SetArgs([]string{"summary", "--config", cfgPath, "-d", dir})
	require.NoError(t, root.Cmd.Execute())

	assert.Contains(t, out.String(), "-68.09")
	assert.Contains(t, out.String(), "UNKNOWNSHOP")

	byAccount, err := os.ReadFile(filepath.Join(dir, "summary_by_account.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Account,Total\nVisa,-68.09\n", string(byAccount))
}
