package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/txn-categorizer/internal/categorizer"
	"fjacquet/txn-categorizer/internal/config"
	"fjacquet/txn-categorizer/internal/container"
	"fjacquet/txn-categorizer/internal/logging"
	"fjacquet/txn-categorizer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statements = map[string]string{
	"transaction_download.csv": "Posted Date,Card No.,Merchant Name,CAD$\n" +
		"2024-01-05,4520 **** 1522,NETFLIX.COM,15.99\n" +
		"2024-01-06,4520 **** 1522,WALMART,52.10\n" +
		"2024-01-07,4520 **** 1522,UNKNOWNSHOP,10.00\n",
	"Chequing.csv": "Date,Description,Withdrawal,Deposit\n" +
		"2024-02-01,PAYROLL ACME,,2500.00\n" +
		"2024-02-03,ENBRIDGE GAS,120.50,\n" +
		"not a date,BROKEN,1.00,\n",
	"savings.csv": "2024-02-10,5.25,INTEREST\n",
}

const seedRules = "Keyword,Category\n" +
	"NETFLIX*,Entertainment\n" +
	"WALMART,Groceries\n" +
	"PAYROLL*,Income\n"

// answers plays the oracle: ENBRIDGE GAS is learned, everything else skipped.
type answers struct{ asked []string }

func (a *answers) Name() string { return "test" }

func (a *answers) Resolve(_ context.Context, desc string, known []string) (categorizer.Decision, error) {
	a.asked = append(a.asked, desc)
	if desc == "ENBRIDGE GAS" {
		return categorizer.Accept("Utilities"), nil
	}
	return categorizer.Skip(), nil
}

func newWorkspace(t *testing.T, backend string) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Log.Level = "error"
	cfg.Log.Format = "text"
	cfg.Data.Directory = filepath.Join(root, "data")
	cfg.Data.RulesFile = "categories.csv"
	cfg.Data.LedgerFile = "all_transactions.csv"
	cfg.Data.SQLitePath = "ledger.db"
	cfg.Data.LedgerBackend = backend
	cfg.Data.ReportFile = "run_report.json"
	cfg.Input.Directory = filepath.Join(root, "input")
	cfg.Input.Delimiter = ","
	cfg.Input.CardAccounts = map[string]string{"1522": "Visa"}
	cfg.Categorization.BackfillUnknown = true

	require.NoError(t, os.MkdirAll(cfg.Input.Directory, 0o750))
	require.NoError(t, os.MkdirAll(cfg.Data.Directory, 0o750))
	for name, content := range statements {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Input.Directory, name), []byte(content), 0o600))
	}
	require.NoError(t, os.WriteFile(cfg.RulesPath(), []byte(seedRules), 0o600))
	return cfg
}

func runOnce(t *testing.T, cfg *config.Config, oracle categorizer.Oracle) *models.RunReport {
	t.Helper()
	c, err := container.NewContainer(context.Background(), cfg,
		container.WithLogger(logging.NewMockLogger()),
		container.WithOracle(oracle))
	require.NoError(t, err)
	defer func() { require.NoError(t, c.Close()) }()

	rep, err := c.GetPipeline().Run(context.Background(), cfg.Input.Directory)
	require.NoError(t, err)
	return rep
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestEndToEnd(t *testing.T) {
	for _, backend := range []string{config.BackendCSV, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := newWorkspace(t, backend)
			oracle := &answers{}

			rep := runOnce(t, cfg, oracle)

			assert.Equal(t, 6, rep.Parsed)
			assert.Equal(t, 1, rep.Malformed)
			assert.Equal(t, 6, rep.Added)
			assert.Equal(t, 1, rep.NewRules)
			assert.Equal(t, 2, rep.Unknown)
			assert.ElementsMatch(t, []string{"UNKNOWNSHOP", "ENBRIDGE GAS", "INTEREST"}, oracle.asked)

			byAccount := readFile(t, filepath.Join(cfg.SummaryDir(), "summary_by_account.csv"))
			assert.Contains(t, byAccount, "Visa,-68.09\n")
			assert.Contains(t, byAccount, "Chequing,2379.50\n")
			assert.Contains(t, byAccount, "savings,5.25\n")

			byCategory := readFile(t, filepath.Join(cfg.SummaryDir(), "summary_by_category.csv"))
			assert.Equal(t, "Category,Total\n"+
				"Entertainment,-15.99\n"+
				"Groceries,-52.10\n"+
				"Income,2500.00\n"+
				"Utilities,-120.50\n", byCategory)

			assert.Contains(t, readFile(t, cfg.RulesPath()), "ENBRIDGE GAS,Utilities\n")
			assert.FileExists(t, cfg.ReportPath())

			// second run: nothing new, the oracle only sees what is still unknown
			again := &answers{}
			rep = runOnce(t, cfg, again)
			assert.Zero(t, rep.Added)
			assert.Zero(t, rep.Resolved)
			assert.Equal(t, 6, rep.LedgerSize)
			assert.ElementsMatch(t, []string{"UNKNOWNSHOP", "INTEREST"}, again.asked)
			assert.Equal(t, byCategory, readFile(t, filepath.Join(cfg.SummaryDir(), "summary_by_category.csv")))
		})
	}
}

func TestEndToEnd_LaterRuleResolvesUnknowns(t *testing.T) {
	cfg := newWorkspace(t, config.BackendCSV)
	runOnce(t, cfg, categorizer.NoopOracle{})

	f, err := os.OpenFile(cfg.RulesPath(), os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("UNKNOWN*,Shopping\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rep := runOnce(t, cfg, categorizer.NoopOracle{})
	assert.Zero(t, rep.Added)
	assert.Equal(t, 1, rep.Resolved)

	assert.Contains(t, readFile(t, cfg.LedgerPath()), "UNKNOWNSHOP,-10.00,Visa,Shopping\n")
}
