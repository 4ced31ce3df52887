package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/txn-categorizer/internal/categorizer"
	"fjacquet/txn-categorizer/internal/logging"
	"fjacquet/txn-categorizer/internal/models"
	"fjacquet/txn-categorizer/internal/parser"
	"fjacquet/txn-categorizer/internal/report"
	"fjacquet/txn-categorizer/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const visaStatement = "Date,Description,Amount\n" +
	"2024-01-05,NETFLIX.COM,-15.99\n" +
	"2024-01-06,WALMART,-52.10\n" +
	"2024-01-07,UNKNOWNSHOP,-10.00\n"

type fixture struct {
	inputDir string
	outDir   string
	rules    *store.MockRuleRepository
	ledger   *store.MockLedgerRepository
	logger   *logging.MockLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		inputDir: filepath.Join(root, "input"),
		outDir:   filepath.Join(root, "data"),
		rules: &store.MockRuleRepository{
			Exists: true,
			Rules: []store.RuleRecord{
				{Keyword: "NETFLIX*", Category: "Entertainment"},
				{Keyword: "WALMART", Category: "Groceries"},
			},
		},
		ledger: &store.MockLedgerRepository{},
		logger: logging.NewMockLogger(),
	}
	require.NoError(t, os.MkdirAll(f.inputDir, 0o750))
	f.writeInput(t, "Visa.csv", visaStatement)
	return f
}

func (f *fixture) writeInput(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.inputDir, name), []byte(content), 0o600))
}

func (f *fixture) pipeline(t *testing.T, oracle categorizer.Oracle, backfill bool) *Pipeline {
	t.Helper()
	rs, err := store.LoadRuleStore(f.rules, false, f.logger)
	require.NoError(t, err)
	return New(Deps{
		Parser:      parser.NewCSVParser(f.logger),
		Categorizer: categorizer.NewCategorizer(rs, oracle, models.DefaultCategories, f.logger),
		Rules:       f.rules,
		Ledger:      f.ledger,
		Summaries:   report.NewSummaryWriter(f.outDir, f.logger),
		Reports:     report.NewReportGenerator(f.logger),
		ReportPath:  filepath.Join(f.outDir, "run_report.yaml"),
		Backfill:    backfill,
		Logger:      f.logger,
	})
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.outDir, name))
	require.NoError(t, err)
	return string(data)
}

func TestRun_Scenario(t *testing.T) {
	f := newFixture(t)

	rep, err := f.pipeline(t, nil, true).Run(context.Background(), f.inputDir)
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 3, rep.Parsed)
	assert.Equal(t, 3, rep.Added)
	assert.Equal(t, 1, rep.Unknown)
	assert.Equal(t, 3, rep.LedgerSize)
	assert.Equal(t, "2024-01-05_2024-01-07", rep.Period)
	require.Len(t, rep.Files, 1)

	require.Len(t, f.ledger.Transactions, 3)
	assert.Equal(t, "Entertainment", f.ledger.Transactions[0].Category)
	assert.Equal(t, "Groceries", f.ledger.Transactions[1].Category)
	assert.Equal(t, models.CategoryUncategorized, f.ledger.Transactions[2].Category)

	assert.Equal(t, "Account,Total\nVisa,-68.09\n", f.read(t, report.AccountSummaryFile))
	assert.Equal(t, "Category,Total\nEntertainment,-15.99\nGroceries,-52.10\n", f.read(t, report.CategorySummaryFile))
	assert.Equal(t, "YearMonth,Total\n2024-01,-68.09\n", f.read(t, report.MonthSummaryFile))
	assert.Equal(t, "Description,Count\nUNKNOWNSHOP,1\n", f.read(t, report.UncategorizedFile))
	assert.Contains(t, f.read(t, "run_report.yaml"), "run_id: "+rep.RunID)

	assert.Equal(t, 0, f.rules.Saves, "no rule learned, table untouched")
}

func TestRun_RerunIsStable(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, nil, true)

	_, err := p.Run(context.Background(), f.inputDir)
	require.NoError(t, err)
	firstLedger := append([]models.Transaction(nil), f.ledger.Transactions...)
	firstSummary := f.read(t, report.CategorySummaryFile)

	rep, err := p.Run(context.Background(), f.inputDir)
	require.NoError(t, err)

	assert.Equal(t, 0, rep.Added)
	assert.Equal(t, 0, rep.Resolved)
	assert.Empty(t, rep.Warnings)
	assert.Equal(t, firstLedger, f.ledger.Transactions)
	assert.Equal(t, firstSummary, f.read(t, report.CategorySummaryFile))
}

func TestRun_BackfillResolvesStoredUnknowns(t *testing.T) {
	f := newFixture(t)
	_, err := f.pipeline(t, nil, true).Run(context.Background(), f.inputDir)
	require.NoError(t, err)

	// the statement is gone; only the ledger remembers UNKNOWNSHOP
	require.NoError(t, os.Remove(filepath.Join(f.inputDir, "Visa.csv")))

	var asked []string
	oracle := categorizer.OracleFunc(func(_ context.Context, desc string, _ []string) (categorizer.Decision, error) {
		asked = append(asked, desc)
		return categorizer.Accept("Shopping"), nil
	})

	rep, err := f.pipeline(t, oracle, true).Run(context.Background(), f.inputDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"UNKNOWNSHOP"}, asked)
	assert.Equal(t, 0, rep.Added)
	assert.Equal(t, 1, rep.Resolved)
	assert.Equal(t, 1, rep.NewRules)
	assert.Equal(t, 0, rep.Unknown)
	assert.Equal(t, "Shopping", f.ledger.Transactions[2].Category)

	require.Equal(t, 1, f.rules.Saves)
	assert.Contains(t, f.rules.Rules, store.RuleRecord{Keyword: "UNKNOWNSHOP", Category: "Shopping"})
	assert.Equal(t, "Description,Count\n", f.read(t, report.UncategorizedFile))
}

func TestRun_NoBackfill(t *testing.T) {
	f := newFixture(t)
	_, err := f.pipeline(t, nil, true).Run(context.Background(), f.inputDir)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(f.inputDir, "Visa.csv")))

	calls := 0
	oracle := categorizer.OracleFunc(func(context.Context, string, []string) (categorizer.Decision, error) {
		calls++
		return categorizer.Accept("Shopping"), nil
	})
	rep, err := f.pipeline(t, oracle, false).Run(context.Background(), f.inputDir)
	require.NoError(t, err)

	assert.Zero(t, calls)
	assert.Equal(t, 1, rep.Unknown)
}

func TestRun_SettledRowsNeverReachOracle(t *testing.T) {
	f := newFixture(t)
	_, err := f.pipeline(t, nil, true).Run(context.Background(), f.inputDir)
	require.NoError(t, err)

	var asked []string
	oracle := categorizer.OracleFunc(func(_ context.Context, desc string, _ []string) (categorizer.Decision, error) {
		asked = append(asked, desc)
		return categorizer.Skip(), nil
	})
	_, err = f.pipeline(t, oracle, true).Run(context.Background(), f.inputDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"UNKNOWNSHOP"}, asked, "asked once even though it is both new and backfilled")
}

func TestRun_RuleDisagreeingWithLedgerWarns(t *testing.T) {
	f := newFixture(t)
	_, err := f.pipeline(t, nil, true).Run(context.Background(), f.inputDir)
	require.NoError(t, err)

	f.rules.Rules[1].Category = "Shopping"
	oracle := categorizer.OracleFunc(func(_ context.Context, desc string, _ []string) (categorizer.Decision, error) {
		assert.NotEqual(t, "WALMART", desc, "settled rows stay away from the oracle")
		return categorizer.Skip(), nil
	})
	rep, err := f.pipeline(t, oracle, true).Run(context.Background(), f.inputDir)
	require.NoError(t, err)

	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], `"WALMART" is settled as "Groceries", ignoring "Shopping"`)
	assert.Equal(t, "Groceries", f.ledger.Transactions[1].Category, "settled category kept")
	assert.Zero(t, rep.Added)
	assert.Zero(t, rep.Resolved)
}

func TestRun_MalformedAndUnreadableFiles(t *testing.T) {
	f := newFixture(t)
	f.writeInput(t, "Chequing.csv", "Date,Description,Amount\n2024-02-01,PAYROLL ACME,abc\n2024-02-02,PAYROLL ACME,2500.00\n")
	f.writeInput(t, "notes.csv", "foo,bar\nx,y\n")
	f.writeInput(t, "readme.txt", "ignored")

	rep, err := f.pipeline(t, nil, true).Run(context.Background(), f.inputDir)
	require.NoError(t, err)

	require.Len(t, rep.Files, 3)
	assert.Equal(t, 4, rep.Parsed)
	assert.Equal(t, 1, rep.Malformed)
	assert.NotEmpty(t, rep.Files[2].Error, "notes.csv has no recognizable columns")
	assert.Equal(t, 4, rep.LedgerSize)
}

func TestRun_MissingInputDirStillSummarizes(t *testing.T) {
	f := newFixture(t)

	rep, err := f.pipeline(t, nil, true).Run(context.Background(), filepath.Join(f.inputDir, "absent"))
	require.NoError(t, err)
	assert.Zero(t, rep.Added)
	assert.Equal(t, "Category,Total\n", f.read(t, report.CategorySummaryFile))
}

func TestRun_PersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.ledger.SaveError = errors.New("disk full")

	_, err := f.pipeline(t, nil, true).Run(context.Background(), f.inputDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save ledger")
	assert.NoFileExists(t, filepath.Join(f.outDir, report.CategorySummaryFile))
}

func TestRun_LoadFailure(t *testing.T) {
	f := newFixture(t)
	f.ledger.LoadError = errors.New("corrupt row")

	_, err := f.pipeline(t, nil, true).Run(context.Background(), f.inputDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load ledger")
	assert.Zero(t, f.ledger.Saves)
}

func TestRun_CancelledWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	oracle := categorizer.OracleFunc(func(ctx context.Context, _ string, _ []string) (categorizer.Decision, error) {
		cancel()
		return categorizer.Skip(), ctx.Err()
	})

	_, err := f.pipeline(t, oracle, true).Run(ctx, f.inputDir)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.ledger.Saves)
	assert.Zero(t, f.rules.Saves)
	assert.NoFileExists(t, filepath.Join(f.outDir, report.CategorySummaryFile))
}

func TestSummarize(t *testing.T) {
	f := newFixture(t)
	_, err := f.pipeline(t, nil, true).Run(context.Background(), f.inputDir)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(f.outDir, report.AccountSummaryFile)))

	sums, unknown, err := f.pipeline(t, nil, true).Summarize(context.Background())
	require.NoError(t, err)
	require.Len(t, unknown, 1)
	assert.Equal(t, "UNKNOWNSHOP", unknown[0].Description)

	require.Len(t, sums.ByAccount, 1)
	assert.Equal(t, "-68.09", sums.ByAccount[0].Total.StringFixed(2))
	assert.FileExists(t, filepath.Join(f.outDir, report.AccountSummaryFile))
	assert.Equal(t, 1, f.ledger.Saves, "summarize does not rewrite the ledger")
}
