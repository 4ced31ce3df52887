package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"fjacquet/txn-categorizer/internal/dateutils"
	"fjacquet/txn-categorizer/internal/fileutils"
	"fjacquet/txn-categorizer/internal/logging"
	"fjacquet/txn-categorizer/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// ledgerRow is the on-disk CSV shape of a ledger record.
type ledgerRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Account     string `csv:"Account"`
	Category    string `csv:"Category"`
}

func toLedgerRow(tx models.Transaction) ledgerRow {
	return ledgerRow{
		Date:        tx.Date.Format(models.DateLayout),
		Description: tx.Description,
		Amount:      models.FormatAmount(tx.Amount),
		Account:     tx.Account,
		Category:    tx.Category,
	}
}

func (r ledgerRow) toTransaction() (models.Transaction, error) {
	date, err := time.Parse(models.DateLayout, strings.TrimSpace(r.Date))
	if err != nil {
		// older ledgers may carry other layouts
		if date, _, err = dateutils.ParseDate(r.Date); err != nil {
			return models.Transaction{}, fmt.Errorf("date %q: %w", r.Date, err)
		}
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(r.Amount))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("amount %q: %w", r.Amount, err)
	}
	category := strings.TrimSpace(r.Category)
	if category == "" {
		category = models.CategoryUncategorized
	}
	return models.Transaction{
		Date:        date,
		Description: r.Description,
		Amount:      amount,
		Account:     r.Account,
		Category:    category,
	}, nil
}

// LedgerFile keeps the master ledger in a CSV file with the header
// Date,Description,Amount,Account,Category.
type LedgerFile struct {
	Path   string
	logger logging.Logger
}

// NewLedgerFile creates a CSV ledger store.
func NewLedgerFile(path string, logger logging.Logger) *LedgerFile {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &LedgerFile{
		Path: path,
		logger: logger.WithFields(
			logging.Field{Key: logging.FieldFile, Value: path},
			logging.Field{Key: logging.FieldBackend, Value: "csv"}),
	}
}

// LoadLedger implements LedgerRepository. A missing file is an empty ledger;
// an unreadable row is an error, since the ledger is never partially trusted.
func (f *LedgerFile) LoadLedger(ctx context.Context) ([]models.Transaction, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.logger.Info("No ledger yet, starting empty")
			return nil, nil
		}
		return nil, fmt.Errorf("store: open ledger %s: %w", f.Path, err)
	}
	defer file.Close()

	var rows []ledgerRow
	if err := gocsv.Unmarshal(file, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: parse ledger %s: %w", f.Path, err)
	}

	txns := make([]models.Transaction, 0, len(rows))
	for i, r := range rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tx, err := r.toTransaction()
		if err != nil {
			return nil, fmt.Errorf("store: ledger %s row %d: %w", f.Path, i+2, err)
		}
		txns = append(txns, tx)
	}

	f.logger.Info("Loaded ledger", logging.Field{Key: logging.FieldCount, Value: len(txns)})
	return txns, nil
}

// SaveLedger implements LedgerRepository. Rows are written in the given order.
func (f *LedgerFile) SaveLedger(ctx context.Context, txns []models.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([]ledgerRow, len(txns))
	for i, tx := range txns {
		rows[i] = toLedgerRow(tx)
	}

	err := fileutils.AtomicWrite(f.Path, models.PermissionDataFile, func(w io.Writer) error {
		return gocsv.Marshal(rows, w)
	})
	if err != nil {
		return fmt.Errorf("store: write ledger %s: %w", f.Path, err)
	}
	f.logger.Info("Saved ledger", logging.Field{Key: logging.FieldCount, Value: len(txns)})
	return nil
}

// Close implements LedgerRepository.
func (f *LedgerFile) Close() error {
	return nil
}
