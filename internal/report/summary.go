package report

import (
	"fmt"
	"io"
	"path/filepath"

	"fjacquet/txn-categorizer/internal/fileutils"
	"fjacquet/txn-categorizer/internal/logging"
	"fjacquet/txn-categorizer/internal/models"

	"github.com/gocarina/gocsv"
)

// Output file names, regenerated in full on every run.
const (
	CategorySummaryFile = "summary_by_category.csv"
	AccountSummaryFile  = "summary_by_account.csv"
	MonthSummaryFile    = "summary_by_month.csv"
	UncategorizedFile   = "uncategorized.csv"
)

type categoryRow struct {
	Category string `csv:"Category"`
	Total    string `csv:"Total"`
}

type accountRow struct {
	Account string `csv:"Account"`
	Total   string `csv:"Total"`
}

type monthRow struct {
	YearMonth string `csv:"YearMonth"`
	Total     string `csv:"Total"`
}

type uncategorizedRow struct {
	Description string `csv:"Description"`
	Count       int    `csv:"Count"`
}

// SummaryWriter is the sink for finished summary tables.
type SummaryWriter struct {
	dir    string
	logger logging.Logger
}

// NewSummaryWriter writes into dir.
func NewSummaryWriter(dir string, logger logging.Logger) *SummaryWriter {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &SummaryWriter{dir: dir, logger: logger.WithField(logging.FieldComponent, "summary_writer")}
}

// WriteSummaries writes the three summary tables and returns their paths.
func (w *SummaryWriter) WriteSummaries(s models.Summaries) ([]string, error) {
	cats := make([]categoryRow, len(s.ByCategory))
	for i, r := range s.ByCategory {
		cats[i] = categoryRow{Category: r.Key, Total: r.Total.StringFixed(2)}
	}
	accts := make([]accountRow, len(s.ByAccount))
	for i, r := range s.ByAccount {
		accts[i] = accountRow{Account: r.Key, Total: r.Total.StringFixed(2)}
	}
	months := make([]monthRow, len(s.ByMonth))
	for i, r := range s.ByMonth {
		months[i] = monthRow{YearMonth: r.Key, Total: r.Total.StringFixed(2)}
	}

	files := []struct {
		name string
		rows interface{}
	}{
		{CategorySummaryFile, cats},
		{AccountSummaryFile, accts},
		{MonthSummaryFile, months},
	}
	var written []string
	for _, f := range files {
		path := filepath.Join(w.dir, f.name)
		if err := w.writeCSV(path, f.rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteUncategorized writes the (Description, Count) list of unknown records.
func (w *SummaryWriter) WriteUncategorized(entries []models.UncategorizedEntry) (string, error) {
	rows := make([]uncategorizedRow, len(entries))
	for i, e := range entries {
		rows[i] = uncategorizedRow{Description: e.Description, Count: e.Count}
	}
	path := filepath.Join(w.dir, UncategorizedFile)
	return path, w.writeCSV(path, rows)
}

func (w *SummaryWriter) writeCSV(path string, rows interface{}) error {
	err := fileutils.AtomicWrite(path, models.PermissionDataFile, func(out io.Writer) error {
		return gocsv.Marshal(rows, out)
	})
	if err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	w.logger.Debug("Wrote summary table", logging.Field{Key: logging.FieldFile, Value: path})
	return nil
}
