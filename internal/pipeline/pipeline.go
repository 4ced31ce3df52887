// Package pipeline runs one categorize-and-merge pass over an input folder:
// parse statements, categorize, merge into the ledger, persist, summarize.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"fjacquet/txn-categorizer/internal/batch"
	"fjacquet/txn-categorizer/internal/categorizer"
	"fjacquet/txn-categorizer/internal/fileutils"
	"fjacquet/txn-categorizer/internal/ledger"
	"fjacquet/txn-categorizer/internal/logging"
	"fjacquet/txn-categorizer/internal/models"
	"fjacquet/txn-categorizer/internal/parser"
	"fjacquet/txn-categorizer/internal/report"
	"fjacquet/txn-categorizer/internal/store"

	"github.com/google/uuid"
)

// topUncategorized is how many unknown descriptions are logged after a run.
const topUncategorized = 10

// FileParser reads one statement file from disk.
type FileParser interface {
	ParseFile(filePath string) (parser.Result, error)
}

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Parser      FileParser
	Categorizer *categorizer.Categorizer
	Rules       store.RuleRepository
	Ledger      store.LedgerRepository
	Merger      *ledger.Merger
	Aggregator  *batch.Aggregator
	Summaries   *report.SummaryWriter
	Reports     *report.ReportGenerator
	// ReportPath is where the run report goes; empty skips it.
	ReportPath string
	// Backfill feeds unknown ledger records through categorization again.
	Backfill bool
	Logger   logging.Logger
}

// Pipeline orchestrates a run.
type Pipeline struct {
	deps   Deps
	logger logging.Logger
}

// New creates a pipeline. Merger and Aggregator default to fresh instances.
func New(deps Deps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = logging.NewDiscardLogger()
	}
	if deps.Merger == nil {
		deps.Merger = ledger.NewMerger(deps.Logger)
	}
	if deps.Aggregator == nil {
		deps.Aggregator = batch.NewAggregator(deps.Logger)
	}
	return &Pipeline{
		deps:   deps,
		logger: deps.Logger.WithField(logging.FieldComponent, "pipeline"),
	}
}

// Run processes every *.csv file in inputDir. Only a failure to load or
// persist the ledger or rules (or a cancelled ctx) returns an error; on
// cancellation nothing is written.
func (p *Pipeline) Run(ctx context.Context, inputDir string) (*models.RunReport, error) {
	start := time.Now()
	rep := &models.RunReport{RunID: uuid.NewString(), StartedAt: start.UTC()}
	log := p.logger.WithField(logging.FieldRunID, rep.RunID)
	log.Info("Starting run", logging.Field{Key: logging.FieldFile, Value: inputDir})

	raw := p.parseInputs(ctx, inputDir, rep, log)
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	existing, err := p.loadLedger(ctx, rep, log)
	if err != nil {
		return rep, err
	}

	work, settled := pending(raw, existing)
	if p.deps.Backfill {
		work = append(work, existing.Uncategorized()...)
	}

	res, err := p.deps.Categorizer.CategorizeBatch(ctx, work)
	if err != nil {
		log.WithError(err).Warn("Run cancelled during categorization, nothing persisted")
		return rep, err
	}
	rep.NewRules = len(res.NewRules)
	rep.OracleCalls = res.OracleCalls
	rep.OracleFailures = res.OracleFailures
	rep.Stopped = res.Stopped

	merged := p.deps.Merger.Merge(append(work, p.rematch(settled)...), existing)
	rep.Added = merged.Added
	rep.Resolved = merged.Resolved
	for _, w := range merged.Warnings {
		rep.Warnings = append(rep.Warnings, w.String())
	}

	if err := ctx.Err(); err != nil {
		log.WithError(err).Warn("Run cancelled before persisting, nothing written")
		return rep, err
	}

	if err := store.SaveRuleStore(p.deps.Rules, p.deps.Categorizer.Rules()); err != nil {
		return rep, fmt.Errorf("pipeline: save rules: %w", err)
	}
	if err := p.deps.Ledger.SaveLedger(ctx, merged.Ledger.Sorted()); err != nil {
		return rep, fmt.Errorf("pipeline: save ledger: %w", err)
	}

	records := merged.Ledger.Records()
	rep.LedgerSize = len(records)
	rep.Period = batch.CalculateDateRange(records).String()
	_, entries, err := p.writeOutputs(records, log)
	if err != nil {
		return rep, err
	}
	for _, e := range entries {
		rep.Unknown += e.Count
	}

	rep.Duration = time.Since(start).Round(time.Millisecond).String()
	if p.deps.ReportPath != "" && p.deps.Reports != nil {
		if err := p.deps.Reports.WriteRunReport(p.deps.ReportPath, rep); err != nil {
			log.WithError(err).Warn("Could not write run report")
		}
	}

	log.Info("Run complete",
		logging.Field{Key: "added", Value: rep.Added},
		logging.Field{Key: "resolved", Value: rep.Resolved},
		logging.Field{Key: "unknown", Value: rep.Unknown},
		logging.Field{Key: "new_rules", Value: rep.NewRules},
		logging.Field{Key: logging.FieldCount, Value: rep.LedgerSize},
		logging.Field{Key: logging.FieldDuration, Value: rep.Duration})
	return rep, nil
}

// Summarize regenerates the summary and uncategorized tables from the stored
// ledger without touching it.
func (p *Pipeline) Summarize(ctx context.Context) (models.Summaries, []models.UncategorizedEntry, error) {
	txns, err := p.deps.Ledger.LoadLedger(ctx)
	if err != nil {
		return models.Summaries{}, nil, fmt.Errorf("pipeline: load ledger: %w", err)
	}
	l, _ := ledger.FromTransactions(txns)
	return p.writeOutputs(l.Records(), p.logger)
}

// parseInputs parses every statement in inputDir. Unreadable files are logged
// and recorded in the report, never fatal.
func (p *Pipeline) parseInputs(ctx context.Context, inputDir string, rep *models.RunReport, log logging.Logger) []models.Transaction {
	if !fileutils.DirectoryExists(inputDir) {
		log.Warn("Input directory not found, no new statements",
			logging.Field{Key: logging.FieldFile, Value: inputDir})
		return nil
	}
	files, err := fileutils.ListFilesWithExtension(inputDir, ".csv")
	if err != nil {
		log.WithError(err).Error("Could not list input directory")
		return nil
	}

	var raw []models.Transaction
	for _, path := range files {
		if ctx.Err() != nil {
			return raw
		}
		fr := models.FileReport{Path: path}
		res, err := p.deps.Parser.ParseFile(path)
		if err != nil {
			fr.Error = err.Error()
			log.WithError(err).Error("Skipping unreadable file",
				logging.Field{Key: logging.FieldFile, Value: path})
			rep.Files = append(rep.Files, fr)
			continue
		}
		fr.Parsed = len(res.Transactions)
		fr.Malformed = len(res.Malformed)
		rep.Parsed += fr.Parsed
		rep.Malformed += fr.Malformed
		rep.Files = append(rep.Files, fr)
		raw = append(raw, res.Transactions...)
	}
	return raw
}

func (p *Pipeline) loadLedger(ctx context.Context, rep *models.RunReport, log logging.Logger) (*ledger.Ledger, error) {
	txns, err := p.deps.Ledger.LoadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: load ledger: %w", err)
	}
	existing, dropped := ledger.FromTransactions(txns)
	if dropped > 0 {
		msg := fmt.Sprintf("ledger held %d duplicate records, kept the first of each", dropped)
		rep.Warnings = append(rep.Warnings, msg)
		log.Warn("Duplicate identity keys in stored ledger",
			logging.Field{Key: logging.FieldCount, Value: dropped})
	}
	return existing, nil
}

// pending splits raw rows into those that still need categorizing and one
// copy of each row whose record is already settled in the ledger. Settled
// rows must not reach the oracle.
func pending(raw []models.Transaction, existing *ledger.Ledger) (work, settled []models.Transaction) {
	work = make([]models.Transaction, 0, len(raw))
	seen := make(map[string]bool)
	for _, tx := range raw {
		key := tx.IdentityKey()
		if cur, ok := existing.Get(key); ok && !cur.IsUncategorized() {
			if !seen[key] {
				seen[key] = true
				settled = append(settled, tx)
			}
			continue
		}
		work = append(work, tx)
	}
	return work, settled
}

// rematch categorizes settled rows with the rule table alone so the merge can
// report records whose rules now disagree with the ledger.
func (p *Pipeline) rematch(settled []models.Transaction) []models.Transaction {
	m := p.deps.Categorizer.Matcher()
	out := make([]models.Transaction, 0, len(settled))
	for _, tx := range settled {
		tx.Category = m.Match(tx.Description)
		out = append(out, tx)
	}
	return out
}

// writeOutputs regenerates the summary tables and the uncategorized report.
func (p *Pipeline) writeOutputs(records []models.Transaction, log logging.Logger) (models.Summaries, []models.UncategorizedEntry, error) {
	sums := p.deps.Aggregator.Aggregate(records)
	if _, err := p.deps.Summaries.WriteSummaries(sums); err != nil {
		return sums, nil, fmt.Errorf("pipeline: write summaries: %w", err)
	}

	entries := batch.Uncategorized(records)
	if _, err := p.deps.Summaries.WriteUncategorized(entries); err != nil {
		return sums, entries, fmt.Errorf("pipeline: write uncategorized report: %w", err)
	}

	for i, e := range entries {
		if i == topUncategorized {
			break
		}
		log.Info("Uncategorized",
			logging.Field{Key: logging.FieldDescription, Value: e.Description},
			logging.Field{Key: logging.FieldCount, Value: e.Count})
	}
	return sums, entries, nil
}
