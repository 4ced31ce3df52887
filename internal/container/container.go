// Package container provides dependency injection for the txn-categorizer
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"fjacquet/txn-categorizer/internal/batch"
	"fjacquet/txn-categorizer/internal/categorizer"
	"fjacquet/txn-categorizer/internal/config"
	"fjacquet/txn-categorizer/internal/ledger"
	"fjacquet/txn-categorizer/internal/logging"
	"fjacquet/txn-categorizer/internal/models"
	"fjacquet/txn-categorizer/internal/parser"
	"fjacquet/txn-categorizer/internal/pipeline"
	"fjacquet/txn-categorizer/internal/report"
	"fjacquet/txn-categorizer/internal/store"
)

// Option customizes container construction, mostly for tests.
type Option func(*options)

type options struct {
	logger     logging.Logger
	oracle     categorizer.Oracle
	in         io.Reader
	out        io.Writer
	ruleRepo   store.RuleRepository
	ledgerRepo store.LedgerRepository
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithOracle replaces the oracle chosen from the configuration.
func WithOracle(oracle categorizer.Oracle) Option {
	return func(o *options) { o.oracle = oracle }
}

// WithPromptIO sets the terminal used by the interactive oracle.
func WithPromptIO(in io.Reader, out io.Writer) Option {
	return func(o *options) {
		o.in = in
		o.out = out
	}
}

// WithRuleRepository replaces the file-backed rule table.
func WithRuleRepository(r store.RuleRepository) Option {
	return func(o *options) { o.ruleRepo = r }
}

// WithLedgerRepository replaces the configured ledger backend.
func WithLedgerRepository(r store.LedgerRepository) Option {
	return func(o *options) { o.ledgerRepo = r }
}

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation; dependencies are reached through
// getter methods only.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	ruleRepo    store.RuleRepository
	ruleStore   *categorizer.RuleStore
	oracle      categorizer.Oracle
	categorizer *categorizer.Categorizer
	ledgerRepo  store.LedgerRepository
	merger      *ledger.Merger
	aggregator  *batch.Aggregator
	parser      *parser.CSVParser
	summaries   *report.SummaryWriter
	reports     *report.ReportGenerator
	pipeline    *pipeline.Pipeline
	closers     []io.Closer
}

// NewContainer creates and wires all application dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	o := options{in: os.Stdin, out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	// Create logger first as it's needed by other components
	logger := o.logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	c := &Container{logger: logger, config: cfg}

	c.ruleRepo = o.ruleRepo
	if c.ruleRepo == nil {
		c.ruleRepo = store.NewRuleFile(cfg.RulesPath(), logger)
	}
	rs, err := store.LoadRuleStore(c.ruleRepo, cfg.Categorization.SeedDefaultRules, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	c.ruleStore = rs

	c.oracle = o.oracle
	if c.oracle == nil {
		if c.oracle, err = c.buildOracle(ctx, o.in, o.out); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	c.categorizer = categorizer.NewCategorizer(rs, c.oracle, models.DefaultCategories, logger)

	c.ledgerRepo = o.ledgerRepo
	if c.ledgerRepo == nil {
		if c.ledgerRepo, err = c.openLedger(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	c.closers = append(c.closers, c.ledgerRepo)

	c.merger = ledger.NewMerger(logger)
	c.aggregator = batch.NewAggregator(logger)
	c.parser = parser.NewCSVParser(logger,
		parser.WithDelimiter(cfg.Delimiter()),
		parser.WithCardAccounts(cfg.Input.CardAccounts),
		parser.WithDefaultAccount(cfg.Input.DefaultAccount))
	c.summaries = report.NewSummaryWriter(cfg.SummaryDir(), logger)
	c.reports = report.NewReportGenerator(logger)

	c.pipeline = pipeline.New(pipeline.Deps{
		Parser:      c.parser,
		Categorizer: c.categorizer,
		Rules:       c.ruleRepo,
		Ledger:      c.ledgerRepo,
		Merger:      c.merger,
		Aggregator:  c.aggregator,
		Summaries:   c.summaries,
		Reports:     c.reports,
		ReportPath:  cfg.ReportPath(),
		Backfill:    cfg.Categorization.BackfillUnknown,
		Logger:      logger,
	})

	logger.Info("Container initialized successfully",
		logging.Field{Key: logging.FieldOracle, Value: c.oracle.Name()},
		logging.Field{Key: logging.FieldBackend, Value: cfg.Data.LedgerBackend},
		logging.Field{Key: "rules", Value: rs.Len()})

	return c, nil
}

// buildOracle picks the oracle: an interactive prompt (with Gemini suggestions
// when AI is enabled), Gemini alone, or none.
func (c *Container) buildOracle(ctx context.Context, in io.Reader, out io.Writer) (categorizer.Oracle, error) {
	var gemini categorizer.Oracle
	if c.config.AI.Enabled && c.config.AI.APIKey != "" {
		client, model, err := categorizer.NewGeminiModel(ctx, c.config.AI.APIKey, c.config.AI.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		c.closers = append(c.closers, client)
		gemini = categorizer.NewGeminiOracle(model, c.config.AI.RequestsPerMinute,
			time.Duration(c.config.AI.TimeoutSeconds)*time.Second, c.logger)
		c.logger.Info("AI categorization enabled")
	} else {
		c.logger.Info("AI categorization disabled")
	}

	switch {
	case c.config.Categorization.Interactive:
		return categorizer.NewPromptOracle(in, out, gemini, c.logger), nil
	case gemini != nil:
		return gemini, nil
	default:
		return categorizer.NoopOracle{}, nil
	}
}

func (c *Container) openLedger(ctx context.Context) (store.LedgerRepository, error) {
	switch c.config.Data.LedgerBackend {
	case config.BackendSQLite:
		l, err := store.OpenSQLiteLedger(ctx, c.config.SQLitePath(), c.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open ledger: %w", err)
		}
		return l, nil
	default:
		return store.NewLedgerFile(c.config.LedgerPath(), c.logger), nil
	}
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetCategorizer returns the categorizer.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetRuleStore returns the rule store loaded at startup.
func (c *Container) GetRuleStore() *categorizer.RuleStore {
	return c.ruleStore
}

// GetOracle returns the oracle in use; never nil.
func (c *Container) GetOracle() categorizer.Oracle {
	return c.oracle
}

// GetLedgerRepository returns the configured ledger backend.
func (c *Container) GetLedgerRepository() store.LedgerRepository {
	return c.ledgerRepo
}

// GetParser returns the statement parser.
func (c *Container) GetParser() *parser.CSVParser {
	return c.parser
}

// GetAggregator returns the summary aggregator.
func (c *Container) GetAggregator() *batch.Aggregator {
	return c.aggregator
}

// GetReportGenerator returns the run report generator.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.reports
}

// GetPipeline returns the wired pipeline.
func (c *Container) GetPipeline() *pipeline.Pipeline {
	return c.pipeline
}

// SaveRules persists the rule store if it has changed.
func (c *Container) SaveRules() error {
	return store.SaveRuleStore(c.ruleRepo, c.ruleStore)
}

// Close releases the ledger backend and the Gemini client.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	c.logger.Info("Container closed")
	return firstErr
}
