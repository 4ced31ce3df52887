// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Ledger backends
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// EnvPrefix prefixes every environment override, e.g. TXNCAT_LOG_LEVEL.
const EnvPrefix = "TXNCAT"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Data struct {
		Directory     string `mapstructure:"directory" yaml:"directory"`
		RulesFile     string `mapstructure:"rules_file" yaml:"rules_file"`
		LedgerFile    string `mapstructure:"ledger_file" yaml:"ledger_file"`
		LedgerBackend string `mapstructure:"ledger_backend" yaml:"ledger_backend"`
		SQLitePath    string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
		SummaryDir    string `mapstructure:"summary_dir" yaml:"summary_dir"`
		ReportFile    string `mapstructure:"report_file" yaml:"report_file"`
	} `mapstructure:"data" yaml:"data"`

	Input struct {
		Directory      string            `mapstructure:"directory" yaml:"directory"`
		DefaultAccount string            `mapstructure:"default_account" yaml:"default_account"`
		CardAccounts   map[string]string `mapstructure:"card_accounts" yaml:"card_accounts"`
		Delimiter      string            `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"input" yaml:"input"`

	AI struct {
		Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
		Model             string `mapstructure:"model" yaml:"model"`
		RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
		TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey            string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Categorization struct {
		Interactive      bool `mapstructure:"interactive" yaml:"interactive"`
		BackfillUnknown  bool `mapstructure:"backfill_unknown" yaml:"backfill_unknown"`
		SeedDefaultRules bool `mapstructure:"seed_default_rules" yaml:"seed_default_rules"`
	} `mapstructure:"categorization" yaml:"categorization"`
}

// InitializeConfig loads configuration from the standard locations.
func InitializeConfig() (*Config, error) {
	return LoadConfig("")
}

// LoadConfig loads defaults, then configFile (or config.yaml from the standard
// locations when empty), then environment variables.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.txn-categorizer")
		v.AddConfigPath(".txn-categorizer")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. The API key is read unprefixed
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("data.directory", "data")
	v.SetDefault("data.rules_file", "categories.csv")
	v.SetDefault("data.ledger_file", "all_transactions.csv")
	v.SetDefault("data.ledger_backend", BackendCSV)
	v.SetDefault("data.sqlite_path", "ledger.db")
	v.SetDefault("data.summary_dir", "")
	v.SetDefault("data.report_file", "run_report.yaml")

	v.SetDefault("input.directory", "input")
	v.SetDefault("input.default_account", "")
	v.SetDefault("input.card_accounts", map[string]string{})
	v.SetDefault("input.delimiter", ",")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.requests_per_minute", 10)
	v.SetDefault("ai.timeout_seconds", 30)

	v.SetDefault("categorization.interactive", false)
	v.SetDefault("categorization.backfill_unknown", true)
	v.SetDefault("categorization.seed_default_rules", true)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.Input.Delimiter)) != 1 {
		return fmt.Errorf("input delimiter must be a single character, got: %q", config.Input.Delimiter)
	}

	switch config.Data.LedgerBackend {
	case BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("data.ledger_backend must be %q or %q, got: %q",
			BackendCSV, BackendSQLite, config.Data.LedgerBackend)
	}

	if config.Data.RulesFile == "" || config.Data.LedgerFile == "" {
		return fmt.Errorf("data.rules_file and data.ledger_file must be set")
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}

		if config.AI.RequestsPerMinute < 1 || config.AI.RequestsPerMinute > 1000 {
			return fmt.Errorf("ai.requests_per_minute must be between 1 and 1000, got: %d", config.AI.RequestsPerMinute)
		}

		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	for last4 := range config.Input.CardAccounts {
		if len(last4) != 4 {
			return fmt.Errorf("input.card_accounts keys must be the last 4 card digits, got: %q", last4)
		}
	}

	return nil
}

// Delimiter returns the input delimiter as a rune.
func (c *Config) Delimiter() rune {
	r := []rune(c.Input.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}

// resolve joins relative paths onto the data directory.
func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Data.Directory, path)
}

// RulesPath is the rule table location.
func (c *Config) RulesPath() string { return c.resolve(c.Data.RulesFile) }

// LedgerPath is the CSV ledger location.
func (c *Config) LedgerPath() string { return c.resolve(c.Data.LedgerFile) }

// SQLitePath is the SQLite ledger location.
func (c *Config) SQLitePath() string { return c.resolve(c.Data.SQLitePath) }

// ReportPath is where the run report is written; empty disables it.
func (c *Config) ReportPath() string { return c.resolve(c.Data.ReportFile) }

// SummaryDir is where summary tables go, defaulting to the data directory.
func (c *Config) SummaryDir() string {
	if c.Data.SummaryDir == "" {
		return c.Data.Directory
	}
	return c.resolve(c.Data.SummaryDir)
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
