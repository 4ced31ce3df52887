// Package root contains the root command for the application
package root

import (
	"fmt"
	"sync"

	"fjacquet/txn-categorizer/internal/config"
	"fjacquet/txn-categorizer/internal/container"
	"fjacquet/txn-categorizer/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to all commands
type CommonFlags struct {
	ConfigFile  string
	Input       string
	DataDir     string
	Interactive bool
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "txn-categorizer",
		Short: "A CLI tool to categorize bank and credit-card transactions into a master ledger.",
		Long: `txn-categorizer reads bank and credit-card CSV exports, categorizes each
transaction with keyword rules (asking Gemini or you about unknown merchants),
merges them into a deduplicated master ledger and writes spending summaries.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to txn-categorizer!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			teardown()
		},
	}

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}

	initOnce     sync.Once
	appConfig    *config.Config
	appContainer *container.Container
)

// Init initializes the root command and all flags
func Init() {
	initOnce.Do(func() {
		Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: config.yaml in $HOME/.txn-categorizer, .txn-categorizer or .)")
		Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input directory with statement CSV files")
		Cmd.PersistentFlags().StringVarP(&SharedFlags.DataDir, "data-dir", "d", "", "Directory holding the rules, ledger and summaries")
		Cmd.PersistentFlags().BoolVar(&SharedFlags.Interactive, "interactive", false, "Ask in the terminal about unknown descriptions")
	})
}

// setup loads configuration, applies flag overrides and builds the container.
func setup(cmd *cobra.Command) error {
	teardown()

	if err := config.LoadEnv(); err != nil {
		Log.WithError(err).Warn("Failed to load .env file")
	}

	cfg, err := config.LoadConfig(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if SharedFlags.Input != "" {
		cfg.Input.Directory = SharedFlags.Input
	}
	if SharedFlags.DataDir != "" {
		cfg.Data.Directory = SharedFlags.DataDir
	}
	if cmd.Flags().Changed("interactive") {
		cfg.Categorization.Interactive = SharedFlags.Interactive
	}

	Log = config.ConfigureLoggingFromConfig(cfg)

	c, err := container.NewContainer(cmd.Context(), cfg,
		container.WithLogger(logging.NewLogrusAdapterFromLogger(Log)),
		container.WithPromptIO(cmd.InOrStdin(), cmd.OutOrStdout()))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	appConfig = cfg
	appContainer = c
	return nil
}

func teardown() {
	if appContainer == nil {
		return
	}
	if err := appContainer.Close(); err != nil {
		Log.WithError(err).Warn("Failed to close resources")
	}
	appContainer = nil
}

// GetContainer returns the container built for the running command.
func GetContainer() *container.Container {
	return appContainer
}

// GetConfig returns the configuration of the running command.
func GetConfig() *config.Config {
	return appConfig
}

// GetLogrusAdapter returns the shared logger behind the logging.Logger interface.
func GetLogrusAdapter() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}
