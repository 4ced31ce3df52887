package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"fjacquet/txn-categorizer/cmd/categorize"
	"fjacquet/txn-categorizer/cmd/inspect"
	"fjacquet/txn-categorizer/cmd/root"
	"fjacquet/txn-categorizer/cmd/rules"
	"fjacquet/txn-categorizer/cmd/run"
	"fjacquet/txn-categorizer/cmd/summary"
	"fjacquet/txn-categorizer/internal/config"

	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	_ = config.LoadEnv()

	// 2. Configure global log level before any logger is created
	configureLogLevelDirectly()

	// 3. Now that logging is configured, initialize root command
	root.Init()

	// 4. Add all subcommands
	root.Cmd.AddCommand(run.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(rules.Cmd)
	root.Cmd.AddCommand(summary.Cmd)
	root.Cmd.AddCommand(inspect.Cmd)
}

// configureLogLevelDirectly sets the global logrus level from LOG_LEVEL.
func configureLogLevelDirectly() {
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info"
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	root.Log.SetLevel(logLevel)
}

func main() {
	// Ctrl-C cancels pending oracle calls; nothing is persisted after that
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
