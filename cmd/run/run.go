// Package run handles the full categorize-and-merge pipeline command
package run

import (
	"fmt"

	"fjacquet/txn-categorizer/cmd/root"
	"fjacquet/txn-categorizer/internal/report"

	"github.com/spf13/cobra"
)

// Cmd represents the run command
var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Categorize new statements and merge them into the ledger",
	Long: `Process every CSV statement in the input directory: categorize each
transaction, merge new records into the master ledger, resolve previously
uncategorized records and regenerate the summary tables.

Re-running over the same statements leaves the ledger unchanged.

Example:
  txn-categorizer run -i statements/ -d data/`,
	Args: cobra.NoArgs,
	RunE: runFunc,
}

func runFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}
	inputDir := c.GetConfig().Input.Directory

	rep, err := c.GetPipeline().Run(cmd.Context(), inputDir)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	report.RenderRunReport(cmd.OutOrStdout(), rep)
	if rep.Stopped {
		fmt.Fprintln(cmd.OutOrStdout(), "Categorization stopped early; remaining descriptions stay uncategorized.")
	}
	return nil
}
