// Package summary handles regenerating the summary tables from the ledger
package summary

import (
	"fmt"

	"fjacquet/txn-categorizer/cmd/root"
	"fjacquet/txn-categorizer/internal/report"

	"github.com/spf13/cobra"
)

var limit int

// Cmd represents the summary command
var Cmd = &cobra.Command{
	Use:   "summary",
	Short: "Regenerate and print the summary tables from the ledger",
	Long: `Regenerate summary_by_category.csv, summary_by_account.csv,
summary_by_month.csv and uncategorized.csv from the master ledger without
reading any statements, then print the tables.`,
	Args: cobra.NoArgs,
	RunE: summaryFunc,
}

func init() {
	Cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Uncategorized descriptions to print (0 for all)")
}

func summaryFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}

	sums, unknown, err := c.GetPipeline().Summarize(cmd.Context())
	if err != nil {
		return err
	}
	report.RenderSummaries(cmd.OutOrStdout(), sums)
	report.RenderUncategorized(cmd.OutOrStdout(), unknown, limit)
	return nil
}
