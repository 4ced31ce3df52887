// Package inspect prints the column mapping detected for statement files
package inspect

import (
	"fmt"

	"fjacquet/txn-categorizer/cmd/root"
	"fjacquet/txn-categorizer/internal/fileutils"
	"fjacquet/txn-categorizer/internal/report"

	"github.com/spf13/cobra"
)

// Cmd represents the inspect command
var Cmd = &cobra.Command{
	Use:   "inspect [file...]",
	Short: "Show how statement CSV files will be read",
	Long: `Show the column mapping detected for statement CSV files: which columns
hold the date, description, amount (or debit/credit) and card number, and
whether the file is treated as a bank or credit-card statement.

Without arguments every CSV file in the input directory is inspected.`,
	RunE: inspectFunc,
}

func inspectFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}

	files := args
	if len(files) == 0 {
		var err error
		files, err = fileutils.ListFilesWithExtension(c.GetConfig().Input.Directory, ".csv")
		if err != nil {
			return err
		}
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No CSV files found.")
		return nil
	}

	p := c.GetParser()
	failed := 0
	for _, f := range files {
		m, err := p.Inspect(f)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", f, err)
			continue
		}
		report.RenderMapping(cmd.OutOrStdout(), f, m.Describe())
	}
	if failed == len(files) {
		return fmt.Errorf("no readable statement among %d file(s)", len(files))
	}
	return nil
}
