// Package categorize handles single-description categorization commands
package categorize

import (
	"fmt"
	"strings"

	"fjacquet/txn-categorizer/cmd/root"
	"fjacquet/txn-categorizer/internal/models"

	"github.com/spf13/cobra"
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize [description]",
	Short: "Categorize a single transaction description",
	Long: `Categorize a single transaction description against the keyword rules.

If no rule matches, the configured oracle (Gemini, or the terminal prompt with
--interactive) is asked, and an accepted answer is saved as a new rule.

Example:
  txn-categorizer categorize "NETFLIX.COM 866-716-0414"`,
	Args: cobra.MinimumNArgs(1),
	RunE: categorizeFunc,
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}
	description := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	cat := c.GetCategorizer()
	if r, ok := cat.Matcher().BestRule(description); ok {
		fmt.Fprintf(out, "Category: %s (rule %s)\n", r.Category, r.Pattern)
		return nil
	}

	category, err := cat.Categorize(cmd.Context(), description)
	if err != nil {
		return fmt.Errorf("error categorizing %q: %w", description, err)
	}
	if err := c.SaveRules(); err != nil {
		return err
	}

	if models.IsUncategorized(category) {
		fmt.Fprintf(out, "Category: %s\n", models.CategoryUncategorized)
		return nil
	}
	fmt.Fprintf(out, "Category: %s (learned via %s)\n", category, c.GetOracle().Name())
	return nil
}
