// Package rules handles inspecting and editing the keyword rule table
package rules

import (
	"errors"
	"fmt"
	"strings"

	"fjacquet/txn-categorizer/cmd/root"
	"fjacquet/txn-categorizer/internal/categorizer"
	"fjacquet/txn-categorizer/internal/report"

	"github.com/spf13/cobra"
)

// Cmd represents the rules command
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "List or add keyword rules",
	Long: `List or add keyword rules.

A pattern ending in * matches every description starting with the rest of the
pattern; any other pattern must equal the description. The longest matching
pattern wins.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List keyword rules",
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

var addCmd = &cobra.Command{
	Use:   "add PATTERN CATEGORY",
	Short: "Add a keyword rule",
	Long: `Add a keyword rule. Mapping an existing pattern to a different category
is rejected.

Example:
  txn-categorizer rules add "AMAZON PRIME*" Subscriptions`,
	Args: cobra.MinimumNArgs(2),
	RunE: addFunc,
}

func init() {
	Cmd.AddCommand(listCmd, addCmd)
}

func listFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}
	rules := c.GetRuleStore().Rules()
	if len(rules) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No rules defined.")
		return nil
	}
	report.RenderRules(cmd.OutOrStdout(), rules)
	return nil
}

func addFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}
	pattern := args[0]
	category := strings.Join(args[1:], " ")

	if err := c.GetRuleStore().AddRule(pattern, category); err != nil {
		var dup *categorizer.DuplicatePatternError
		if errors.As(err, &dup) {
			return fmt.Errorf("pattern %s already maps to %s", dup.Pattern, dup.ExistingCategory)
		}
		return err
	}
	if err := c.SaveRules(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rule %s -> %s saved\n", categorizer.NormalizePattern(pattern), category)
	return nil
}
