package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"fjacquet/txn-categorizer/internal/categorizer"
	"fjacquet/txn-categorizer/internal/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	amountStyle = cellStyle.Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == len(headers)-1:
				return amountStyle
			default:
				return cellStyle
			}
		})
}

func summaryTable(keyHeader string, rows []models.SummaryRow) string {
	t := newTable(keyHeader, "Total")
	for _, r := range rows {
		t.Row(r.Key, r.Total.StringFixed(2))
	}
	return t.String()
}

// RenderSummaries prints the three summary tables.
func RenderSummaries(w io.Writer, s models.Summaries) {
	fmt.Fprintln(w, titleStyle.Render("By category"))
	fmt.Fprintln(w, summaryTable("Category", s.ByCategory))
	fmt.Fprintln(w, titleStyle.Render("By account"))
	fmt.Fprintln(w, summaryTable("Account", s.ByAccount))
	fmt.Fprintln(w, titleStyle.Render("By month"))
	fmt.Fprintln(w, summaryTable("Month", s.ByMonth))
}

// RenderUncategorized prints at most limit of the most frequent unknown
// descriptions. limit <= 0 prints all.
func RenderUncategorized(w io.Writer, entries []models.UncategorizedEntry, limit int) {
	if len(entries) == 0 {
		return
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	t := newTable("Uncategorized description", "Count")
	for _, e := range entries {
		t.Row(e.Description, strconv.Itoa(e.Count))
	}
	fmt.Fprintln(w, titleStyle.Render("Still uncategorized"))
	fmt.Fprintln(w, t.String())
}

// RenderRunReport prints the run counters.
func RenderRunReport(w io.Writer, r *models.RunReport) {
	t := newTable("Run "+r.RunID, "")
	t.Row("Files", strconv.Itoa(len(r.Files)))
	t.Row("Parsed", strconv.Itoa(r.Parsed))
	t.Row("Malformed", strconv.Itoa(r.Malformed))
	t.Row("Added", strconv.Itoa(r.Added))
	t.Row("Resolved", strconv.Itoa(r.Resolved))
	t.Row("Unknown", strconv.Itoa(r.Unknown))
	t.Row("New rules", strconv.Itoa(r.NewRules))
	t.Row("Ledger size", strconv.Itoa(r.LedgerSize))
	if r.Period != "" {
		t.Row("Period", r.Period)
	}
	fmt.Fprintln(w, t.String())
	for _, warning := range r.Warnings {
		fmt.Fprintln(w, lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("warning: "+warning))
	}
}

// RenderRules prints the rule table in the order given.
func RenderRules(w io.Writer, rules []categorizer.Rule) {
	t := newTable("Pattern", "Category", "Specificity")
	for _, r := range rules {
		t.Row(r.Pattern, r.Category, strconv.Itoa(r.Specificity))
	}
	fmt.Fprintln(w, t.String())
}

// RenderMapping prints a detected column mapping, one field per row.
func RenderMapping(w io.Writer, file string, fields map[string]string) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	t := newTable("Field", "Column")
	for _, k := range keys {
		t.Row(k, fields[k])
	}
	fmt.Fprintln(w, titleStyle.Render(file))
	fmt.Fprintln(w, t.String())
}
