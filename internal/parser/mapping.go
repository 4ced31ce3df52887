package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/txn-categorizer/internal/dateutils"
	"fjacquet/txn-categorizer/internal/parsererror"
)

// Kind tells bank statements from credit-card statements.
type Kind int

const (
	KindBank Kind = iota
	KindCredit
)

func (k Kind) String() string {
	if k == KindCredit {
		return "credit"
	}
	return "bank"
}

// Header aliases, in priority order.
var (
	dateAliases        = []string{"Transaction Date", "Date", "Posted Date", "Posting Date"}
	descriptionAliases = []string{"Description", "Description 1", "Merchant Name", "Transaction Details"}
	amountAliases      = []string{"Amount", "CAD$"}
	debitAliases       = []string{"Debit", "Withdrawal"}
	creditAliases      = []string{"Credit", "Deposit"}
	cardAliases        = []string{"Card No.", "Card Number", "Card"}
)

// creditFilenameHints mark a file as a credit-card export by name alone.
var creditFilenameHints = []string{"credit", "transaction_download"}

// Mapping locates the fields of a statement by column index; -1 means absent.
type Mapping struct {
	Kind        Kind
	Headerless  bool
	Columns     []string
	Date        int
	Description int
	Extra       int
	Amount      int
	Debit       int
	Credit      int
	Card        int
}

func newMapping() Mapping {
	return Mapping{Date: -1, Description: -1, Extra: -1, Amount: -1, Debit: -1, Credit: -1, Card: -1}
}

// DetectMapping inspects the first record of a file. It returns the mapping
// and whether that record is a header (and must be skipped).
func DetectMapping(first []string, filePath string) (Mapping, bool, error) {
	cells := cleanRecord(first)
	if len(cells) == 0 {
		return Mapping{}, false, &parsererror.InvalidFormatError{FilePath: filePath, Msg: "empty file"}
	}

	if dateutils.LooksLikeDate(cells[0]) && len(cells) <= 4 {
		m, err := headerlessMapping(len(cells), filePath)
		return m, false, err
	}

	m := newMapping()
	m.Columns = cells
	m.Date = findColumn(cells, dateAliases)
	m.Description = findColumn(cells, descriptionAliases)
	m.Amount = findColumn(cells, amountAliases)
	if m.Amount < 0 {
		m.Debit = findColumn(cells, debitAliases)
		m.Credit = findColumn(cells, creditAliases)
		if m.Debit < 0 || m.Credit < 0 {
			m.Debit, m.Credit = -1, -1
		}
	}
	m.Card = findColumn(cells, cardAliases)
	m.Kind = detectKind(filePath, m.Card >= 0)

	switch {
	case m.Date < 0:
		return m, true, &parsererror.InvalidFormatError{FilePath: filePath, Columns: cells, Msg: "no date column"}
	case m.Description < 0:
		return m, true, &parsererror.InvalidFormatError{FilePath: filePath, Columns: cells, Msg: "no description column"}
	case m.Amount < 0 && m.Debit < 0:
		return m, true, &parsererror.InvalidFormatError{FilePath: filePath, Columns: cells, Msg: "no amount or debit/credit columns"}
	}
	return m, true, nil
}

// headerlessMapping handles exports laid out as date, amount[, extra],
// description.
func headerlessMapping(n int, filePath string) (Mapping, error) {
	m := newMapping()
	m.Headerless = true
	m.Kind = detectKind(filePath, false)
	m.Date, m.Amount = 0, 1
	switch n {
	case 3:
		m.Description = 2
	case 4:
		m.Extra, m.Description = 2, 3
	default:
		return m, &parsererror.InvalidFormatError{
			FilePath: filePath,
			Msg:      fmt.Sprintf("headerless file with %d columns, expected 3 or 4", n),
		}
	}
	return m, nil
}

func detectKind(filePath string, hasCard bool) Kind {
	if hasCard {
		return KindCredit
	}
	name := strings.ToLower(filepath.Base(filePath))
	for _, hint := range creditFilenameHints {
		if strings.Contains(name, hint) {
			return KindCredit
		}
	}
	return KindBank
}

// findColumn returns the index of the first alias present, matching
// case-insensitively.
func findColumn(columns, aliases []string) int {
	for _, alias := range aliases {
		for i, c := range columns {
			if strings.EqualFold(c, alias) {
				return i
			}
		}
	}
	return -1
}

// Describe renders the mapping for the inspect command.
func (m Mapping) Describe() map[string]string {
	name := func(i int) string {
		switch {
		case i < 0:
			return "-"
		case m.Headerless || i >= len(m.Columns):
			return fmt.Sprintf("column %d", i+1)
		default:
			return m.Columns[i]
		}
	}
	d := map[string]string{
		"kind":        m.Kind.String(),
		"headerless":  fmt.Sprint(m.Headerless),
		"date":        name(m.Date),
		"description": name(m.Description),
		"card":        name(m.Card),
	}
	if m.Amount >= 0 {
		d["amount"] = name(m.Amount)
	} else {
		d["amount"] = fmt.Sprintf("%s - %s", name(m.Credit), name(m.Debit))
	}
	if m.Extra >= 0 {
		d["extra"] = name(m.Extra)
	}
	return d
}

func cleanRecord(record []string) []string {
	out := make([]string, len(record))
	for i, c := range record {
		if i == 0 {
			c = strings.TrimPrefix(c, "\ufeff")
		}
		out[i] = strings.TrimSpace(c)
	}
	return out
}
