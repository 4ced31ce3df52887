package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/txn-categorizer/internal/dateutils"
	"fjacquet/txn-categorizer/internal/logging"
	"fjacquet/txn-categorizer/internal/models"
	"fjacquet/txn-categorizer/internal/parsererror"

	"github.com/shopspring/decimal"
)

// CSVParser reads bank and credit-card CSV exports whose layout is detected
// from header aliases, or headerless date/amount/description files.
type CSVParser struct {
	BaseParser
	delimiter      rune
	cards          map[string]string
	defaultAccount string
}

var _ Parser = (*CSVParser)(nil)

// Option configures a CSVParser.
type Option func(*CSVParser)

// WithDelimiter sets the field separator. Zero keeps the comma.
func WithDelimiter(d rune) Option {
	return func(p *CSVParser) {
		if d != 0 {
			p.delimiter = d
		}
	}
}

// WithCardAccounts maps the last four digits of a card number to an account.
func WithCardAccounts(cards map[string]string) Option {
	return func(p *CSVParser) { p.cards = cards }
}

// WithDefaultAccount names the account of files without a card column. When
// empty, the file name is used.
func WithDefaultAccount(account string) Option {
	return func(p *CSVParser) { p.defaultAccount = strings.TrimSpace(account) }
}

// NewCSVParser creates a parser.
func NewCSVParser(logger logging.Logger, opts ...Option) *CSVParser {
	p := &CSVParser{BaseParser: NewBaseParser(logger), delimiter: ','}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile opens and parses filePath.
func (p *CSVParser) ParseFile(filePath string) (Result, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return Result{}, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			p.logger.WithError(cerr).Warn("Failed to close file",
				logging.Field{Key: logging.FieldFile, Value: filePath})
		}
	}()
	return p.Parse(f, filePath)
}

// Inspect returns the detected mapping of filePath without parsing rows.
func (p *CSVParser) Inspect(filePath string) (Mapping, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return Mapping{}, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer f.Close()

	first, err := p.newReader(f).Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Mapping{}, &parsererror.InvalidFormatError{FilePath: filePath, Msg: "empty file"}
		}
		return Mapping{}, fmt.Errorf("error reading CSV file: %w", err)
	}
	m, _, err := DetectMapping(first, filePath)
	return m, err
}

// Parse implements Parser.
func (p *CSVParser) Parse(r io.Reader, filePath string) (Result, error) {
	log := p.logger.WithField(logging.FieldFile, filePath)
	reader := p.newReader(r)

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		log.Warn("Empty statement file")
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("error reading CSV file: %w", err)
	}

	mapping, isHeader, err := DetectMapping(first, filePath)
	if err != nil {
		return Result{Mapping: mapping}, err
	}
	res := Result{Mapping: mapping}
	log.Debug("Detected column mapping",
		logging.Field{Key: "kind", Value: mapping.Kind.String()},
		logging.Field{Key: "headerless", Value: mapping.Headerless})

	handle := func(record []string, line int) {
		tx, err := p.toTransaction(cleanRecord(record), mapping, filePath)
		if err != nil {
			mre := &parsererror.MalformedRecordError{FilePath: filePath, Line: line, Err: err}
			res.Malformed = append(res.Malformed, mre)
			log.WithError(mre).Debug("Skipping malformed record",
				logging.Field{Key: logging.FieldLine, Value: line})
			return
		}
		if tx != nil {
			res.Transactions = append(res.Transactions, *tx)
		}
	}

	if !isHeader {
		handle(first, 1)
	}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.Malformed = append(res.Malformed,
					&parsererror.MalformedRecordError{FilePath: filePath, Line: pe.Line, Err: err})
				continue
			}
			return res, fmt.Errorf("error reading CSV file: %w", err)
		}
		line, _ := reader.FieldPos(0)
		handle(record, line)
	}

	log.Info("Parsed statement",
		logging.Field{Key: logging.FieldCount, Value: len(res.Transactions)},
		logging.Field{Key: "malformed", Value: len(res.Malformed)})
	return res, nil
}

func (p *CSVParser) newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = p.delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader
}

// toTransaction returns nil, nil for blank rows.
func (p *CSVParser) toTransaction(cells []string, m Mapping, filePath string) (*models.Transaction, error) {
	blank := true
	for _, c := range cells {
		if c != "" {
			blank = false
			break
		}
	}
	if blank {
		return nil, nil
	}

	get := func(i int) string {
		if i < 0 || i >= len(cells) {
			return ""
		}
		return cells[i]
	}

	rawDate := get(m.Date)
	if rawDate == "" {
		return nil, fmt.Errorf("%w: date", parsererror.ErrMissingField)
	}
	date, _, err := dateutils.ParseDate(rawDate)
	if err != nil {
		return nil, &parsererror.ParseError{Field: "date", Value: rawDate, Err: err}
	}

	description := get(m.Description)
	if extra := get(m.Extra); extra != "" {
		description = strings.TrimSpace(extra + " " + description)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description", parsererror.ErrMissingField)
	}

	amount, err := p.amount(get, m)
	if err != nil {
		return nil, err
	}

	return &models.Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Account:     p.account(get(m.Card), m, filePath),
		Category:    models.CategoryUncategorized,
	}, nil
}

// amount reads a single amount column, or credit minus debit. Credit-card
// exports list purchases as positive numbers, so a single amount column in a
// credit file is always stored as a debit.
func (p *CSVParser) amount(get func(int) string, m Mapping) (decimal.Decimal, error) {
	if m.Amount >= 0 {
		raw := get(m.Amount)
		if raw == "" {
			return decimal.Zero, fmt.Errorf("%w: amount", parsererror.ErrMissingField)
		}
		v, err := ParseAmount(raw)
		if err != nil {
			return decimal.Zero, &parsererror.ParseError{Field: "amount", Value: raw, Err: err}
		}
		if m.Kind == KindCredit {
			v = v.Abs().Neg()
		}
		return v, nil
	}

	rawDebit, rawCredit := get(m.Debit), get(m.Credit)
	if rawDebit == "" && rawCredit == "" {
		return decimal.Zero, fmt.Errorf("%w: debit/credit", parsererror.ErrMissingField)
	}
	debit, credit := decimal.Zero, decimal.Zero
	var err error
	if rawDebit != "" {
		if debit, err = ParseAmount(rawDebit); err != nil {
			return decimal.Zero, &parsererror.ParseError{Field: "debit", Value: rawDebit, Err: err}
		}
	}
	if rawCredit != "" {
		if credit, err = ParseAmount(rawCredit); err != nil {
			return decimal.Zero, &parsererror.ParseError{Field: "credit", Value: rawCredit, Err: err}
		}
	}
	return credit.Sub(debit), nil
}

func (p *CSVParser) account(card string, m Mapping, filePath string) string {
	if m.Card >= 0 {
		return CardAccount(card, p.cards)
	}
	if p.defaultAccount != "" {
		return p.defaultAccount
	}
	return AccountFromFilename(filePath)
}

// ParseAmount accepts currency symbols, thousands separators and accounting
// style parentheses for negatives.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "", "CAD", "", "USD", "").Replace(s)
	if strings.HasSuffix(s, "-") {
		negative = !negative
		s = strings.TrimSuffix(s, "-")
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		v = v.Neg()
	}
	return v, nil
}
