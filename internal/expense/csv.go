package expense

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/core/money"
)

// ColumnMapping names the CSV header for each field. Matching is case-insensitive.
type ColumnMapping struct {
	Date        string `json:"date,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	Merchant    string `json:"merchant,omitempty"`
	Debit       string `json:"debit,omitempty"`
	Credit      string `json:"credit,omitempty"`
}

// DebitSign says which sign a single amount column uses for spending.
type DebitSign int

const (
	PositiveDebits DebitSign = iota
	NegativeDebits
)

type StatementFormat struct {
	Name       string
	Columns    ColumnMapping
	DateLayout string
	DebitSign  DebitSign
}

const FormatGeneric = "generic"

var statementFormats = map[string]StatementFormat{
	"amex": {
		Name:       "amex",
		Columns:    ColumnMapping{Date: "Date", Amount: "Amount", Description: "Description"},
		DateLayout: "02/01/2006",
	},
	"commbank": {
		Name:       "commbank",
		Columns:    ColumnMapping{Date: "Date", Amount: "Amount", Description: "Description"},
		DateLayout: "02/01/2006",
		DebitSign:  NegativeDebits,
	},
	"pocketbook": {
		Name: "pocketbook",
		Columns: ColumnMapping{
			Date:        "Transaction Date",
			Description: "Details",
			Debit:       "Debit",
			Credit:      "Credit",
			Category:    "Category",
			Subcategory: "Subcategory",
		},
		DateLayout: "02 Jan 2006",
	},
	FormatGeneric: {
		Name: FormatGeneric,
		Columns: ColumnMapping{
			Date:        "date",
			Amount:      "amount",
			Description: "description",
			Category:    "category",
			Merchant:    "merchant",
		},
		DateLayout: "2006-01-02",
	},
}

var fallbackDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"2/1/2006",
}

// LookupFormat returns a preset by name.
func LookupFormat(name string) (StatementFormat, bool) {
	f, ok := statementFormats[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// DetectFormat picks a preset from the header row.
func DetectFormat(headers []string) string {
	has := make(map[string]bool, len(headers))
	for _, h := range headers {
		has[strings.ToLower(strings.TrimSpace(h))] = true
	}
	switch {
	case has["card member"]:
		return "amex"
	case has["transaction date"] && has["debit"]:
		return "pocketbook"
	case has["date"] && has["amount"] && has["description"] && !has["category"] && !has["merchant"]:
		return "commbank"
	}
	return FormatGeneric
}

type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// StatementRow is one parsed transaction line.
type StatementRow struct {
	Line        int
	RawDate     string
	RawAmount   string
	Date        time.Time
	Amount      decimal.Decimal
	IsCredit    bool
	Description string
	Category    string
	Subcategory string
	Merchant    string
}

type ParseOptions struct {
	Format     string
	Columns    *ColumnMapping
	DateLayout string
	Location   *time.Location
}

type ParsedStatement struct {
	Format string
	Rows   []StatementRow
	Errors []RowError
}

type columnIndex struct {
	date, amount, description, category, subcategory, merchant, debit, credit int
}

func indexOf(headers map[string]int, name string) int {
	if name == "" {
		return -1
	}
	if i, ok := headers[strings.ToLower(strings.TrimSpace(name))]; ok {
		return i
	}
	return -1
}

// ParseStatement reads a CSV statement with a header row. Missing required
// columns fail the whole parse; bad rows are collected in Errors.
func ParseStatement(r io.Reader, opts ParseOptions) (*ParsedStatement, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewValidationError("CSV is empty", errors.ErrCodeInvalidCSV)
	}
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid CSV header: %v", err), errors.ErrCodeInvalidCSV)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var format StatementFormat
	switch {
	case opts.Format != "":
		f, ok := LookupFormat(opts.Format)
		if !ok {
			return nil, errors.NewValidationFieldError("format", fmt.Sprintf("unknown statement format %q", opts.Format), errors.ErrCodeInvalidCSV)
		}
		format = f
	default:
		format, _ = LookupFormat(DetectFormat(header))
	}
	if opts.Columns != nil {
		format.Columns = mergeColumns(format.Columns, *opts.Columns)
	}
	if opts.DateLayout != "" {
		format.DateLayout = opts.DateLayout
	}

	headers := make(map[string]int, len(header))
	for i, h := range header {
		headers[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cols := columnIndex{
		date:        indexOf(headers, format.Columns.Date),
		amount:      indexOf(headers, format.Columns.Amount),
		description: indexOf(headers, format.Columns.Description),
		category:    indexOf(headers, format.Columns.Category),
		subcategory: indexOf(headers, format.Columns.Subcategory),
		merchant:    indexOf(headers, format.Columns.Merchant),
		debit:       indexOf(headers, format.Columns.Debit),
		credit:      indexOf(headers, format.Columns.Credit),
	}

	var missing []errors.ValidationError
	if cols.date < 0 {
		missing = append(missing, missingColumn("date", format.Columns.Date))
	}
	if cols.description < 0 {
		missing = append(missing, missingColumn("description", format.Columns.Description))
	}
	if cols.amount < 0 && cols.debit < 0 {
		missing = append(missing, missingColumn("amount", format.Columns.Amount))
	}
	if len(missing) > 0 {
		return nil, errors.NewValidationErrors("required CSV columns are missing", errors.ErrCodeMissingColumn, missing)
	}

	out := &ParsedStatement{Format: format.Name}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if stderrors.As(err, &parseErr) {
				out.Errors = append(out.Errors, RowError{Line: parseErr.Line, Message: parseErr.Err.Error()})
				continue
			}
			return nil, errors.NewValidationError(fmt.Sprintf("invalid CSV: %v", err), errors.ErrCodeInvalidCSV)
		}
		line, _ := reader.FieldPos(0)
		if blank(record) {
			continue
		}

		row, rowErr := parseRow(record, cols, format, loc)
		if rowErr != nil {
			out.Errors = append(out.Errors, RowError{Line: line, Message: rowErr.Error()})
			continue
		}
		row.Line = line
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func mergeColumns(base, override ColumnMapping) ColumnMapping {
	pick := func(a, b string) string {
		if strings.TrimSpace(b) != "" {
			return b
		}
		return a
	}
	return ColumnMapping{
		Date:        pick(base.Date, override.Date),
		Amount:      pick(base.Amount, override.Amount),
		Description: pick(base.Description, override.Description),
		Category:    pick(base.Category, override.Category),
		Subcategory: pick(base.Subcategory, override.Subcategory),
		Merchant:    pick(base.Merchant, override.Merchant),
		Debit:       pick(base.Debit, override.Debit),
		Credit:      pick(base.Credit, override.Credit),
	}
}

func missingColumn(field, header string) errors.ValidationError {
	return errors.ValidationError{
		Field:   field,
		Message: fmt.Sprintf("CSV has no %q column for %s", header, field),
		Code:    string(errors.ErrCodeMissingColumn),
	}
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseRow(record []string, cols columnIndex, format StatementFormat, loc *time.Location) (StatementRow, error) {
	row := StatementRow{
		RawDate:     field(record, cols.date),
		Description: field(record, cols.description),
		Category:    field(record, cols.category),
		Subcategory: field(record, cols.subcategory),
		Merchant:    field(record, cols.merchant),
	}
	if row.Description == "" {
		return row, fmt.Errorf("description is empty")
	}

	date, err := ParseStatementDate(row.RawDate, format.DateLayout, loc)
	if err != nil {
		return row, err
	}
	row.Date = date

	if cols.debit >= 0 {
		debit, credit := field(record, cols.debit), field(record, cols.credit)
		switch {
		case debit != "":
			row.RawAmount = debit
		case credit != "":
			row.RawAmount = credit
			row.IsCredit = true
		default:
			if cols.amount < 0 {
				return row, fmt.Errorf("row has neither a debit nor a credit amount")
			}
		}
	}
	signed := row.RawAmount == ""
	if signed {
		row.RawAmount = field(record, cols.amount)
	}

	amount, err := money.Parse(row.RawAmount)
	if err != nil {
		return row, err
	}
	if signed {
		row.IsCredit = !isDebit(amount, format.DebitSign)
	}
	row.Amount = amount.Abs()
	return row, nil
}

// isDebit reports whether a signed amount is spending. Zero is never spending.
func isDebit(amount decimal.Decimal, sign DebitSign) bool {
	if sign == NegativeDebits {
		return amount.IsNegative()
	}
	return amount.IsPositive()
}

// ParseStatementDate tries layout first, then the common statement layouts.
func ParseStatementDate(raw, layout string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	layouts := fallbackDateLayouts
	if layout != "" {
		layouts = append([]string{layout}, fallbackDateLayouts...)
	}
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}
