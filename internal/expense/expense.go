package expense

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	expenseDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/budget-tracker/internal/core/money"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
)

type Source string

const (
	SourceManual     Source = "MANUAL"
	SourceBankImport Source = "BANK_IMPORT"
)

// naturalKeyDescriptionLen bounds how much of the description goes into the duplicate key.
const naturalKeyDescriptionLen = 50

type Expense struct {
	ID            int64
	Date          time.Time
	Amount        decimal.Decimal
	CategoryID    int64
	CategoryName  string
	Description   string
	MerchantName  *string
	Notes         *string
	Source        Source
	BankReference *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Merchant falls back to the description when no merchant was recorded.
func (e *Expense) Merchant() string {
	if e.MerchantName != nil && strings.TrimSpace(*e.MerchantName) != "" {
		return strings.TrimSpace(*e.MerchantName)
	}
	return strings.TrimSpace(e.Description)
}

func (e *Expense) ToResponse() ExpenseResponse {
	return ExpenseResponse{
		ID:            e.ID,
		Date:          e.Date.Format(period.DateLayout),
		Amount:        money.Float(e.Amount),
		CategoryID:    e.CategoryID,
		CategoryName:  e.CategoryName,
		Description:   e.Description,
		MerchantName:  e.MerchantName,
		Notes:         e.Notes,
		Source:        string(e.Source),
		BankReference: e.BankReference,
	}
}

// NaturalKey identifies an imported transaction: the raw date and amount
// strings plus the first 50 characters of the description.
func NaturalKey(rawDate, rawAmount, description string) string {
	runes := []rune(description)
	if len(runes) > naturalKeyDescriptionLen {
		runes = runes[:naturalKeyDescriptionLen]
	}
	return strings.TrimSpace(rawDate) + "|" + strings.TrimSpace(rawAmount) + "|" + string(runes)
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:            e.ID,
		Date:          period.DateOf(e.Date),
		Amount:        e.Amount,
		CategoryID:    e.CategoryID,
		Description:   e.Description,
		MerchantName:  e.MerchantName,
		Notes:         e.Notes,
		Source:        string(e.Source),
		BankReference: e.BankReference,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:            e.ID,
		Date:          e.Date,
		Amount:        e.Amount,
		CategoryID:    e.CategoryID,
		Description:   e.Description,
		MerchantName:  e.MerchantName,
		Notes:         e.Notes,
		Source:        Source(e.Source),
		BankReference: e.BankReference,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func FromDataModelSlice(expenses []*expenseDatamodel.Expense) []*Expense {
	result := make([]*Expense, len(expenses))
	for i, e := range expenses {
		result[i] = FromDataModel(e)
	}
	return result
}

// Total sums the amounts of expenses.
func Total(expenses []*Expense) decimal.Decimal {
	amounts := make([]decimal.Decimal, len(expenses))
	for i, e := range expenses {
		amounts[i] = e.Amount
	}
	return money.Sum(amounts...)
}
