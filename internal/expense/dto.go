package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateExpenseDTO struct {
	Date         string          `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category,omitempty"`
	Description  string          `json:"description"`
	MerchantName *string         `json:"merchant_name,omitempty"`
	Notes        *string         `json:"notes,omitempty"`
}

type UpdateExpenseDTO struct {
	Date         *string          `json:"date,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Category     *string          `json:"category,omitempty"`
	Description  *string          `json:"description,omitempty"`
	MerchantName *string          `json:"merchant_name,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

// ListFilter is the caller-facing query; names and strings are resolved by the service.
type ListFilter struct {
	From      string
	To        string
	Category  string
	MinAmount string
	MaxAmount string
	Source    string
	Search    string
	Limit     int
	Offset    int
}

// Query is the ledger-level filter. Dates are inclusive calendar days.
type Query struct {
	From        *time.Time
	To          *time.Time
	CategoryIDs []int64
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	Source      Source
	Search      string
	Limit       int
	Offset      int
}

type ExpenseResponse struct {
	ID            int64   `json:"id"`
	Date          string  `json:"date"`
	Amount        float64 `json:"amount"`
	CategoryID    int64   `json:"category_id"`
	CategoryName  string  `json:"category_name,omitempty"`
	Description   string  `json:"description"`
	MerchantName  *string `json:"merchant_name,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Source        string  `json:"source"`
	BankReference *string `json:"bank_reference,omitempty"`
}

type ExpensesResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Total    float64           `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}
