package income

import "github.com/shopspring/decimal"

type CreateSourceDTO struct {
	Name           string          `json:"name"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	PayDay         int             `json:"pay_day"`
}

type UpdateSourceDTO struct {
	Name           *string          `json:"name,omitempty"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount,omitempty"`
	PayDay         *int             `json:"pay_day,omitempty"`
	IsActive       *bool            `json:"is_active,omitempty"`
}

type CreateIncomeDTO struct {
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
	Description string          `json:"description"`
	Notes       *string         `json:"notes,omitempty"`
}

type ListFilter struct {
	From   string
	To     string
	Source string
}

type SourceResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	ExpectedAmount float64 `json:"expected_amount"`
	PayDay         int     `json:"pay_day"`
	IsActive       bool    `json:"is_active"`
}

type SourcesResponse struct {
	Sources []SourceResponse `json:"sources"`
}

type IncomeResponse struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	SourceID    int64   `json:"source_id"`
	SourceName  string  `json:"source_name"`
	Description string  `json:"description"`
	Notes       *string `json:"notes,omitempty"`
}

type IncomeListResponse struct {
	Income []IncomeResponse `json:"income"`
	Total  float64          `json:"total"`
}
