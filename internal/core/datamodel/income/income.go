package income

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rows are read and written with sqlx, so columns are mapped with db tags.

type IncomeSource struct {
	ID             int64           `db:"id"`
	Name           string          `db:"name"`
	ExpectedAmount decimal.Decimal `db:"expected_amount"`
	PayDay         int             `db:"pay_day"`
	IsActive       bool            `db:"is_active"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

type Income struct {
	ID            int64           `db:"id"`
	Date          time.Time       `db:"date"`
	Amount        decimal.Decimal `db:"amount"`
	SourceID      int64           `db:"source_id"`
	SourceName    string          `db:"source_name"`
	Description   string          `db:"description"`
	Notes         *string         `db:"notes"`
	BankReference *string         `db:"bank_reference"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}
