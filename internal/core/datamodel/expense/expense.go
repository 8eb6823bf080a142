package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID            int64           `gorm:"primaryKey"`
	Date          time.Time       `gorm:"column:date;type:date;not null;index"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	CategoryID    int64           `gorm:"column:category_id;not null;index"`
	Description   string          `gorm:"column:description;not null"`
	MerchantName  *string         `gorm:"column:merchant_name"`
	Notes         *string         `gorm:"column:notes"`
	Source        string          `gorm:"column:source;not null;default:MANUAL"`
	BankReference *string         `gorm:"column:bank_reference;uniqueIndex"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}
