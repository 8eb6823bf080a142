package category

import (
	"time"

	"github.com/shopspring/decimal"
)

type BudgetCategory struct {
	ID           int64           `gorm:"primaryKey"`
	Name         string          `gorm:"column:name;uniqueIndex;not null"`
	ParentID     *int64          `gorm:"column:parent_id;index"`
	Period       string          `gorm:"column:period;not null;default:MONTHLY"`
	BudgetAmount decimal.Decimal `gorm:"column:budget_amount;type:numeric(14,2);not null;default:0"`
	IsActive     bool            `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (BudgetCategory) TableName() string {
	return "budget_categories"
}
