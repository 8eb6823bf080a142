package rule

import (
	"time"

	categoryDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/category"
)

type CategorizationRule struct {
	ID         int64                             `gorm:"primaryKey"`
	Pattern    string                            `gorm:"column:pattern;not null"`
	MatchType  string                            `gorm:"column:match_type;not null;default:CONTAINS"`
	CategoryID int64                             `gorm:"column:category_id;not null;index"`
	Category   *categoryDatamodel.BudgetCategory `gorm:"foreignKey:CategoryID"`
	Priority   int                               `gorm:"column:priority;not null;default:0"`
	IsActive   bool                              `gorm:"column:is_active;default:true"`
	CreatedAt  time.Time                         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                         `gorm:"column:updated_at;autoUpdateTime"`
}

func (CategorizationRule) TableName() string {
	return "categorization_rules"
}
