package category

import "github.com/shopspring/decimal"

type CreateCategoryDTO struct {
	Name         string          `json:"name"`
	Parent       string          `json:"parent,omitempty"`
	Period       string          `json:"period"`
	BudgetAmount decimal.Decimal `json:"budget_amount"`
}

// UpdateCategoryDTO changes only the fields that are set. An empty Parent
// moves the category to the top level.
type UpdateCategoryDTO struct {
	Name         *string          `json:"name,omitempty"`
	Parent       *string          `json:"parent,omitempty"`
	Period       *string          `json:"period,omitempty"`
	BudgetAmount *decimal.Decimal `json:"budget_amount,omitempty"`
}

type ListFilter struct {
	Period          string
	IncludeInactive bool
}

type CategoryResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	ParentID     *int64  `json:"parent_id,omitempty"`
	Period       string  `json:"period"`
	BudgetAmount float64 `json:"budget_amount"`
	IsActive     bool    `json:"is_active"`
}

type TreeResponse struct {
	CategoryResponse
	Children []CategoryResponse `json:"children"`
}

type CategoriesResponse struct {
	Categories []TreeResponse `json:"categories"`
}
