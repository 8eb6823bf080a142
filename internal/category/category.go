package category

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	categoryDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/category"
	"github.com/frahmantamala/budget-tracker/internal/core/money"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
)

type Category struct {
	ID           int64
	Name         string
	ParentID     *int64
	Period       period.Period
	BudgetAmount decimal.Decimal
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Tree is a top-level category and its direct children. Children are never
// parents themselves, so the nesting stops here.
type Tree struct {
	Parent   *Category
	Children []*Category
}

func (c *Category) IsChild() bool {
	return c.ParentID != nil
}

func (c *Category) Activate() {
	c.IsActive = true
	c.UpdatedAt = time.Now()
}

func (c *Category) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now()
}

func (c *Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		ParentID:     c.ParentID,
		Period:       c.Period.String(),
		BudgetAmount: money.Float(c.BudgetAmount),
		IsActive:     c.IsActive,
	}
}

// Categories returns the parent followed by its children.
func (t Tree) Categories() []*Category {
	out := make([]*Category, 0, len(t.Children)+1)
	out = append(out, t.Parent)
	return append(out, t.Children...)
}

// Budget is the parent's own budget plus its children's.
func (t Tree) Budget() decimal.Decimal {
	members := t.Categories()
	amounts := make([]decimal.Decimal, len(members))
	for i, c := range members {
		amounts[i] = c.BudgetAmount
	}
	return money.Sum(amounts...)
}

func (t Tree) ToResponse() TreeResponse {
	children := make([]CategoryResponse, 0, len(t.Children))
	for _, c := range t.Children {
		children = append(children, c.ToResponse())
	}
	return TreeResponse{CategoryResponse: t.Parent.ToResponse(), Children: children}
}

// BuildTrees groups categories under their parents. Children whose parent is
// not in cats are dropped. Trees and children are ordered by name.
func BuildTrees(cats []*Category) []Tree {
	byID := make(map[int64]int)
	var trees []Tree
	for _, c := range cats {
		if c.ParentID == nil {
			byID[c.ID] = len(trees)
			trees = append(trees, Tree{Parent: c})
		}
	}
	for _, c := range cats {
		if c.ParentID == nil {
			continue
		}
		if idx, ok := byID[*c.ParentID]; ok {
			trees[idx].Children = append(trees[idx].Children, c)
		}
	}

	sort.Slice(trees, func(i, j int) bool {
		return strings.ToLower(trees[i].Parent.Name) < strings.ToLower(trees[j].Parent.Name)
	})
	for _, t := range trees {
		sort.Slice(t.Children, func(i, j int) bool {
			return strings.ToLower(t.Children[i].Name) < strings.ToLower(t.Children[j].Name)
		})
	}
	return trees
}

func NewCategory(name string, p period.Period, budget decimal.Decimal, parentID *int64) *Category {
	now := time.Now()
	return &Category{
		Name:         name,
		ParentID:     parentID,
		Period:       p,
		BudgetAmount: budget,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func ToDataModel(c *Category) *categoryDatamodel.BudgetCategory {
	return &categoryDatamodel.BudgetCategory{
		ID:           c.ID,
		Name:         c.Name,
		ParentID:     c.ParentID,
		Period:       c.Period.String(),
		BudgetAmount: c.BudgetAmount,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func FromDataModel(c *categoryDatamodel.BudgetCategory) *Category {
	return &Category{
		ID:           c.ID,
		Name:         c.Name,
		ParentID:     c.ParentID,
		Period:       period.Period(c.Period),
		BudgetAmount: c.BudgetAmount,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
