package budget_test

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	appErrors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/category"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
	"github.com/frahmantamala/budget-tracker/internal/expense"
	"github.com/frahmantamala/budget-tracker/internal/income"
)

// MockCategories serves a fixed set of categories.
type MockCategories struct {
	categories []*category.Category
	nextID     int64
}

func (m *MockCategories) Add(name string, parent *category.Category, p period.Period, budget string) *category.Category {
	m.nextID++
	c := &category.Category{
		ID:           m.nextID,
		Name:         name,
		Period:       p,
		BudgetAmount: decimal.RequireFromString(budget),
		IsActive:     true,
	}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	m.categories = append(m.categories, c)
	return c
}

func (m *MockCategories) ListCategories(ctx context.Context, filter category.ListFilter) ([]category.Tree, error) {
	var active []*category.Category
	for _, c := range m.categories {
		if c.IsActive || filter.IncludeInactive {
			active = append(active, c)
		}
	}
	trees := category.BuildTrees(active)
	if filter.Period == "" {
		return trees, nil
	}
	var out []category.Tree
	for _, t := range trees {
		if t.Parent.Period.String() == filter.Period {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockCategories) ActiveTrees(ctx context.Context, p period.Period) ([]category.Tree, error) {
	return m.ListCategories(ctx, category.ListFilter{Period: p.String()})
}

func (m *MockCategories) GetByName(ctx context.Context, name string) (*category.Category, error) {
	for _, c := range m.categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, appErrors.ErrCategoryNotFound
}

// MockLedger keeps expenses in memory and filters them by window.
type MockLedger struct {
	expenses []*expense.Expense
	nextID   int64
	calls    []period.Range
}

func (m *MockLedger) Spend(c *category.Category, date time.Time, amount, merchant string) {
	m.nextID++
	e := &expense.Expense{
		ID:           m.nextID,
		Date:         date,
		Amount:       decimal.RequireFromString(amount),
		CategoryID:   c.ID,
		CategoryName: c.Name,
		Description:  merchant,
	}
	m.expenses = append(m.expenses, e)
}

func (m *MockLedger) Between(ctx context.Context, r period.Range) ([]*expense.Expense, error) {
	m.calls = append(m.calls, r)
	var out []*expense.Expense
	for _, e := range m.expenses {
		if r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}

type MockIncome struct {
	sources []*income.Source
	entries []*income.Income
}

func (m *MockIncome) Between(ctx context.Context, r period.Range) ([]*income.Income, error) {
	var out []*income.Income
	for _, e := range m.entries {
		if r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockIncome) ActiveSources(ctx context.Context) ([]*income.Source, error) {
	var out []*income.Source
	for _, s := range m.sources {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
