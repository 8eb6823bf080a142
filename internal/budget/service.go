package budget

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/category"
	"github.com/frahmantamala/budget-tracker/internal/core/common/validation"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
	"github.com/frahmantamala/budget-tracker/internal/expense"
	"github.com/frahmantamala/budget-tracker/internal/income"
)

type CategoryStore interface {
	ListCategories(ctx context.Context, filter category.ListFilter) ([]category.Tree, error)
	ActiveTrees(ctx context.Context, p period.Period) ([]category.Tree, error)
	GetByName(ctx context.Context, name string) (*category.Category, error)
}

type ExpenseLedger interface {
	Between(ctx context.Context, r period.Range) ([]*expense.Expense, error)
}

type IncomeLedger interface {
	Between(ctx context.Context, r period.Range) ([]*income.Income, error)
	ActiveSources(ctx context.Context) ([]*income.Source, error)
}

// Service computes budget analytics. It only reads from its collaborators.
type Service struct {
	categories CategoryStore
	expenses   ExpenseLedger
	income     IncomeLedger
	settings   Settings
	now        func() time.Time
	logger     *slog.Logger
}

type Option func(*Service)

// WithClock replaces the wall clock used for "today" and the current year.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(categories CategoryStore, expenses ExpenseLedger, income IncomeLedger, settings Settings, logger *slog.Logger, opts ...Option) *Service {
	if settings.Location == nil {
		settings.Location = time.Local
	}
	s := &Service{
		categories: categories,
		expenses:   expenses,
		income:     income,
		settings:   settings,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() time.Time {
	return s.now().In(s.settings.Location)
}

// window parses the period label and optional anchor date and resolves the
// calendar window they select.
func (s *Service) window(rawPeriod, rawDate string) (period.Period, period.Range, error) {
	if strings.TrimSpace(rawPeriod) == "" {
		rawPeriod = period.Monthly.String()
	}
	p, appErr := validation.ParsePeriod("period", rawPeriod)
	if appErr != nil {
		return "", period.Range{}, appErr
	}

	anchor := s.today()
	parsed, appErr := validation.ParseDate("date", rawDate, s.settings.Location)
	if appErr != nil {
		return "", period.Range{}, appErr
	}
	if parsed != nil {
		anchor = *parsed
	}

	r, err := period.Resolve(p, anchor)
	if err != nil {
		return "", period.Range{}, errors.NewValidationFieldError("period", err.Error(), errors.ErrCodeInvalidPeriod)
	}
	return p, r, nil
}

// spentByCategory sums expenses per category id.
func spentByCategory(expenses []*expense.Expense) map[int64]decimal.Decimal {
	out := make(map[int64]decimal.Decimal)
	for _, e := range expenses {
		out[e.CategoryID] = out[e.CategoryID].Add(e.Amount)
	}
	return out
}

// findInTrees looks a category up by name among trees. A parent match returns
// its whole tree; a child match returns a tree holding only that child.
func findInTrees(trees []category.Tree, name string) (category.Tree, bool) {
	for _, t := range trees {
		if strings.EqualFold(t.Parent.Name, name) {
			return t, true
		}
		for _, c := range t.Children {
			if strings.EqualFold(c.Name, name) {
				return category.Tree{Parent: c}, true
			}
		}
	}
	return category.Tree{}, false
}

// filterTrees applies an optional category-name filter. Unknown names are a
// validation error; a known category outside trees yields no trees.
func (s *Service) filterTrees(ctx context.Context, trees []category.Tree, name string) ([]category.Tree, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return trees, nil
	}
	if t, ok := findInTrees(trees, name); ok {
		return []category.Tree{t}, nil
	}
	if _, err := s.categories.GetByName(ctx, name); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewValidationFieldError("category", fmt.Sprintf("category %q does not exist", name), errors.ErrCodeInvalidCategory)
		}
		return nil, err
	}
	return []category.Tree{}, nil
}
