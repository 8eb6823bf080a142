package budget

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/budget-tracker/internal/category"
	"github.com/frahmantamala/budget-tracker/internal/core/money"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
)

// node is one category's figures; a parent's figures include its children.
type node struct {
	category *category.Category
	budget   decimal.Decimal
	actual   decimal.Decimal
	children []node
}

// rollup builds the node for a tree: each child keeps its own figures and the
// parent adds them to its own.
func rollup(t category.Tree, budgetOf func(*category.Category) decimal.Decimal, spent map[int64]decimal.Decimal) node {
	parent := node{
		category: t.Parent,
		budget:   budgetOf(t.Parent),
		actual:   spent[t.Parent.ID],
	}
	for _, c := range t.Children {
		child := node{category: c, budget: budgetOf(c), actual: spent[c.ID]}
		parent.budget = parent.budget.Add(child.budget)
		parent.actual = parent.actual.Add(child.actual)
		parent.children = append(parent.children, child)
	}
	return parent
}

func nominalBudget(c *category.Category) decimal.Decimal {
	return c.BudgetAmount
}

func (s *Service) summarize(n node) CategorySummary {
	percent := money.Percent(n.actual, n.budget)
	out := CategorySummary{
		ID:           n.category.ID,
		Name:         n.category.Name,
		Period:       n.category.Period.String(),
		BudgetAmount: money.Float(n.budget),
		ActualAmount: money.Float(n.actual),
		Variance:     money.Float(n.budget.Sub(n.actual)),
		PercentUsed:  money.Float(percent),
		Status:       s.settings.Classify(percent),
	}
	for _, c := range n.children {
		out.Children = append(out.Children, s.summarize(c))
	}
	return out
}

// GetBudgetSummary compares the budget of every active category of a period
// with what was spent in the window.
func (s *Service) GetBudgetSummary(ctx context.Context, req SummaryRequest) (*BudgetSummary, error) {
	p, r, err := s.window(req.Period, req.Date)
	if err != nil {
		return nil, err
	}

	trees, err := s.categories.ActiveTrees(ctx, p)
	if err != nil {
		return nil, err
	}
	trees, err = s.filterTrees(ctx, trees, req.Category)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenses.Between(ctx, r)
	if err != nil {
		return nil, err
	}
	spent := spentByCategory(expenses)

	resp := &BudgetSummary{
		Period:     p.String(),
		StartDate:  r.Start.Format(period.DateLayout),
		EndDate:    r.End.Format(period.DateLayout),
		Categories: make([]CategorySummary, 0, len(trees)),
	}
	totalBudget, totalActual := decimal.Zero, decimal.Zero
	for _, t := range trees {
		n := rollup(t, nominalBudget, spent)
		totalBudget = totalBudget.Add(n.budget)
		totalActual = totalActual.Add(n.actual)
		resp.Categories = append(resp.Categories, s.summarize(n))
	}
	resp.TotalBudget = money.Float(totalBudget)
	resp.TotalActual = money.Float(totalActual)
	resp.TotalVariance = money.Float(totalBudget.Sub(totalActual))
	resp.PercentUsed = money.Float(money.Percent(totalActual, totalBudget))

	s.logger.Info("budget summary computed",
		"period", p,
		"start", resp.StartDate,
		"categories", len(resp.Categories),
		"total_actual", totalActual.StringFixed(2))
	return resp, nil
}
