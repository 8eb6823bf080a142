package budget

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/budget-tracker/internal/category"
	"github.com/frahmantamala/budget-tracker/internal/core/money"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
	"github.com/frahmantamala/budget-tracker/internal/expense"
	"github.com/frahmantamala/budget-tracker/internal/income"
)

// GetBalance estimates income for the window from the monthly figures of the
// active sources and sets it against the budgets of the period, then reports
// what actually came in and went out.
func (s *Service) GetBalance(ctx context.Context, req BalanceRequest) (*BalanceResponse, error) {
	p, r, err := s.window(req.Period, req.Date)
	if err != nil {
		return nil, err
	}

	sources, err := s.income.ActiveSources(ctx)
	if err != nil {
		return nil, err
	}
	trees, err := s.categories.ActiveTrees(ctx, p)
	if err != nil {
		return nil, err
	}
	received, err := s.income.Between(ctx, r)
	if err != nil {
		return nil, err
	}
	spent, err := s.expenses.Between(ctx, r)
	if err != nil {
		return nil, err
	}

	resp := &BalanceResponse{
		Period:    p.String(),
		StartDate: r.Start.Format(period.DateLayout),
		EndDate:   r.End.Format(period.DateLayout),
		Sources:   make([]SourceEstimate, 0, len(sources)),
	}

	expected := decimal.Zero
	for _, src := range sources {
		estimate := p.EstimateFromMonthly(src.ExpectedAmount)
		expected = expected.Add(estimate)
		resp.Sources = append(resp.Sources, SourceEstimate{
			ID:              src.ID,
			Name:            src.Name,
			MonthlyExpected: money.Float(src.ExpectedAmount),
			Estimated:       money.Float(estimate),
			PayDay:          src.PayDay,
			NextPayDate:     src.NextPayDate(r.Start).Format(period.DateLayout),
		})
	}

	budgeted := category.TotalBudget(trees)
	actualIncome := income.Total(received)
	actualExpenses := expense.Total(spent)

	resp.ExpectedIncome = money.Float(expected)
	resp.BudgetedExpenses = money.Float(budgeted)
	resp.ProjectedBalance = money.Float(expected.Sub(budgeted))
	resp.ActualIncome = money.Float(actualIncome)
	resp.ActualExpenses = money.Float(actualExpenses)
	resp.ActualBalance = money.Float(actualIncome.Sub(actualExpenses))

	s.logger.Info("balance computed",
		"period", p,
		"start", resp.StartDate,
		"sources", len(sources),
		"projected_balance", expected.Sub(budgeted).StringFixed(2))
	return resp, nil
}

