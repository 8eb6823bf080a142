package budget

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/category"
	"github.com/frahmantamala/budget-tracker/internal/core/money"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
)

func annualBudget(c *category.Category) decimal.Decimal {
	return c.BudgetAmount.Mul(decimal.NewFromInt(c.Period.AnnualMultiplier()))
}

// yearProgress is where "as of" sits inside a year.
type yearProgress struct {
	ytd         period.Range
	asOf        time.Time
	daysElapsed int
	daysInYear  int
}

// progress places today relative to year: the current year runs to today, past
// years are complete and future years have not started.
func progress(year int, today time.Time) yearProgress {
	window, _ := period.Resolve(period.Yearly, time.Date(year, time.June, 1, 0, 0, 0, 0, today.Location()))
	p := yearProgress{daysInYear: window.Days()}
	switch {
	case year < today.Year():
		p.asOf = window.End
	case year > today.Year():
		p.asOf = window.Start
		return p
	default:
		p.asOf = period.EndOfDay(today)
	}
	p.ytd = period.Range{Start: window.Start, End: p.asOf}
	p.daysElapsed = p.ytd.Days()
	return p
}

func (s *Service) vsActual(n node, yp yearProgress) BudgetVsActualCategory {
	percent := money.Percent(n.actual, n.budget)
	projected := Project(n.actual, yp.daysElapsed, yp.daysInYear)
	projectedVariance := n.budget.Sub(projected)

	out := BudgetVsActualCategory{
		ID:                n.category.ID,
		Name:              n.category.Name,
		Period:            n.category.Period.String(),
		BudgetAmount:      money.Float(n.category.BudgetAmount),
		AnnualBudget:      money.Float(n.budget),
		YTDActual:         money.Float(n.actual),
		Variance:          money.Float(n.budget.Sub(n.actual)),
		PercentUsed:       money.Float(percent),
		Status:            s.settings.Classify(percent),
		ProjectedYearEnd:  money.Float(projected),
		ProjectedVariance: money.Float(projectedVariance),
		ProjectionStatus:  projectionStatus(projectedVariance),
	}
	for _, c := range n.children {
		out.Children = append(out.Children, s.vsActual(c, yp))
	}
	return out
}

// GetBudgetVsActuals annualizes every active category's budget and compares
// it with spending from January 1 of year to date. Year 0 means the current year.
func (s *Service) GetBudgetVsActuals(ctx context.Context, year int) (*BudgetVsActualsResponse, error) {
	today := s.today()
	if year == 0 {
		year = today.Year()
	}
	if year < 1900 || year > 9999 {
		return nil, errors.NewValidationFieldError("year", "year must be between 1900 and 9999", errors.ErrCodeInvalidDate)
	}
	yp := progress(year, today)

	trees, err := s.categories.ListCategories(ctx, category.ListFilter{})
	if err != nil {
		return nil, err
	}

	spent := map[int64]decimal.Decimal{}
	if yp.daysElapsed > 0 {
		expenses, err := s.expenses.Between(ctx, yp.ytd)
		if err != nil {
			return nil, err
		}
		spent = spentByCategory(expenses)
	}

	resp := &BudgetVsActualsResponse{
		Year:          year,
		AsOf:          yp.asOf.Format(period.DateLayout),
		DaysElapsed:   yp.daysElapsed,
		DaysRemaining: yp.daysInYear - yp.daysElapsed,
		DaysInYear:    yp.daysInYear,
		Categories:    make([]BudgetVsActualCategory, 0, len(trees)),
	}

	totalBudget, totalActual := decimal.Zero, decimal.Zero
	for _, t := range trees {
		n := rollup(t, annualBudget, spent)
		totalBudget = totalBudget.Add(n.budget)
		totalActual = totalActual.Add(n.actual)

		row := s.vsActual(n, yp)
		switch row.Status {
		case StatusOnTrack:
			resp.StatusCounts.OnTrack++
		case StatusWarning:
			resp.StatusCounts.Warning++
		case StatusOverBudget:
			resp.StatusCounts.OverBudget++
		}
		resp.Categories = append(resp.Categories, row)
	}

	projected := Project(totalActual, yp.daysElapsed, yp.daysInYear)
	resp.TotalAnnualBudget = money.Float(totalBudget)
	resp.TotalYTDActual = money.Float(totalActual)
	resp.TotalVariance = money.Float(totalBudget.Sub(totalActual))
	resp.PercentUsed = money.Float(money.Percent(totalActual, totalBudget))
	resp.TotalProjectedYearEnd = money.Float(projected)
	resp.TotalProjectedVariance = money.Float(totalBudget.Sub(projected))

	s.logger.Info("budget vs actuals computed",
		"year", year,
		"days_elapsed", yp.daysElapsed,
		"categories", len(resp.Categories))
	return resp, nil
}
