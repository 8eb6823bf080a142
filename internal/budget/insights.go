package budget

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/budget-tracker/internal/core/money"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
	"github.com/frahmantamala/budget-tracker/internal/expense"
)

const topMerchantLimit = 5

type categoryTotals struct {
	id       int64
	name     string
	current  decimal.Decimal
	previous decimal.Decimal
}

func (c categoryTotals) change() decimal.Decimal {
	return changePercent(c.current, c.previous)
}

// changePercent is the relative change from previous to current; zero when
// there is nothing to compare against.
func changePercent(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return money.Percent(current.Sub(previous), previous)
}

func groupByCategory(current, previous []*expense.Expense) []*categoryTotals {
	byID := map[int64]*categoryTotals{}
	get := func(e *expense.Expense) *categoryTotals {
		t, ok := byID[e.CategoryID]
		if !ok {
			t = &categoryTotals{id: e.CategoryID, name: e.CategoryName}
			byID[e.CategoryID] = t
		}
		return t
	}
	for _, e := range current {
		t := get(e)
		t.current = t.current.Add(e.Amount)
	}
	for _, e := range previous {
		t := get(e)
		t.previous = t.previous.Add(e.Amount)
	}

	out := make([]*categoryTotals, 0, len(byID))
	for _, t := range byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].current.Equal(out[j].current) {
			return out[i].current.GreaterThan(out[j].current)
		}
		return strings.ToLower(out[i].name) < strings.ToLower(out[j].name)
	})
	return out
}

func groupByMerchant(expenses []*expense.Expense) []MerchantSpend {
	type acc struct {
		name   string
		amount decimal.Decimal
		count  int
	}
	byKey := map[string]*acc{}
	for _, e := range expenses {
		name := strings.TrimSpace(e.Merchant())
		key := strings.ToLower(name)
		a, ok := byKey[key]
		if !ok {
			a = &acc{name: name}
			byKey[key] = a
		}
		a.amount = a.amount.Add(e.Amount)
		a.count++
	}

	list := make([]*acc, 0, len(byKey))
	for _, a := range byKey {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].amount.Equal(list[j].amount) {
			return list[i].amount.GreaterThan(list[j].amount)
		}
		return strings.ToLower(list[i].name) < strings.ToLower(list[j].name)
	})
	if len(list) > topMerchantLimit {
		list = list[:topMerchantLimit]
	}

	out := make([]MerchantSpend, 0, len(list))
	for _, a := range list {
		out = append(out, MerchantSpend{Name: a.name, Amount: money.Float(a.amount), Count: a.count})
	}
	return out
}

var severityRank = map[Severity]int{SeverityAlert: 0, SeverityWarning: 1, SeverityInfo: 2}

// GetSpendingInsights compares the window with the one before it. Without any
// spending in the previous window there is no baseline, so no insights are
// raised; the totals are still reported.
func (s *Service) GetSpendingInsights(ctx context.Context, req InsightsRequest) (*SpendingInsightsResponse, error) {
	p, r, err := s.window(req.Period, req.Date)
	if err != nil {
		return nil, err
	}
	prev, err := period.Previous(p, r)
	if err != nil {
		return nil, err
	}

	current, err := s.expenses.Between(ctx, r)
	if err != nil {
		return nil, err
	}
	previous, err := s.expenses.Between(ctx, prev)
	if err != nil {
		return nil, err
	}

	total, previousTotal := expense.Total(current), expense.Total(previous)
	totalChange := changePercent(total, previousTotal)
	categories := groupByCategory(current, previous)
	merchants := groupByMerchant(current)

	resp := &SpendingInsightsResponse{
		Period:            p.String(),
		StartDate:         r.Start.Format(period.DateLayout),
		EndDate:           r.End.Format(period.DateLayout),
		PreviousStartDate: prev.Start.Format(period.DateLayout),
		PreviousEndDate:   prev.End.Format(period.DateLayout),
		TotalSpent:        money.Float(total),
		PreviousTotal:     money.Float(previousTotal),
		ChangePercent:     money.Float(totalChange),
		ByCategory:        make([]CategorySpend, 0, len(categories)),
		TopMerchants:      merchants,
		Insights:          []SpendingInsight{},
	}
	for _, c := range categories {
		resp.ByCategory = append(resp.ByCategory, CategorySpend{
			ID:             c.id,
			Name:           c.name,
			Amount:         money.Float(c.current),
			PreviousAmount: money.Float(c.previous),
			ChangePercent:  money.Float(c.change()),
		})
	}

	if len(previous) == 0 {
		s.logger.Info("no previous spending, skipping insights", "period", p, "previous_start", resp.PreviousStartDate)
		return resp, nil
	}

	var insights []SpendingInsight
	insights = append(insights, s.trendInsights(p, total, previousTotal, categories)...)
	budgetInsights, err := s.budgetInsights(ctx, p, current)
	if err != nil {
		return nil, err
	}
	insights = append(insights, budgetInsights...)
	if len(merchants) > 0 {
		top := merchants[0]
		insights = append(insights, SpendingInsight{
			Type:        InsightTopMerchant,
			Severity:    SeverityInfo,
			Title:       fmt.Sprintf("Top merchant: %s", top.Name),
			Description: fmt.Sprintf("%d purchases totalling %.2f this %s", top.Count, top.Amount, strings.ToLower(p.String())),
			Amount:      top.Amount,
		})
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return severityRank[insights[i].Severity] < severityRank[insights[j].Severity]
	})
	resp.Insights = insights

	s.logger.Info("spending insights computed", "period", p, "start", resp.StartDate, "insights", len(insights))
	return resp, nil
}

func (s *Service) trendInsights(p period.Period, total, previousTotal decimal.Decimal, categories []*categoryTotals) []SpendingInsight {
	var out []SpendingInsight
	label := strings.ToLower(p.String())

	overall := changePercent(total, previousTotal)
	switch {
	case !previousTotal.IsZero() && overall.GreaterThanOrEqual(s.settings.TrendPercent):
		out = append(out, SpendingInsight{
			Type:          InsightTrendingUp,
			Severity:      SeverityWarning,
			Title:         "Spending is up",
			Description:   fmt.Sprintf("Total spending is up %.1f%% on the previous %s", money.Float(overall), label),
			Amount:        money.Float(total),
			ChangePercent: money.Float(overall),
		})
	case !previousTotal.IsZero() && overall.LessThanOrEqual(s.settings.TrendPercent.Neg()):
		out = append(out, SpendingInsight{
			Type:          InsightTrendingDown,
			Severity:      SeverityInfo,
			Title:         "Spending is down",
			Description:   fmt.Sprintf("Total spending is down %.1f%% on the previous %s", money.Float(overall.Abs()), label),
			Amount:        money.Float(total),
			ChangePercent: money.Float(overall),
		})
	}

	for _, c := range categories {
		if c.previous.IsZero() {
			continue
		}
		change := c.change()
		ratio := c.current.DivRound(c.previous, 8)
		increase := c.current.Sub(c.previous)

		switch {
		case ratio.GreaterThanOrEqual(s.settings.UnusualRatio) && increase.GreaterThanOrEqual(s.settings.UnusualMinIncrease):
			severity := SeverityWarning
			if ratio.GreaterThanOrEqual(s.settings.UnusualAlertRatio) {
				severity = SeverityAlert
			}
			out = append(out, SpendingInsight{
				Type:          InsightUnusualSpending,
				Severity:      severity,
				Title:         fmt.Sprintf("Unusual spending on %s", c.name),
				Description:   fmt.Sprintf("%s spending is %sx the previous %s (%.2f vs %.2f)", c.name, ratio.Round(1).String(), label, money.Float(c.current), money.Float(c.previous)),
				Category:      c.name,
				Amount:        money.Float(c.current),
				ChangePercent: money.Float(change),
			})
		case change.GreaterThanOrEqual(s.settings.TrendPercent):
			out = append(out, SpendingInsight{
				Type:          InsightTrendingUp,
				Severity:      SeverityInfo,
				Title:         fmt.Sprintf("%s is trending up", c.name),
				Description:   fmt.Sprintf("%s spending is up %.1f%% on the previous %s", c.name, money.Float(change), label),
				Category:      c.name,
				Amount:        money.Float(c.current),
				ChangePercent: money.Float(change),
			})
		case change.LessThanOrEqual(s.settings.TrendPercent.Neg()):
			out = append(out, SpendingInsight{
				Type:          InsightTrendingDown,
				Severity:      SeverityInfo,
				Title:         fmt.Sprintf("%s is trending down", c.name),
				Description:   fmt.Sprintf("%s spending is down %.1f%% on the previous %s", c.name, money.Float(change.Abs()), label),
				Category:      c.name,
				Amount:        money.Float(c.current),
				ChangePercent: money.Float(change),
			})
		}
	}
	return out
}

// budgetInsights flags categories of period p that are over, or close to, their budget.
func (s *Service) budgetInsights(ctx context.Context, p period.Period, current []*expense.Expense) ([]SpendingInsight, error) {
	trees, err := s.categories.ActiveTrees(ctx, p)
	if err != nil {
		return nil, err
	}
	spent := spentByCategory(current)

	var out []SpendingInsight
	for _, t := range trees {
		n := rollup(t, nominalBudget, spent)
		if !n.budget.IsPositive() {
			continue
		}
		percent := money.Percent(n.actual, n.budget)
		switch s.settings.Classify(percent) {
		case StatusOverBudget:
			out = append(out, SpendingInsight{
				Type:        InsightOverBudget,
				Severity:    SeverityAlert,
				Title:       fmt.Sprintf("%s is over budget", n.category.Name),
				Description: fmt.Sprintf("Spent %.2f of a %.2f budget (%.1f%%)", money.Float(n.actual), money.Float(n.budget), money.Float(percent)),
				Category:    n.category.Name,
				Amount:      money.Float(n.actual),
			})
		case StatusWarning:
			out = append(out, SpendingInsight{
				Type:        InsightApproachingBudget,
				Severity:    SeverityWarning,
				Title:       fmt.Sprintf("%s is close to its budget", n.category.Name),
				Description: fmt.Sprintf("Spent %.2f of a %.2f budget (%.1f%%)", money.Float(n.actual), money.Float(n.budget), money.Float(percent)),
				Category:    n.category.Name,
				Amount:      money.Float(n.actual),
			})
		}
	}
	return out, nil
}
