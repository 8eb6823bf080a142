package budget

type SummaryRequest struct {
	Period   string
	Date     string
	Category string
}

type BalanceRequest struct {
	Period string
	Date   string
}

type InsightsRequest struct {
	Period string
	Date   string
}

type CategorySummary struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Period       string            `json:"period"`
	BudgetAmount float64           `json:"budget_amount"`
	ActualAmount float64           `json:"actual_amount"`
	Variance     float64           `json:"variance"`
	PercentUsed  float64           `json:"percent_used"`
	Status       Status            `json:"status"`
	Children     []CategorySummary `json:"children,omitempty"`
}

type BudgetSummary struct {
	Period        string            `json:"period"`
	StartDate     string            `json:"start_date"`
	EndDate       string            `json:"end_date"`
	Categories    []CategorySummary `json:"categories"`
	TotalBudget   float64           `json:"total_budget"`
	TotalActual   float64           `json:"total_actual"`
	TotalVariance float64           `json:"total_variance"`
	PercentUsed   float64           `json:"percent_used"`
}

type BudgetVsActualCategory struct {
	ID                int64                    `json:"id"`
	Name              string                   `json:"name"`
	Period            string                   `json:"period"`
	BudgetAmount      float64                  `json:"budget_amount"`
	AnnualBudget      float64                  `json:"annual_budget"`
	YTDActual         float64                  `json:"ytd_actual"`
	Variance          float64                  `json:"variance"`
	PercentUsed       float64                  `json:"percent_used"`
	Status            Status                   `json:"status"`
	ProjectedYearEnd  float64                  `json:"projected_year_end"`
	ProjectedVariance float64                  `json:"projected_variance"`
	ProjectionStatus  ProjectionStatus         `json:"projection_status"`
	Children          []BudgetVsActualCategory `json:"children,omitempty"`
}

type StatusCounts struct {
	OnTrack    int `json:"on_track"`
	Warning    int `json:"warning"`
	OverBudget int `json:"over_budget"`
}

type BudgetVsActualsResponse struct {
	Year                   int                      `json:"year"`
	AsOf                   string                   `json:"as_of"`
	DaysElapsed            int                      `json:"days_elapsed"`
	DaysRemaining          int                      `json:"days_remaining"`
	DaysInYear             int                      `json:"days_in_year"`
	Categories             []BudgetVsActualCategory `json:"categories"`
	TotalAnnualBudget      float64                  `json:"total_annual_budget"`
	TotalYTDActual         float64                  `json:"total_ytd_actual"`
	TotalVariance          float64                  `json:"total_variance"`
	PercentUsed            float64                  `json:"percent_used"`
	TotalProjectedYearEnd  float64                  `json:"total_projected_year_end"`
	TotalProjectedVariance float64                  `json:"total_projected_variance"`
	StatusCounts           StatusCounts             `json:"status_counts"`
}

type SourceEstimate struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	MonthlyExpected float64 `json:"monthly_expected"`
	Estimated       float64 `json:"estimated"`
	PayDay          int     `json:"pay_day"`
	NextPayDate     string  `json:"next_pay_date"`
}

type BalanceResponse struct {
	Period           string           `json:"period"`
	StartDate        string           `json:"start_date"`
	EndDate          string           `json:"end_date"`
	ExpectedIncome   float64          `json:"expected_income"`
	BudgetedExpenses float64          `json:"budgeted_expenses"`
	ProjectedBalance float64          `json:"projected_balance"`
	ActualIncome     float64          `json:"actual_income"`
	ActualExpenses   float64          `json:"actual_expenses"`
	ActualBalance    float64          `json:"actual_balance"`
	Sources          []SourceEstimate `json:"sources"`
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityAlert   Severity = "alert"
)

const (
	InsightUnusualSpending   = "unusual_spending"
	InsightTrendingUp        = "trending_up"
	InsightTrendingDown      = "trending_down"
	InsightOverBudget        = "over_budget"
	InsightApproachingBudget = "approaching_budget"
	InsightTopMerchant       = "top_merchant"
)

type SpendingInsight struct {
	Type          string   `json:"type"`
	Severity      Severity `json:"severity"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category,omitempty"`
	Amount        float64  `json:"amount,omitempty"`
	ChangePercent float64  `json:"change_percent,omitempty"`
}

type CategorySpend struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	PreviousAmount float64 `json:"previous_amount"`
	ChangePercent  float64 `json:"change_percent"`
}

type MerchantSpend struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

type SpendingInsightsResponse struct {
	Period            string            `json:"period"`
	StartDate         string            `json:"start_date"`
	EndDate           string            `json:"end_date"`
	PreviousStartDate string            `json:"previous_start_date"`
	PreviousEndDate   string            `json:"previous_end_date"`
	TotalSpent        float64           `json:"total_spent"`
	PreviousTotal     float64           `json:"previous_total"`
	ChangePercent     float64           `json:"change_percent"`
	ByCategory        []CategorySpend   `json:"by_category"`
	TopMerchants      []MerchantSpend   `json:"top_merchants"`
	Insights          []SpendingInsight `json:"insights"`
}
