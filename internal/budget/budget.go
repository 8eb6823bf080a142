package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOnTrack    Status = "on_track"
	StatusWarning    Status = "warning"
	StatusOverBudget Status = "over_budget"
)

type ProjectionStatus string

const (
	ProjectionWithinBudget ProjectionStatus = "within_budget"
	ProjectionOverTrending ProjectionStatus = "over_budget_trending"
)

var hundred = decimal.NewFromInt(100)

// Settings carries the tunables of the analytics. The zero value is not
// usable; start from DefaultSettings.
type Settings struct {
	Location *time.Location

	// WarningPercent is the percent-used at which a category stops being on track.
	WarningPercent decimal.Decimal
	// TrendPercent is the minimum change against the previous window reported as a trend.
	TrendPercent decimal.Decimal
	// UnusualRatio and UnusualMinIncrease together flag a category spike;
	// UnusualAlertRatio raises it to an alert.
	UnusualRatio       decimal.Decimal
	UnusualAlertRatio  decimal.Decimal
	UnusualMinIncrease decimal.Decimal
}

func DefaultSettings() Settings {
	return Settings{
		Location:           time.Local,
		WarningPercent:     decimal.NewFromInt(80),
		TrendPercent:       decimal.NewFromInt(20),
		UnusualRatio:       decimal.RequireFromString("1.5"),
		UnusualAlertRatio:  decimal.NewFromInt(2),
		UnusualMinIncrease: decimal.NewFromInt(50),
	}
}

// Classify maps a percent-used to a status. Only the over-budget check rounds
// to two places, so 100.004 is still a warning while 79.996 stays on track.
func (s Settings) Classify(percentUsed decimal.Decimal) Status {
	switch {
	case percentUsed.Round(2).GreaterThan(hundred):
		return StatusOverBudget
	case percentUsed.GreaterThanOrEqual(s.WarningPercent):
		return StatusWarning
	default:
		return StatusOnTrack
	}
}

// Project extrapolates a year-to-date figure over the whole year. With no
// elapsed days the projection is the figure itself.
func Project(ytd decimal.Decimal, daysElapsed, daysInYear int) decimal.Decimal {
	if daysElapsed <= 0 {
		return ytd
	}
	return ytd.Mul(decimal.NewFromInt(int64(daysInYear))).DivRound(decimal.NewFromInt(int64(daysElapsed)), 8)
}

func projectionStatus(projectedVariance decimal.Decimal) ProjectionStatus {
	if projectedVariance.IsNegative() {
		return ProjectionOverTrending
	}
	return ProjectionWithinBudget
}
