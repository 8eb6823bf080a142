// Package period turns recurring budget period labels into concrete calendar windows.
package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Period string

const (
	Weekly      Period = "WEEKLY"
	Fortnightly Period = "FORTNIGHTLY"
	Monthly     Period = "MONTHLY"
	Quarterly   Period = "QUARTERLY"
	Yearly      Period = "YEARLY"
)

// All lists the supported periods from shortest to longest.
var All = []Period{Weekly, Fortnightly, Monthly, Quarterly, Yearly}

const DateLayout = "2006-01-02"

// Parse accepts a period label in any letter case.
func Parse(s string) (Period, error) {
	p := Period(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown period %q", s)
	}
	return p, nil
}

func (p Period) Valid() bool {
	switch p {
	case Weekly, Fortnightly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

func (p Period) String() string {
	return string(p)
}

// AnnualMultiplier converts a budget denominated in p into a yearly figure.
// Fixed calendar constants keep annual rollups reproducible.
func (p Period) AnnualMultiplier() int64 {
	switch p {
	case Weekly:
		return 52
	case Fortnightly:
		return 26
	case Monthly:
		return 12
	case Quarterly:
		return 4
	default:
		return 1
	}
}

var (
	weeksPerMonth      = decimal.RequireFromString("4.33")
	fortnightsPerMonth = decimal.RequireFromString("2.17")
)

// EstimateFromMonthly scales a monthly amount to an approximate amount for p.
// Short periods use averaged month fractions, unlike AnnualMultiplier.
func (p Period) EstimateFromMonthly(monthly decimal.Decimal) decimal.Decimal {
	switch p {
	case Weekly:
		return monthly.DivRound(weeksPerMonth, 8)
	case Fortnightly:
		return monthly.DivRound(fortnightsPerMonth, 8)
	case Quarterly:
		return monthly.Mul(decimal.NewFromInt(3))
	case Yearly:
		return monthly.Mul(decimal.NewFromInt(12))
	default:
		return monthly
	}
}

// Range is an inclusive calendar window.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Resolve returns the window of period p that contains anchor, in anchor's location.
func Resolve(p Period, anchor time.Time) (Range, error) {
	loc := anchor.Location()
	y, m, d := anchor.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)

	var start, last time.Time
	switch p {
	case Weekly:
		// ISO week: Sunday belongs to the week that began the previous Monday.
		offset := (int(day.Weekday()) + 6) % 7
		start = day.AddDate(0, 0, -offset)
		last = start.AddDate(0, 0, 6)
	case Fortnightly:
		start = day
		last = start.AddDate(0, 0, 13)
	case Monthly:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		last = start.AddDate(0, 1, -1)
	case Quarterly:
		qm := time.Month((int(m)-1)/3*3 + 1)
		start = time.Date(y, qm, 1, 0, 0, 0, 0, loc)
		last = start.AddDate(0, 3, -1)
	case Yearly:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		last = time.Date(y, time.December, 31, 0, 0, 0, 0, loc)
	default:
		return Range{}, fmt.Errorf("unknown period %q", p)
	}

	return Range{Start: start, End: EndOfDay(last)}, nil
}

// Previous returns the window of p that immediately precedes r.
func Previous(p Period, r Range) (Range, error) {
	if p == Fortnightly {
		return Resolve(p, r.Start.AddDate(0, 0, -14))
	}
	return Resolve(p, r.Start.AddDate(0, 0, -1))
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days counts calendar days in the window.
func (r Range) Days() int {
	return int(StartOfDay(r.End).Sub(r.Start).Hours()/24+0.5) + 1
}

// ParseDate parses an ISO calendar date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

// LastDayOfMonth returns the final calendar day number of the given month.
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateOf returns t's calendar day as midnight UTC, the form ledger dates are stored in.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
