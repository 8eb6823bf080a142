package income

import (
	"time"

	"github.com/shopspring/decimal"

	incomeDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/income"
	"github.com/frahmantamala/budget-tracker/internal/core/money"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
)

// Source is a recurring pay source. ExpectedAmount is per month; PayDay 31
// means the last day of any month.
type Source struct {
	ID             int64
	Name           string
	ExpectedAmount decimal.Decimal
	PayDay         int
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NextPayDate returns the first pay day on or after from, clamped to the
// length of the month.
func (s *Source) NextPayDate(from time.Time) time.Time {
	y, m, d := from.Date()
	day := payDayIn(s.PayDay, y, m)
	if day < d {
		next := time.Date(y, m+1, 1, 0, 0, 0, 0, from.Location())
		y, m = next.Year(), next.Month()
		day = payDayIn(s.PayDay, y, m)
	}
	return time.Date(y, m, day, 0, 0, 0, 0, from.Location())
}

func payDayIn(payDay, year int, month time.Month) int {
	last := period.LastDayOfMonth(year, month)
	if payDay > last {
		return last
	}
	return payDay
}

func (s *Source) ToResponse() SourceResponse {
	return SourceResponse{
		ID:             s.ID,
		Name:           s.Name,
		ExpectedAmount: money.Float(s.ExpectedAmount),
		PayDay:         s.PayDay,
		IsActive:       s.IsActive,
	}
}

type Income struct {
	ID            int64
	Date          time.Time
	Amount        decimal.Decimal
	SourceID      int64
	SourceName    string
	Description   string
	Notes         *string
	BankReference *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (i *Income) ToResponse() IncomeResponse {
	return IncomeResponse{
		ID:          i.ID,
		Date:        i.Date.Format(period.DateLayout),
		Amount:      money.Float(i.Amount),
		SourceID:    i.SourceID,
		SourceName:  i.SourceName,
		Description: i.Description,
		Notes:       i.Notes,
	}
}

// Total sums the amounts of entries.
func Total(entries []*Income) decimal.Decimal {
	amounts := make([]decimal.Decimal, len(entries))
	for i, e := range entries {
		amounts[i] = e.Amount
	}
	return money.Sum(amounts...)
}

func SourceToDataModel(s *Source) *incomeDatamodel.IncomeSource {
	return &incomeDatamodel.IncomeSource{
		ID:             s.ID,
		Name:           s.Name,
		ExpectedAmount: s.ExpectedAmount,
		PayDay:         s.PayDay,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func SourceFromDataModel(s *incomeDatamodel.IncomeSource) *Source {
	return &Source{
		ID:             s.ID,
		Name:           s.Name,
		ExpectedAmount: s.ExpectedAmount,
		PayDay:         s.PayDay,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func ToDataModel(i *Income) *incomeDatamodel.Income {
	return &incomeDatamodel.Income{
		ID:            i.ID,
		Date:          period.DateOf(i.Date),
		Amount:        i.Amount,
		SourceID:      i.SourceID,
		SourceName:    i.SourceName,
		Description:   i.Description,
		Notes:         i.Notes,
		BankReference: i.BankReference,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

func FromDataModel(i *incomeDatamodel.Income) *Income {
	return &Income{
		ID:            i.ID,
		Date:          i.Date,
		Amount:        i.Amount,
		SourceID:      i.SourceID,
		SourceName:    i.SourceName,
		Description:   i.Description,
		Notes:         i.Notes,
		BankReference: i.BankReference,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}
