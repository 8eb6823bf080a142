package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	incomeDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/income"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
	"github.com/frahmantamala/budget-tracker/internal/income"
)

// Queries are written with ? placeholders and rebound for the driver, so the
// same statements run against Postgres (pgx) and SQLite.
type IncomeRepository struct {
	db *sqlx.DB
}

func NewIncomeRepository(db *sqlx.DB) income.RepositoryAPI {
	return &IncomeRepository{db: db}
}

const sourceColumns = `id, name, expected_amount, pay_day, is_active, created_at, updated_at`

func (r *IncomeRepository) ListSources(ctx context.Context) ([]*incomeDatamodel.IncomeSource, error) {
	var sources []*incomeDatamodel.IncomeSource
	query := `SELECT ` + sourceColumns + ` FROM income_sources ORDER BY name`
	if err := r.db.SelectContext(ctx, &sources, query); err != nil {
		return nil, fmt.Errorf("list income sources: %w", err)
	}
	return sources, nil
}

func (r *IncomeRepository) getSource(ctx context.Context, where string, arg interface{}) (*incomeDatamodel.IncomeSource, error) {
	var source incomeDatamodel.IncomeSource
	query := r.db.Rebind(`SELECT ` + sourceColumns + ` FROM income_sources WHERE ` + where)
	if err := r.db.GetContext(ctx, &source, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &source, nil
}

func (r *IncomeRepository) GetSourceByID(ctx context.Context, id int64) (*incomeDatamodel.IncomeSource, error) {
	return r.getSource(ctx, `id = ?`, id)
}

func (r *IncomeRepository) GetSourceByName(ctx context.Context, name string) (*incomeDatamodel.IncomeSource, error) {
	return r.getSource(ctx, `LOWER(name) = LOWER(?)`, name)
}

func (r *IncomeRepository) CreateSource(ctx context.Context, source *incomeDatamodel.IncomeSource) error {
	query := r.db.Rebind(`
INSERT INTO income_sources (name, expected_amount, pay_day, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query,
		source.Name, source.ExpectedAmount, source.PayDay, source.IsActive, source.CreatedAt, source.UpdatedAt,
	).Scan(&source.ID)
	if err != nil {
		return fmt.Errorf("insert income source: %w", err)
	}
	return nil
}

func (r *IncomeRepository) UpdateSource(ctx context.Context, source *incomeDatamodel.IncomeSource) error {
	query := r.db.Rebind(`
UPDATE income_sources
SET name = ?, expected_amount = ?, pay_day = ?, is_active = ?, updated_at = ?
WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query,
		source.Name, source.ExpectedAmount, source.PayDay, source.IsActive, source.UpdatedAt, source.ID)
	if err != nil {
		return fmt.Errorf("update income source: %w", err)
	}
	return nil
}

func (r *IncomeRepository) DeleteSource(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM income_sources WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete income source: %w", err)
	}
	return nil
}

func (r *IncomeRepository) HasIncome(ctx context.Context, sourceID int64) (bool, error) {
	var count int64
	query := r.db.Rebind(`SELECT COUNT(*) FROM incomes WHERE source_id = ?`)
	if err := r.db.GetContext(ctx, &count, query, sourceID); err != nil {
		return false, fmt.Errorf("count income for source: %w", err)
	}
	return count > 0, nil
}

func (r *IncomeRepository) CreateIncome(ctx context.Context, entry *incomeDatamodel.Income) error {
	query := r.db.Rebind(`
INSERT INTO incomes (date, amount, source_id, description, notes, bank_reference, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query,
		entry.Date, entry.Amount, entry.SourceID, entry.Description, entry.Notes, entry.BankReference,
		entry.CreatedAt, entry.UpdatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("insert income: %w", err)
	}
	return nil
}

const incomeSelect = `
SELECT i.id, i.date, i.amount, i.source_id, s.name AS source_name, i.description, i.notes,
       i.bank_reference, i.created_at, i.updated_at
FROM incomes i
JOIN income_sources s ON s.id = i.source_id`

func (r *IncomeRepository) GetIncomeByID(ctx context.Context, id int64) (*incomeDatamodel.Income, error) {
	var entry incomeDatamodel.Income
	if err := r.db.GetContext(ctx, &entry, r.db.Rebind(incomeSelect+` WHERE i.id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *IncomeRepository) DeleteIncome(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM incomes WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return nil
}

// ListIncome compares dates as calendar-day strings, like the expense ledger.
func (r *IncomeRepository) ListIncome(ctx context.Context, q income.Query) ([]*incomeDatamodel.Income, error) {
	var (
		where []string
		args  []interface{}
	)
	if q.From != nil {
		where = append(where, `i.date >= ?`)
		args = append(args, q.From.Format(period.DateLayout))
	}
	if q.To != nil {
		where = append(where, `i.date < ?`)
		args = append(args, q.To.AddDate(0, 0, 1).Format(period.DateLayout))
	}
	if q.SourceID != nil {
		where = append(where, `i.source_id = ?`)
		args = append(args, *q.SourceID)
	}

	query := incomeSelect
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY i.date DESC, i.id DESC`

	var entries []*incomeDatamodel.Income
	if err := r.db.SelectContext(ctx, &entries, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list income: %w", err)
	}
	return entries, nil
}
