package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	expenseDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
	"github.com/frahmantamala/budget-tracker/internal/expense"
)

const (
	insertBatchSize = 200
	lookupChunkSize = 500
)

// ExpenseRepository implements the expense.RepositoryAPI interface using GORM
type ExpenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) expense.RepositoryAPI {
	return &ExpenseRepository{db: db}
}

// Create saves a new expense to the database
func (r *ExpenseRepository) Create(ctx context.Context, exp *expenseDatamodel.Expense) error {
	return r.db.WithContext(ctx).Create(exp).Error
}

// GetByID retrieves an expense by its ID
func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*expenseDatamodel.Expense, error) {
	var exp expenseDatamodel.Expense
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&exp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &exp, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, exp *expenseDatamodel.Expense) error {
	return r.db.WithContext(ctx).Save(exp).Error
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&expenseDatamodel.Expense{}, id).Error
}

// Query filters the ledger. Date bounds are compared as calendar-day strings
// so the stored date column and the caller's time zone never disagree.
func (r *ExpenseRepository) Query(ctx context.Context, q expense.Query) ([]*expenseDatamodel.Expense, error) {
	tx := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{})

	if q.From != nil {
		tx = tx.Where("date >= ?", q.From.Format(period.DateLayout))
	}
	if q.To != nil {
		tx = tx.Where("date < ?", q.To.AddDate(0, 0, 1).Format(period.DateLayout))
	}
	if len(q.CategoryIDs) > 0 {
		tx = tx.Where("category_id IN ?", q.CategoryIDs)
	}
	if q.MinAmount != nil {
		tx = tx.Where("amount >= ?", *q.MinAmount)
	}
	if q.MaxAmount != nil {
		tx = tx.Where("amount <= ?", *q.MaxAmount)
	}
	if q.Source != "" {
		tx = tx.Where("source = ?", string(q.Source))
	}
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.Where("LOWER(description) LIKE ? OR LOWER(COALESCE(merchant_name, '')) LIKE ? OR LOWER(COALESCE(notes, '')) LIKE ?", like, like, like)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit).Offset(q.Offset)
	}

	var expenses []*expenseDatamodel.Expense
	err := tx.Order("date DESC").Order("id DESC").Find(&expenses).Error
	return expenses, err
}

// FindByBankReferences returns the subset of refs already stored.
func (r *ExpenseRepository) FindByBankReferences(ctx context.Context, refs []string) ([]string, error) {
	var found []string
	for start := 0; start < len(refs); start += lookupChunkSize {
		end := start + lookupChunkSize
		if end > len(refs) {
			end = len(refs)
		}
		var chunk []string
		err := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).
			Where("bank_reference IN ?", refs[start:end]).
			Pluck("bank_reference", &chunk).Error
		if err != nil {
			return nil, err
		}
		found = append(found, chunk...)
	}
	return found, nil
}

// InsertMany writes all rows in one transaction; either every row lands or none do.
func (r *ExpenseRepository) InsertMany(ctx context.Context, expenses []*expenseDatamodel.Expense) (int, error) {
	if len(expenses) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(expenses, insertBatchSize).Error
	})
	if err != nil {
		return 0, err
	}
	return len(expenses), nil
}
