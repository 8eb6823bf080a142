package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/budget-tracker/internal/category"
	categoryDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/expense"
	ruleDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/rule"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll(ctx context.Context) ([]*categoryDatamodel.BudgetCategory, error) {
	var categories []*categoryDatamodel.BudgetCategory
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*categoryDatamodel.BudgetCategory, error) {
	var cat categoryDatamodel.BudgetCategory
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*categoryDatamodel.BudgetCategory, error) {
	var cat categoryDatamodel.BudgetCategory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(ctx context.Context, cat *categoryDatamodel.BudgetCategory) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

func (r *CategoryRepository) Update(ctx context.Context, cat *categoryDatamodel.BudgetCategory) error {
	return r.db.WithContext(ctx).Save(cat).Error
}

// Delete removes the category together with the rules pointing at it.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&ruleDatamodel.CategorizationRule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&categoryDatamodel.BudgetCategory{}, id).Error
	})
}

func (r *CategoryRepository) HasLedgerRows(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).Where("category_id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *CategoryRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&categoryDatamodel.BudgetCategory{}).Where("parent_id = ?", id).Count(&count).Error
	return count > 0, err
}
