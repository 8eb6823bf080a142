package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	ruleDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/rule"
	"github.com/frahmantamala/budget-tracker/internal/rule"
)

type RuleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) rule.RepositoryAPI {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) ListActive(ctx context.Context) ([]*ruleDatamodel.CategorizationRule, error) {
	var rules []*ruleDatamodel.CategorizationRule
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("is_active = ?", true).
		Order("priority DESC").Order("pattern ASC").Order("id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *RuleRepository) GetAll(ctx context.Context) ([]*ruleDatamodel.CategorizationRule, error) {
	var rules []*ruleDatamodel.CategorizationRule
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("priority DESC").Order("pattern ASC").Order("id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *RuleRepository) GetByID(ctx context.Context, id int64) (*ruleDatamodel.CategorizationRule, error) {
	var rl ruleDatamodel.CategorizationRule
	err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&rl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rl, nil
}

func (r *RuleRepository) Create(ctx context.Context, rl *ruleDatamodel.CategorizationRule) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rl).Error
}

func (r *RuleRepository) Update(ctx context.Context, rl *ruleDatamodel.CategorizationRule) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(rl).Error
}

func (r *RuleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&ruleDatamodel.CategorizationRule{}, id).Error
}
