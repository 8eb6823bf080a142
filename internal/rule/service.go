package rule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/category"
	"github.com/frahmantamala/budget-tracker/internal/core/common/validation"
	ruleDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/rule"
)

// RepositoryAPI loads rules with their category attached.
type RepositoryAPI interface {
	ListActive(ctx context.Context) ([]*ruleDatamodel.CategorizationRule, error)
	GetAll(ctx context.Context) ([]*ruleDatamodel.CategorizationRule, error)
	GetByID(ctx context.Context, id int64) (*ruleDatamodel.CategorizationRule, error)
	Create(ctx context.Context, rule *ruleDatamodel.CategorizationRule) error
	Update(ctx context.Context, rule *ruleDatamodel.CategorizationRule) error
	Delete(ctx context.Context, id int64) error
}

type CategoryLookup interface {
	GetByName(ctx context.Context, name string) (*category.Category, error)
}

type Service struct {
	repo       RepositoryAPI
	categories CategoryLookup
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, categories CategoryLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		logger:     logger,
	}
}

// ListRules returns rules in evaluation order.
func (s *Service) ListRules(ctx context.Context, includeInactive bool) ([]*Rule, error) {
	var (
		data []*ruleDatamodel.CategorizationRule
		err  error
	)
	if includeInactive {
		data, err = s.repo.GetAll(ctx)
	} else {
		data, err = s.repo.ListActive(ctx)
	}
	if err != nil {
		s.logger.Error("failed to list rules", "error", err)
		return nil, errors.NewInternalError("failed to list rules", err)
	}

	rules := make([]*Rule, 0, len(data))
	for _, d := range data {
		rules = append(rules, FromDataModel(d))
	}
	return Ordered(rules), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Rule, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load rule", err)
	}
	if d == nil {
		return nil, errors.ErrRuleNotFound
	}
	return FromDataModel(d), nil
}

func (s *Service) validate(pattern, matchType string) *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("pattern", strings.TrimSpace(pattern)).
		Required().
		MaxLength(200)
	validator.Field("match_type", matchType).
		Required().
		OneOf(errors.ErrCodeInvalidMatchType, MatchTypes...)
	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	if mt, _ := ParseMatchType(matchType); mt == MatchRegex {
		return validation.ValidateRegex("pattern", pattern)
	}
	return nil
}

func (s *Service) resolveCategory(ctx context.Context, name string) (*category.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidationFieldError("category", "category is required", errors.ErrCodeInvalidCategory)
	}
	cat, err := s.categories.GetByName(ctx, name)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewValidationFieldError("category", fmt.Sprintf("category %q does not exist", name), errors.ErrCodeInvalidCategory)
		}
		return nil, err
	}
	return cat, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateRuleDTO) (*Rule, error) {
	if appErr := s.validate(dto.Pattern, dto.MatchType); appErr != nil {
		return nil, appErr
	}
	cat, err := s.resolveCategory(ctx, dto.Category)
	if err != nil {
		return nil, err
	}

	mt, _ := ParseMatchType(dto.MatchType)
	now := time.Now()
	r := &Rule{
		Pattern:        strings.TrimSpace(dto.Pattern),
		MatchType:      mt,
		CategoryID:     cat.ID,
		CategoryName:   cat.Name,
		CategoryActive: cat.IsActive,
		Priority:       dto.Priority,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	data := ToDataModel(r)
	if err := s.repo.Create(ctx, data); err != nil {
		s.logger.Error("failed to create rule", "pattern", r.Pattern, "error", err)
		return nil, errors.NewInternalError("failed to create rule", err)
	}
	r.ID = data.ID

	s.logger.Info("categorization rule created", "rule_id", r.ID, "pattern", r.Pattern, "category", cat.Name, "priority", r.Priority)
	return r, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto *UpdateRuleDTO) (*Rule, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pattern, matchType := r.Pattern, string(r.MatchType)
	if dto.Pattern != nil {
		pattern = *dto.Pattern
	}
	if dto.MatchType != nil {
		matchType = *dto.MatchType
	}
	if appErr := s.validate(pattern, matchType); appErr != nil {
		return nil, appErr
	}
	r.Pattern = strings.TrimSpace(pattern)
	r.MatchType, _ = ParseMatchType(matchType)

	if dto.Category != nil {
		cat, err := s.resolveCategory(ctx, *dto.Category)
		if err != nil {
			return nil, err
		}
		r.CategoryID, r.CategoryName, r.CategoryActive = cat.ID, cat.Name, cat.IsActive
	}
	if dto.Priority != nil {
		r.Priority = *dto.Priority
	}
	if dto.IsActive != nil {
		r.IsActive = *dto.IsActive
	}
	r.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, ToDataModel(r)); err != nil {
		s.logger.Error("failed to update rule", "rule_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update rule", err)
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete rule", "rule_id", id, "error", err)
		return errors.NewInternalError("failed to delete rule", err)
	}
	s.logger.Info("categorization rule deleted", "rule_id", id)
	return nil
}
