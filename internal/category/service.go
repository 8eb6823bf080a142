package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/core/common/validation"
	categoryDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/category"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
)

// RepositoryAPI returns nil, nil from the single-row lookups when nothing matches.
type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*categoryDatamodel.BudgetCategory, error)
	GetByID(ctx context.Context, id int64) (*categoryDatamodel.BudgetCategory, error)
	GetByName(ctx context.Context, name string) (*categoryDatamodel.BudgetCategory, error)
	Create(ctx context.Context, category *categoryDatamodel.BudgetCategory) error
	Update(ctx context.Context, category *categoryDatamodel.BudgetCategory) error
	Delete(ctx context.Context, id int64) error
	HasLedgerRows(ctx context.Context, id int64) (bool, error)
	HasChildren(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) all(ctx context.Context) ([]*Category, error) {
	dataCategories, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, errors.NewInternalError("failed to load categories", err)
	}
	categories := make([]*Category, 0, len(dataCategories))
	for _, dc := range dataCategories {
		categories = append(categories, FromDataModel(dc))
	}
	return categories, nil
}

// ListCategories returns category trees, optionally restricted to one
// period. Inactive categories are hidden unless requested.
func (s *Service) ListCategories(ctx context.Context, filter ListFilter) ([]Tree, error) {
	var p period.Period
	if filter.Period != "" {
		parsed, appErr := validation.ParsePeriod("period", filter.Period)
		if appErr != nil {
			return nil, appErr
		}
		p = parsed
	}

	categories, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	var kept []*Category
	for _, c := range categories {
		if !filter.IncludeInactive && !c.IsActive {
			continue
		}
		kept = append(kept, c)
	}

	trees := BuildTrees(kept)
	if p == "" {
		return trees, nil
	}
	filtered := trees[:0]
	for _, t := range trees {
		if t.Parent.Period == p {
			filtered = append(filtered, t)
		}
	}
	s.logger.Info("retrieved categories", "count", len(filtered), "period", p)
	return filtered, nil
}

// ActiveTrees returns active top-level categories of period p with their
// active children.
func (s *Service) ActiveTrees(ctx context.Context, p period.Period) ([]Tree, error) {
	return s.ListCategories(ctx, ListFilter{Period: p.String()})
}

// ActiveByName indexes every active category by lower-cased name.
func (s *Service) ActiveByName(ctx context.Context) (map[string]*Category, error) {
	categories, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Category, len(categories))
	for _, c := range categories {
		if c.IsActive {
			out[strings.ToLower(c.Name)] = c
		}
	}
	return out, nil
}

// ByID indexes every category, active or not, by id.
func (s *Service) ByID(ctx context.Context) (map[int64]*Category, error) {
	categories, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*Category, len(categories))
	for _, c := range categories {
		out[c.ID] = c
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Category, error) {
	dc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get category", "category_id", id, "error", err)
		return nil, errors.NewInternalError("failed to load category", err)
	}
	if dc == nil {
		return nil, errors.ErrCategoryNotFound
	}
	return FromDataModel(dc), nil
}

func (s *Service) GetByName(ctx context.Context, name string) (*Category, error) {
	dc, err := s.repo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		s.logger.Error("failed to get category", "name", name, "error", err)
		return nil, errors.NewInternalError("failed to load category", err)
	}
	if dc == nil {
		return nil, errors.ErrCategoryNotFound
	}
	return FromDataModel(dc), nil
}

func validateCreate(dto *CreateCategoryDTO) *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("name", strings.TrimSpace(dto.Name)).
		Required().
		MaxLength(100)
	validator.Field("period", dto.Period).
		Required().
		Period()
	validator.Field("budget_amount", dto.BudgetAmount).
		NonNegative(errors.ErrCodeInvalidAmount)
	return validator.Validate()
}

// resolveParent looks up a parent by name and checks it can hold children.
func (s *Service) resolveParent(ctx context.Context, name string, self *Category) (*int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	parent, err := s.GetByName(ctx, name)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewValidationFieldError("parent", fmt.Sprintf("parent category %q does not exist", name), errors.ErrCodeInvalidCategory)
		}
		return nil, err
	}
	if parent.IsChild() {
		return nil, errors.NewValidationFieldError("parent", fmt.Sprintf("%q is already a child category", parent.Name), errors.ErrCodeInvalidHierarchy)
	}
	if self != nil {
		if parent.ID == self.ID {
			return nil, errors.NewValidationFieldError("parent", "a category cannot be its own parent", errors.ErrCodeInvalidHierarchy)
		}
		hasChildren, err := s.repo.HasChildren(ctx, self.ID)
		if err != nil {
			return nil, errors.NewInternalError("failed to check category children", err)
		}
		if hasChildren {
			return nil, errors.NewValidationFieldError("parent", fmt.Sprintf("%q has child categories and cannot be nested", self.Name), errors.ErrCodeInvalidHierarchy)
		}
	}
	id := parent.ID
	return &id, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateCategoryDTO) (*Category, error) {
	if appErr := validateCreate(dto); appErr != nil {
		return nil, appErr
	}

	name := strings.TrimSpace(dto.Name)
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, errors.NewInternalError("failed to check category name", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError(fmt.Sprintf("category %q already exists", name), errors.ErrCodeCategoryExists)
	}

	parentID, err := s.resolveParent(ctx, dto.Parent, nil)
	if err != nil {
		return nil, err
	}

	p, _ := period.Parse(dto.Period)
	category := NewCategory(name, p, dto.BudgetAmount, parentID)
	data := ToDataModel(category)
	if err := s.repo.Create(ctx, data); err != nil {
		s.logger.Error("failed to create category", "name", name, "error", err)
		return nil, errors.NewInternalError("failed to create category", err)
	}

	s.logger.Info("category created", "category_id", data.ID, "name", name, "period", p)
	return FromDataModel(data), nil
}

// Upsert creates the category or, when the name exists, updates its parent,
// period and budget in place.
func (s *Service) Upsert(ctx context.Context, dto *CreateCategoryDTO) (*Category, error) {
	if appErr := validateCreate(dto); appErr != nil {
		return nil, appErr
	}
	existing, err := s.repo.GetByName(ctx, strings.TrimSpace(dto.Name))
	if err != nil {
		return nil, errors.NewInternalError("failed to check category name", err)
	}
	if existing == nil {
		return s.Create(ctx, dto)
	}

	parent := dto.Parent
	return s.Update(ctx, existing.ID, &UpdateCategoryDTO{
		Parent:       &parent,
		Period:       &dto.Period,
		BudgetAmount: &dto.BudgetAmount,
	})
}

func (s *Service) Update(ctx context.Context, id int64, dto *UpdateCategoryDTO) (*Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	validator := validation.NewValidator()
	if dto.Name != nil {
		validator.Field("name", strings.TrimSpace(*dto.Name)).Required().MaxLength(100)
	}
	if dto.Period != nil {
		validator.Field("period", *dto.Period).
			Required().
			Period()
	}
	if dto.BudgetAmount != nil {
		validator.Field("budget_amount", *dto.BudgetAmount).NonNegative(errors.ErrCodeInvalidAmount)
	}
	if appErr := validator.Validate(); appErr != nil {
		return nil, appErr
	}

	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if !strings.EqualFold(name, category.Name) {
			other, err := s.repo.GetByName(ctx, name)
			if err != nil {
				return nil, errors.NewInternalError("failed to check category name", err)
			}
			if other != nil && other.ID != category.ID {
				return nil, errors.NewConflictError(fmt.Sprintf("category %q already exists", name), errors.ErrCodeCategoryExists)
			}
		}
		category.Name = name
	}
	if dto.Parent != nil {
		parentID, err := s.resolveParent(ctx, *dto.Parent, category)
		if err != nil {
			return nil, err
		}
		category.ParentID = parentID
	}
	if dto.Period != nil {
		category.Period, _ = period.Parse(*dto.Period)
	}
	if dto.BudgetAmount != nil {
		category.BudgetAmount = *dto.BudgetAmount
	}
	category.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, ToDataModel(category)); err != nil {
		s.logger.Error("failed to update category", "category_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update category", err)
	}

	s.logger.Info("category updated", "category_id", id, "name", category.Name)
	return category, nil
}

// Delete removes a category that nothing references. Ledger rows and child
// categories block the delete; callers deactivate instead.
func (s *Service) Delete(ctx context.Context, id int64) error {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.repo.HasLedgerRows(ctx, id)
	if err != nil {
		return errors.NewInternalError("failed to check category usage", err)
	}
	if inUse {
		return errors.ErrCategoryInUse
	}
	hasChildren, err := s.repo.HasChildren(ctx, id)
	if err != nil {
		return errors.NewInternalError("failed to check category children", err)
	}
	if hasChildren {
		return errors.ErrCategoryHasChild
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete category", "category_id", id, "error", err)
		return errors.NewInternalError("failed to delete category", err)
	}
	s.logger.Info("category deleted", "category_id", id, "name", category.Name)
	return nil
}

func (s *Service) Activate(ctx context.Context, id int64) (*Category, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) Deactivate(ctx context.Context, id int64) (*Category, error) {
	return s.setActive(ctx, id, false)
}

func (s *Service) setActive(ctx context.Context, id int64, active bool) (*Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		category.Activate()
	} else {
		category.Deactivate()
	}
	if err := s.repo.Update(ctx, ToDataModel(category)); err != nil {
		s.logger.Error("failed to change category state", "category_id", id, "active", active, "error", err)
		return nil, errors.NewInternalError("failed to update category", err)
	}
	return category, nil
}

// TotalBudget sums the rolled-up budget of every tree.
func TotalBudget(trees []Tree) decimal.Decimal {
	total := decimal.Zero
	for _, t := range trees {
		total = total.Add(t.Budget())
	}
	return total
}
