package expense

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/category"
	"github.com/frahmantamala/budget-tracker/internal/core/common/validation"
	expenseDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/budget-tracker/internal/core/events"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
	"github.com/frahmantamala/budget-tracker/internal/rule"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// RepositoryAPI is the ledger store. Single-row lookups return nil, nil when
// nothing matches.
type RepositoryAPI interface {
	Create(ctx context.Context, expense *expenseDatamodel.Expense) error
	GetByID(ctx context.Context, id int64) (*expenseDatamodel.Expense, error)
	Update(ctx context.Context, expense *expenseDatamodel.Expense) error
	Delete(ctx context.Context, id int64) error
	Query(ctx context.Context, q Query) ([]*expenseDatamodel.Expense, error)
	FindByBankReferences(ctx context.Context, refs []string) ([]string, error)
	InsertMany(ctx context.Context, expenses []*expenseDatamodel.Expense) (int, error)
}

type CategoryResolver interface {
	GetByName(ctx context.Context, name string) (*category.Category, error)
	ByID(ctx context.Context) (map[int64]*category.Category, error)
}

type Categorizer interface {
	SuggestCategory(ctx context.Context, description string) (rule.Suggestion, error)
	Load(ctx context.Context) (*rule.Matcher, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo        RepositoryAPI
	categories  CategoryResolver
	categorizer Categorizer
	publisher   Publisher
	location    *time.Location
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, categories CategoryResolver, categorizer Categorizer, publisher Publisher, location *time.Location, logger *slog.Logger) *Service {
	if location == nil {
		location = time.Local
	}
	return &Service{
		repo:        repo,
		categories:  categories,
		categorizer: categorizer,
		publisher:   publisher,
		location:    location,
		logger:      logger,
	}
}

func (s *Service) resolveCategory(ctx context.Context, name string) (*category.Category, error) {
	cat, err := s.categories.GetByName(ctx, name)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewValidationFieldError("category", fmt.Sprintf("category %q does not exist", name), errors.ErrCodeInvalidCategory)
		}
		return nil, err
	}
	if !cat.IsActive {
		return nil, errors.NewValidationFieldError("category", fmt.Sprintf("category %q is inactive", name), errors.ErrCodeInvalidCategory)
	}
	return cat, nil
}

func (s *Service) CreateExpense(ctx context.Context, dto *CreateExpenseDTO) (*Expense, error) {
	validator := validation.NewValidator()
	validator.Field("description", strings.TrimSpace(dto.Description)).
		Required().
		MaxLength(500)
	validator.Field("amount", dto.Amount).
		NonNegative(errors.ErrCodeInvalidAmount)
	validator.Field("date", dto.Date).
		ISODate()
	if appErr := validator.Validate(); appErr != nil {
		return nil, appErr
	}

	date := time.Now().In(s.location)
	if dto.Date != "" {
		parsed, appErr := validation.ParseDate("date", dto.Date, s.location)
		if appErr != nil {
			return nil, appErr
		}
		date = *parsed
	}

	var (
		cat             *category.Category
		autoCategorized bool
		err             error
	)
	if strings.TrimSpace(dto.Category) != "" {
		cat, err = s.resolveCategory(ctx, dto.Category)
		if err != nil {
			return nil, err
		}
	} else {
		suggestion, err := s.categorizer.SuggestCategory(ctx, dto.Description)
		if err != nil {
			return nil, err
		}
		if !suggestion.Matched {
			return nil, errors.NewValidationFieldError("category", "category is required when no categorization rule matches the description", errors.ErrCodeInvalidCategory)
		}
		cat = &category.Category{ID: *suggestion.CategoryID, Name: suggestion.CategoryName, IsActive: true}
		autoCategorized = true
	}

	now := time.Now()
	exp := &Expense{
		Date:         date,
		Amount:       dto.Amount,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Description:  strings.TrimSpace(dto.Description),
		MerchantName: dto.MerchantName,
		Notes:        dto.Notes,
		Source:       SourceManual,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	data := ToDataModel(exp)
	if err := s.repo.Create(ctx, data); err != nil {
		s.logger.Error("failed to create expense", "error", err)
		return nil, errors.NewInternalError("failed to create expense", err)
	}
	exp.ID = data.ID
	exp.Date = data.Date

	s.logger.Info("expense created",
		"expense_id", exp.ID,
		"category", cat.Name,
		"amount", exp.Amount.String(),
		"auto_categorized", autoCategorized,
		"subject", errors.SubjectFromContext(ctx))

	if s.publisher != nil {
		evt := events.NewExpenseCreatedEvent(exp.ID, exp.CategoryID, exp.Amount.String(), autoCategorized)
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("failed to publish expense created event", "expense_id", exp.ID, "error", err)
		}
	}
	return exp, nil
}

func (s *Service) GetExpenseByID(ctx context.Context, id int64) (*Expense, error) {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load expense", err)
	}
	if data == nil {
		return nil, errors.ErrExpenseNotFound
	}
	exp := FromDataModel(data)
	if err := s.attachCategoryNames(ctx, []*Expense{exp}); err != nil {
		return nil, err
	}
	return exp, nil
}

func (s *Service) UpdateExpense(ctx context.Context, id int64, dto *UpdateExpenseDTO) (*Expense, error) {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load expense", err)
	}
	if data == nil {
		return nil, errors.ErrExpenseNotFound
	}
	exp := FromDataModel(data)

	validator := validation.NewValidator()
	if dto.Description != nil {
		validator.Field("description", strings.TrimSpace(*dto.Description)).Required().MaxLength(500)
	}
	if dto.Amount != nil {
		validator.Field("amount", *dto.Amount).NonNegative(errors.ErrCodeInvalidAmount)
	}
	if dto.Date != nil {
		validator.Field("date", *dto.Date).Required().ISODate()
	}
	if appErr := validator.Validate(); appErr != nil {
		return nil, appErr
	}

	if dto.Date != nil {
		parsed, appErr := validation.ParseDate("date", *dto.Date, s.location)
		if appErr != nil {
			return nil, appErr
		}
		exp.Date = *parsed
	}
	if dto.Amount != nil {
		exp.Amount = *dto.Amount
	}
	if dto.Description != nil {
		exp.Description = strings.TrimSpace(*dto.Description)
	}
	if dto.Category != nil {
		cat, err := s.resolveCategory(ctx, *dto.Category)
		if err != nil {
			return nil, err
		}
		exp.CategoryID = cat.ID
		exp.CategoryName = cat.Name
	}
	if dto.MerchantName != nil {
		exp.MerchantName = dto.MerchantName
	}
	if dto.Notes != nil {
		exp.Notes = dto.Notes
	}
	exp.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, ToDataModel(exp)); err != nil {
		s.logger.Error("failed to update expense", "expense_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update expense", err)
	}
	exp.Date = period.DateOf(exp.Date)
	if exp.CategoryName == "" {
		if err := s.attachCategoryNames(ctx, []*Expense{exp}); err != nil {
			return nil, err
		}
	}
	return exp, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errors.NewInternalError("failed to load expense", err)
	}
	if data == nil {
		return errors.ErrExpenseNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete expense", "expense_id", id, "error", err)
		return errors.NewInternalError("failed to delete expense", err)
	}
	s.logger.Info("expense deleted", "expense_id", id, "subject", errors.SubjectFromContext(ctx))
	return nil
}

// ListExpenses resolves a caller filter into a ledger query. Filtering by a
// parent category includes its children.
func (s *Service) ListExpenses(ctx context.Context, filter ListFilter) ([]*Expense, error) {
	q, err := s.buildQuery(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.Find(ctx, q)
}

// Find runs a ledger query and attaches category names.
func (s *Service) Find(ctx context.Context, q Query) ([]*Expense, error) {
	data, err := s.repo.Query(ctx, q)
	if err != nil {
		s.logger.Error("failed to query expenses", "error", err)
		return nil, errors.NewInternalError("failed to query expenses", err)
	}
	expenses := FromDataModelSlice(data)
	if err := s.attachCategoryNames(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// Between returns every expense dated inside r.
func (s *Service) Between(ctx context.Context, r period.Range) ([]*Expense, error) {
	return s.Find(ctx, Query{From: &r.Start, To: &r.End})
}

func (s *Service) buildQuery(ctx context.Context, filter ListFilter) (Query, error) {
	q := Query{
		Search: strings.TrimSpace(filter.Search),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	if q.Limit <= 0 {
		q.Limit = defaultListLimit
	}
	if q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	from, appErr := validation.ParseDate("from", filter.From, s.location)
	if appErr != nil {
		return q, appErr
	}
	to, appErr := validation.ParseDate("to", filter.To, s.location)
	if appErr != nil {
		return q, appErr
	}
	if from != nil && to != nil && to.Before(*from) {
		return q, errors.NewValidationFieldError("to", "to must not be before from", errors.ErrCodeInvalidDate)
	}
	q.From, q.To = from, to

	for field, raw := range map[string]string{"min_amount": filter.MinAmount, "max_amount": filter.MaxAmount} {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return q, errors.NewValidationFieldError(field, fmt.Sprintf("%s must be a number", field), errors.ErrCodeInvalidAmount)
		}
		if field == "min_amount" {
			q.MinAmount = &d
		} else {
			q.MaxAmount = &d
		}
	}

	if filter.Source != "" {
		src := Source(strings.ToUpper(filter.Source))
		if src != SourceManual && src != SourceBankImport {
			return q, errors.NewValidationFieldError("source", "source must be MANUAL or BANK_IMPORT", errors.ErrCodeValidationFailed)
		}
		q.Source = src
	}

	if filter.Category != "" {
		cat, err := s.categories.GetByName(ctx, filter.Category)
		if err != nil {
			if errors.IsNotFound(err) {
				return q, errors.NewValidationFieldError("category", fmt.Sprintf("category %q does not exist", filter.Category), errors.ErrCodeInvalidCategory)
			}
			return q, err
		}
		q.CategoryIDs = []int64{cat.ID}
		if !cat.IsChild() {
			all, err := s.categories.ByID(ctx)
			if err != nil {
				return q, err
			}
			for _, c := range all {
				if c.ParentID != nil && *c.ParentID == cat.ID {
					q.CategoryIDs = append(q.CategoryIDs, c.ID)
				}
			}
		}
	}
	return q, nil
}

func (s *Service) attachCategoryNames(ctx context.Context, expenses []*Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	byID, err := s.categories.ByID(ctx)
	if err != nil {
		return err
	}
	for _, e := range expenses {
		if c, ok := byID[e.CategoryID]; ok {
			e.CategoryName = c.Name
		}
	}
	return nil
}
