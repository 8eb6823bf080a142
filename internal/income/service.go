package income

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/core/common/validation"
	incomeDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/income"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
)

// Query selects income entries. Dates are inclusive calendar days.
type Query struct {
	From     *time.Time
	To       *time.Time
	SourceID *int64
}

// RepositoryAPI stores income sources and entries. Single-row lookups return
// nil, nil when nothing matches.
type RepositoryAPI interface {
	ListSources(ctx context.Context) ([]*incomeDatamodel.IncomeSource, error)
	GetSourceByID(ctx context.Context, id int64) (*incomeDatamodel.IncomeSource, error)
	GetSourceByName(ctx context.Context, name string) (*incomeDatamodel.IncomeSource, error)
	CreateSource(ctx context.Context, source *incomeDatamodel.IncomeSource) error
	UpdateSource(ctx context.Context, source *incomeDatamodel.IncomeSource) error
	DeleteSource(ctx context.Context, id int64) error
	HasIncome(ctx context.Context, sourceID int64) (bool, error)

	CreateIncome(ctx context.Context, income *incomeDatamodel.Income) error
	GetIncomeByID(ctx context.Context, id int64) (*incomeDatamodel.Income, error)
	DeleteIncome(ctx context.Context, id int64) error
	ListIncome(ctx context.Context, q Query) ([]*incomeDatamodel.Income, error)
}

type Service struct {
	repo     RepositoryAPI
	location *time.Location
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, location *time.Location, logger *slog.Logger) *Service {
	if location == nil {
		location = time.Local
	}
	return &Service{repo: repo, location: location, logger: logger}
}

func (s *Service) ListSources(ctx context.Context, includeInactive bool) ([]*Source, error) {
	data, err := s.repo.ListSources(ctx)
	if err != nil {
		s.logger.Error("failed to list income sources", "error", err)
		return nil, errors.NewInternalError("failed to list income sources", err)
	}
	sources := make([]*Source, 0, len(data))
	for _, d := range data {
		if !d.IsActive && !includeInactive {
			continue
		}
		sources = append(sources, SourceFromDataModel(d))
	}
	return sources, nil
}

// ActiveSources is the set used for expected-income estimates.
func (s *Service) ActiveSources(ctx context.Context) ([]*Source, error) {
	return s.ListSources(ctx, false)
}

func validateSource(name string, payDay int, expected decimal.Decimal) *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("name", strings.TrimSpace(name)).
		Required().
		MaxLength(100)
	validator.Field("pay_day", int64(payDay)).
		MinInt(1, errors.ErrCodeInvalidPayDay).
		MaxInt(31, errors.ErrCodeInvalidPayDay)
	validator.Field("expected_amount", expected).
		NonNegative(errors.ErrCodeInvalidAmount)
	return validator.Validate()
}

func (s *Service) CreateSource(ctx context.Context, dto *CreateSourceDTO) (*Source, error) {
	if appErr := validateSource(dto.Name, dto.PayDay, dto.ExpectedAmount); appErr != nil {
		return nil, appErr
	}
	name := strings.TrimSpace(dto.Name)

	existing, err := s.repo.GetSourceByName(ctx, name)
	if err != nil {
		return nil, errors.NewInternalError("failed to check income source", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError(fmt.Sprintf("income source %q already exists", name), errors.ErrCodeIncomeSourceExist)
	}

	now := time.Now()
	source := &Source{
		Name:           name,
		ExpectedAmount: dto.ExpectedAmount,
		PayDay:         dto.PayDay,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	data := SourceToDataModel(source)
	if err := s.repo.CreateSource(ctx, data); err != nil {
		s.logger.Error("failed to create income source", "name", name, "error", err)
		return nil, errors.NewInternalError("failed to create income source", err)
	}
	source.ID = data.ID

	s.logger.Info("income source created", "source_id", source.ID, "name", source.Name)
	return source, nil
}

func (s *Service) getSource(ctx context.Context, id int64) (*Source, error) {
	data, err := s.repo.GetSourceByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load income source", err)
	}
	if data == nil {
		return nil, errors.ErrIncomeSourceNotFound
	}
	return SourceFromDataModel(data), nil
}

func (s *Service) UpdateSource(ctx context.Context, id int64, dto *UpdateSourceDTO) (*Source, error) {
	source, err := s.getSource(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if !strings.EqualFold(name, source.Name) {
			existing, err := s.repo.GetSourceByName(ctx, name)
			if err != nil {
				return nil, errors.NewInternalError("failed to check income source", err)
			}
			if existing != nil && existing.ID != id {
				return nil, errors.NewConflictError(fmt.Sprintf("income source %q already exists", name), errors.ErrCodeIncomeSourceExist)
			}
		}
		source.Name = name
	}
	if dto.ExpectedAmount != nil {
		source.ExpectedAmount = *dto.ExpectedAmount
	}
	if dto.PayDay != nil {
		source.PayDay = *dto.PayDay
	}
	if dto.IsActive != nil {
		source.IsActive = *dto.IsActive
	}
	if appErr := validateSource(source.Name, source.PayDay, source.ExpectedAmount); appErr != nil {
		return nil, appErr
	}

	source.UpdatedAt = time.Now()
	if err := s.repo.UpdateSource(ctx, SourceToDataModel(source)); err != nil {
		s.logger.Error("failed to update income source", "source_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update income source", err)
	}
	s.logger.Info("income source updated", "source_id", id)
	return source, nil
}

func (s *Service) DeleteSource(ctx context.Context, id int64) error {
	if _, err := s.getSource(ctx, id); err != nil {
		return err
	}
	used, err := s.repo.HasIncome(ctx, id)
	if err != nil {
		return errors.NewInternalError("failed to check income source usage", err)
	}
	if used {
		return errors.ErrIncomeSourceInUse
	}
	if err := s.repo.DeleteSource(ctx, id); err != nil {
		s.logger.Error("failed to delete income source", "source_id", id, "error", err)
		return errors.NewInternalError("failed to delete income source", err)
	}
	s.logger.Info("income source deleted", "source_id", id)
	return nil
}

func (s *Service) sourceByName(ctx context.Context, name string) (*Source, error) {
	data, err := s.repo.GetSourceByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, errors.NewInternalError("failed to load income source", err)
	}
	if data == nil {
		return nil, errors.NewValidationFieldError("source", fmt.Sprintf("income source %q does not exist", name), errors.ErrCodeInvalidIncomeSrc)
	}
	return SourceFromDataModel(data), nil
}

func (s *Service) CreateIncome(ctx context.Context, dto *CreateIncomeDTO) (*Income, error) {
	validator := validation.NewValidator()
	validator.Field("source", strings.TrimSpace(dto.Source)).
		Required()
	validator.Field("amount", dto.Amount).
		NonNegative(errors.ErrCodeInvalidAmount)
	validator.Field("date", dto.Date).
		ISODate()
	validator.Field("description", dto.Description).
		MaxLength(500)
	if appErr := validator.Validate(); appErr != nil {
		return nil, appErr
	}

	source, err := s.sourceByName(ctx, dto.Source)
	if err != nil {
		return nil, err
	}

	date := time.Now().In(s.location)
	if dto.Date != "" {
		parsed, appErr := validation.ParseDate("date", dto.Date, s.location)
		if appErr != nil {
			return nil, appErr
		}
		date = *parsed
	}

	description := strings.TrimSpace(dto.Description)
	if description == "" {
		description = source.Name
	}

	now := time.Now()
	entry := &Income{
		Date:        period.DateOf(date),
		Amount:      dto.Amount,
		SourceID:    source.ID,
		SourceName:  source.Name,
		Description: description,
		Notes:       dto.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	data := ToDataModel(entry)
	if err := s.repo.CreateIncome(ctx, data); err != nil {
		s.logger.Error("failed to create income", "source", source.Name, "error", err)
		return nil, errors.NewInternalError("failed to create income", err)
	}
	entry.ID = data.ID

	s.logger.Info("income recorded", "income_id", entry.ID, "source", source.Name, "amount", entry.Amount.String())
	return entry, nil
}

func (s *Service) DeleteIncome(ctx context.Context, id int64) error {
	data, err := s.repo.GetIncomeByID(ctx, id)
	if err != nil {
		return errors.NewInternalError("failed to load income", err)
	}
	if data == nil {
		return errors.ErrIncomeNotFound
	}
	if err := s.repo.DeleteIncome(ctx, id); err != nil {
		s.logger.Error("failed to delete income", "income_id", id, "error", err)
		return errors.NewInternalError("failed to delete income", err)
	}
	s.logger.Info("income deleted", "income_id", id)
	return nil
}

func (s *Service) ListIncome(ctx context.Context, filter ListFilter) ([]*Income, error) {
	from, appErr := validation.ParseDate("from", filter.From, s.location)
	if appErr != nil {
		return nil, appErr
	}
	to, appErr := validation.ParseDate("to", filter.To, s.location)
	if appErr != nil {
		return nil, appErr
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, errors.NewValidationFieldError("to", "to must not be before from", errors.ErrCodeInvalidDate)
	}

	q := Query{From: from, To: to}
	if strings.TrimSpace(filter.Source) != "" {
		source, err := s.sourceByName(ctx, filter.Source)
		if err != nil {
			return nil, err
		}
		q.SourceID = &source.ID
	}
	return s.find(ctx, q)
}

// Between returns every income entry dated inside r.
func (s *Service) Between(ctx context.Context, r period.Range) ([]*Income, error) {
	return s.find(ctx, Query{From: &r.Start, To: &r.End})
}

func (s *Service) find(ctx context.Context, q Query) ([]*Income, error) {
	data, err := s.repo.ListIncome(ctx, q)
	if err != nil {
		s.logger.Error("failed to list income", "error", err)
		return nil, errors.NewInternalError("failed to list income", err)
	}
	entries := make([]*Income, 0, len(data))
	for _, d := range data {
		entries = append(entries, FromDataModel(d))
	}
	return entries, nil
}
