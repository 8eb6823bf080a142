package category_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	appErrors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/category"
	categoryDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/category"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
)

func TestCategoryService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Category Service Suite")
}

// MockRepository implements category.RepositoryAPI for testing
type MockRepository struct {
	categories map[int64]*categoryDatamodel.BudgetCategory
	inUse      map[int64]bool
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		categories: make(map[int64]*categoryDatamodel.BudgetCategory),
		inUse:      make(map[int64]bool),
		nextID:     1,
	}
}

func (m *MockRepository) GetAll(ctx context.Context) ([]*categoryDatamodel.BudgetCategory, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*categoryDatamodel.BudgetCategory
	for _, cat := range m.categories {
		copied := *cat
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*categoryDatamodel.BudgetCategory, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	cat, ok := m.categories[id]
	if !ok {
		return nil, nil
	}
	copied := *cat
	return &copied, nil
}

func (m *MockRepository) GetByName(ctx context.Context, name string) (*categoryDatamodel.BudgetCategory, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, cat := range m.categories {
		if strings.EqualFold(cat.Name, name) {
			copied := *cat
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) Create(ctx context.Context, cat *categoryDatamodel.BudgetCategory) error {
	if m.shouldFail {
		return m.failError
	}
	cat.ID = m.nextID
	m.nextID++
	copied := *cat
	m.categories[cat.ID] = &copied
	return nil
}

func (m *MockRepository) Update(ctx context.Context, cat *categoryDatamodel.BudgetCategory) error {
	if m.shouldFail {
		return m.failError
	}
	copied := *cat
	m.categories[cat.ID] = &copied
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	if m.shouldFail {
		return m.failError
	}
	delete(m.categories, id)
	return nil
}

func (m *MockRepository) HasLedgerRows(ctx context.Context, id int64) (bool, error) {
	return m.inUse[id], nil
}

func (m *MockRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	for _, cat := range m.categories {
		if cat.ParentID != nil && *cat.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

// Helper methods for testing
func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func (m *MockRepository) Add(name string, p period.Period, budget int64, parentID *int64, active bool) int64 {
	cat := &categoryDatamodel.BudgetCategory{
		ID:           m.nextID,
		Name:         name,
		ParentID:     parentID,
		Period:       p.String(),
		BudgetAmount: decimal.NewFromInt(budget),
		IsActive:     active,
	}
	m.nextID++
	m.categories[cat.ID] = cat
	return cat.ID
}

func expectAppError(err error, errType appErrors.ErrorType) {
	ExpectWithOffset(1, err).To(HaveOccurred())
	appErr, ok := appErrors.IsAppError(err)
	ExpectWithOffset(1, ok).To(BeTrue())
	ExpectWithOffset(1, appErr.Type).To(Equal(errType))
}

var _ = Describe("Category Service", func() {
	var (
		mockRepo *MockRepository
		service  *category.Service
		logger   *slog.Logger
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = category.NewService(mockRepo, logger)
	})

	Describe("ListCategories", func() {
		BeforeEach(func() {
			food := mockRepo.Add("Food", period.Monthly, 100, nil, true)
			mockRepo.Add("Groceries", period.Monthly, 600, &food, true)
			mockRepo.Add("Dining", period.Monthly, 200, &food, true)
			mockRepo.Add("Snacks", period.Monthly, 50, &food, false)
			mockRepo.Add("Fuel", period.Weekly, 80, nil, true)
			mockRepo.Add("Old", period.Monthly, 10, nil, false)
		})

		It("should return active trees with sorted children", func() {
			trees, err := service.ListCategories(ctx, category.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(trees).To(HaveLen(2))
			Expect(trees[0].Parent.Name).To(Equal("Food"))
			Expect(trees[0].Children).To(HaveLen(2))
			Expect(trees[0].Children[0].Name).To(Equal("Dining"))
			Expect(trees[0].Children[1].Name).To(Equal("Groceries"))
			Expect(trees[1].Parent.Name).To(Equal("Fuel"))
		})

		It("should filter by period", func() {
			trees, err := service.ActiveTrees(ctx, period.Weekly)
			Expect(err).NotTo(HaveOccurred())
			Expect(trees).To(HaveLen(1))
			Expect(trees[0].Parent.Name).To(Equal("Fuel"))
		})

		It("should include inactive categories on request", func() {
			trees, err := service.ListCategories(ctx, category.ListFilter{IncludeInactive: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(trees).To(HaveLen(3))
			Expect(trees[0].Children).To(HaveLen(3))
		})

		It("should roll up budgets", func() {
			trees, err := service.ActiveTrees(ctx, period.Monthly)
			Expect(err).NotTo(HaveOccurred())
			Expect(trees[0].Budget().Equal(decimal.NewFromInt(900))).To(BeTrue())
		})

		It("should reject unknown periods", func() {
			_, err := service.ListCategories(ctx, category.ListFilter{Period: "DAILY"})
			expectAppError(err, appErrors.ErrorTypeValidation)
		})

		It("should wrap repository errors", func() {
			mockRepo.SetShouldFail(true, errors.New("database error"))
			trees, err := service.ListCategories(ctx, category.ListFilter{})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("database error"))
			Expect(trees).To(BeNil())
		})
	})

	Describe("Create", func() {
		It("should create a top-level category", func() {
			created, err := service.Create(ctx, &category.CreateCategoryDTO{
				Name:         " Groceries ",
				Period:       "monthly",
				BudgetAmount: decimal.NewFromInt(600),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(BeNumerically(">", 0))
			Expect(created.Name).To(Equal("Groceries"))
			Expect(created.Period).To(Equal(period.Monthly))
			Expect(created.IsActive).To(BeTrue())
		})

		It("should attach a child to its parent by name", func() {
			food := mockRepo.Add("Food", period.Monthly, 0, nil, true)
			created, err := service.Create(ctx, &category.CreateCategoryDTO{
				Name:         "Groceries",
				Parent:       "food",
				Period:       "MONTHLY",
				BudgetAmount: decimal.NewFromInt(600),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ParentID).NotTo(BeNil())
			Expect(*created.ParentID).To(Equal(food))
		})

		It("should refuse a grandchild", func() {
			food := mockRepo.Add("Food", period.Monthly, 0, nil, true)
			mockRepo.Add("Groceries", period.Monthly, 0, &food, true)
			_, err := service.Create(ctx, &category.CreateCategoryDTO{
				Name:   "Fruit",
				Parent: "Groceries",
				Period: "MONTHLY",
			})
			expectAppError(err, appErrors.ErrorTypeValidation)
		})

		It("should reject a negative budget and a bad period together", func() {
			_, err := service.Create(ctx, &category.CreateCategoryDTO{
				Name:         "Groceries",
				Period:       "DAILY",
				BudgetAmount: decimal.NewFromInt(-1),
			})
			expectAppError(err, appErrors.ErrorTypeValidation)
			appErr, _ := appErrors.IsAppError(err)
			Expect(appErr.Details.(appErrors.ValidationErrors).Errors).To(HaveLen(2))
		})

		It("should conflict on duplicate names", func() {
			mockRepo.Add("Groceries", period.Monthly, 0, nil, true)
			_, err := service.Create(ctx, &category.CreateCategoryDTO{Name: "groceries", Period: "MONTHLY"})
			expectAppError(err, appErrors.ErrorTypeConflict)
		})
	})

	Describe("Upsert", func() {
		It("should update the existing category in place", func() {
			id := mockRepo.Add("Groceries", period.Monthly, 500, nil, true)
			updated, err := service.Upsert(ctx, &category.CreateCategoryDTO{
				Name:         "Groceries",
				Period:       "WEEKLY",
				BudgetAmount: decimal.NewFromInt(150),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ID).To(Equal(id))
			Expect(updated.Period).To(Equal(period.Weekly))
			Expect(updated.BudgetAmount.Equal(decimal.NewFromInt(150))).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("should not nest a category that has children", func() {
			food := mockRepo.Add("Food", period.Monthly, 0, nil, true)
			mockRepo.Add("Groceries", period.Monthly, 0, &food, true)
			mockRepo.Add("Living", period.Monthly, 0, nil, true)

			parent := "Living"
			_, err := service.Update(ctx, food, &category.UpdateCategoryDTO{Parent: &parent})
			expectAppError(err, appErrors.ErrorTypeValidation)
		})

		It("should return not found for unknown ids", func() {
			_, err := service.Update(ctx, 42, &category.UpdateCategoryDTO{})
			Expect(appErrors.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("should conflict while ledger rows reference the category", func() {
			id := mockRepo.Add("Groceries", period.Monthly, 0, nil, true)
			mockRepo.inUse[id] = true

			err := service.Delete(ctx, id)
			expectAppError(err, appErrors.ErrorTypeConflict)
			Expect(mockRepo.categories).To(HaveKey(id))
		})

		It("should conflict while children exist", func() {
			food := mockRepo.Add("Food", period.Monthly, 0, nil, true)
			mockRepo.Add("Groceries", period.Monthly, 0, &food, true)
			expectAppError(service.Delete(ctx, food), appErrors.ErrorTypeConflict)
		})

		It("should delete unused categories", func() {
			id := mockRepo.Add("Groceries", period.Monthly, 0, nil, true)
			Expect(service.Delete(ctx, id)).To(Succeed())
			Expect(mockRepo.categories).NotTo(HaveKey(id))
		})
	})

	Describe("Activate and Deactivate", func() {
		It("should toggle the active flag", func() {
			id := mockRepo.Add("Groceries", period.Monthly, 0, nil, true)

			cat, err := service.Deactivate(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(cat.IsActive).To(BeFalse())
			Expect(mockRepo.categories[id].IsActive).To(BeFalse())

			cat, err = service.Activate(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(cat.IsActive).To(BeTrue())
		})
	})
})
