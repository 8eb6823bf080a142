package rule_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	appErrors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/category"
	"github.com/frahmantamala/budget-tracker/internal/rule"
)

type stubCategories struct{}

func (stubCategories) GetByName(ctx context.Context, name string) (*category.Category, error) {
	for _, c := range []*category.Category{
		{ID: groceries.ID, Name: groceries.Name, IsActive: true},
		{ID: transport.ID, Name: transport.Name, IsActive: true},
	} {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, appErrors.ErrCategoryNotFound
}

var _ = Describe("Rule Service", func() {
	var (
		mockRepo *MockRepository
		service  *rule.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = rule.NewService(mockRepo, stubCategories{}, logger)
	})

	Describe("Create", func() {
		It("should create a rule for a known category", func() {
			created, err := service.Create(ctx, &rule.CreateRuleDTO{
				Pattern:   "woolworths",
				MatchType: "contains",
				Category:  "groceries",
				Priority:  10,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(BeNumerically(">", 0))
			Expect(created.MatchType).To(Equal(rule.MatchContains))
			Expect(created.CategoryName).To(Equal("Groceries"))
			Expect(mockRepo.rules).To(HaveLen(1))
		})

		It("should reject unknown categories as validation errors", func() {
			_, err := service.Create(ctx, &rule.CreateRuleDTO{Pattern: "x", MatchType: "CONTAINS", Category: "Nope"})
			appErr, ok := appErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(appErrors.ErrorTypeValidation))
		})

		It("should reject unknown match types", func() {
			_, err := service.Create(ctx, &rule.CreateRuleDTO{Pattern: "x", MatchType: "FUZZY", Category: "Groceries"})
			Expect(err).To(HaveOccurred())
			Expect(mockRepo.rules).To(BeEmpty())
		})

		It("should reject regex patterns that do not compile", func() {
			_, err := service.Create(ctx, &rule.CreateRuleDTO{Pattern: "([", MatchType: "REGEX", Category: "Groceries"})
			appErr, ok := appErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(appErrors.ErrCodeInvalidPattern))
		})
	})

	Describe("Update and Delete", func() {
		It("should change priority and deactivate", func() {
			created, err := service.Create(ctx, &rule.CreateRuleDTO{Pattern: "opal", MatchType: "STARTS_WITH", Category: "Transport"})
			Expect(err).NotTo(HaveOccurred())

			priority, inactive := 7, false
			updated, err := service.Update(ctx, created.ID, &rule.UpdateRuleDTO{Priority: &priority, IsActive: &inactive})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Priority).To(Equal(7))
			Expect(updated.IsActive).To(BeFalse())

			active, err := service.ListRules(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeEmpty())

			Expect(service.Delete(ctx, created.ID)).To(Succeed())
			Expect(mockRepo.rules).To(BeEmpty())
		})

		It("should report unknown ids as not found", func() {
			Expect(appErrors.IsNotFound(service.Delete(ctx, 99))).To(BeTrue())
		})
	})

	Describe("ListRules", func() {
		It("should return rules in evaluation order", func() {
			mockRepo.Add("b", rule.MatchContains, 1, groceries)
			mockRepo.Add("a", rule.MatchContains, 1, groceries)
			mockRepo.Add("z", rule.MatchContains, 5, groceries)

			rules, err := service.ListRules(ctx, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(rules[0].Pattern).To(Equal("z"))
			Expect(rules[1].Pattern).To(Equal("a"))
			Expect(rules[2].Pattern).To(Equal("b"))
		})

		It("should list broken regex rules without compiling them", func() {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
			service = rule.NewService(mockRepo, stubCategories{}, logger)
			mockRepo.Add("([unclosed", rule.MatchRegex, 3, groceries)
			mockRepo.Add("coles", rule.MatchContains, 1, groceries)

			rules, err := service.ListRules(ctx, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(rules).To(HaveLen(2))
			Expect(rules[0].Pattern).To(Equal("([unclosed"))
			Expect(logs.String()).To(BeEmpty())
		})
	})
})
