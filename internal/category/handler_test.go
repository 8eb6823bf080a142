package category_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/budget-tracker/internal/category"
	categoryPostgres "github.com/frahmantamala/budget-tracker/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/expense"
	ruleDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/rule"
	"github.com/frahmantamala/budget-tracker/internal/transport"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		service *category.Service
		router  chi.Router
		slogger *slog.Logger
	)

	BeforeEach(func() {
		var err error
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&categoryDatamodel.BudgetCategory{}, &expenseDatamodel.Expense{}, &ruleDatamodel.CategorizationRule{})).To(Succeed())

		service = category.NewService(categoryPostgres.NewCategoryRepository(db), slogger)
		handler := category.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/categories", handler.GetCategories)
		router.Post("/categories", handler.CreateCategory)
		router.Put("/categories/{id}", handler.UpdateCategory)
		router.Delete("/categories/{id}", handler.DeleteCategory)
		router.Patch("/categories/{id}/deactivate", handler.DeactivateCategory)

		ctx := context.Background()
		_, err = service.Create(ctx, &category.CreateCategoryDTO{Name: "Food", Period: "MONTHLY", BudgetAmount: decimal.NewFromInt(100)})
		Expect(err).NotTo(HaveOccurred())
		_, err = service.Create(ctx, &category.CreateCategoryDTO{Name: "Groceries", Parent: "Food", Period: "MONTHLY", BudgetAmount: decimal.NewFromInt(600)})
		Expect(err).NotTo(HaveOccurred())
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("should list category trees", func() {
		w := do(http.MethodGet, "/categories", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Categories).To(HaveLen(1))
		Expect(response.Categories[0].Name).To(Equal("Food"))
		Expect(response.Categories[0].Children).To(HaveLen(1))
		Expect(response.Categories[0].Children[0].BudgetAmount).To(Equal(600.0))
	})

	It("should create a category from a JSON body", func() {
		w := do(http.MethodPost, "/categories", `{"name":"Fuel","period":"WEEKLY","budget_amount":80.5}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created category.CategoryResponse
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.Name).To(Equal("Fuel"))
		Expect(created.BudgetAmount).To(Equal(80.5))
	})

	It("should answer 400 for validation failures", func() {
		w := do(http.MethodPost, "/categories", `{"name":"Fuel","period":"DAILY"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("VALIDATION_ERROR"))
	})

	It("should answer 409 when deleting a parent", func() {
		food, err := service.GetByName(context.Background(), "Food")
		Expect(err).NotTo(HaveOccurred())

		w := do(http.MethodDelete, "/categories/"+jsonID(food.ID), "")
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("should answer 404 for unknown ids", func() {
		w := do(http.MethodPatch, "/categories/999/deactivate", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
