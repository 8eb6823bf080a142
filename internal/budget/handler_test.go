package budget_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/budget-tracker/internal/budget"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
	"github.com/frahmantamala/budget-tracker/internal/transport"
)

var _ = Describe("Budget Handler", func() {
	var router chi.Router

	BeforeEach(func() {
		cats := &MockCategories{}
		ledger := &MockLedger{}
		groceries := cats.Add("Groceries", nil, period.Monthly, "600")
		ledger.Spend(groceries, date(2026, time.March, 2), "120", "Woolworths")
		ledger.Spend(groceries, date(2026, time.March, 9), "80", "Coles")

		service := newBudgetService(cats, ledger, &MockIncome{}, date(2026, time.March, 20))
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := budget.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/budget/summary", handler.GetSummary)
		router.Get("/budget/vs-actuals", handler.GetVsActuals)
		router.Get("/budget/balance", handler.GetBalance)
		router.Get("/budget/insights", handler.GetInsights)
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	It("should serve the monthly summary", func() {
		w := get("/budget/summary?period=MONTHLY&date=2026-03-15")
		Expect(w.Code).To(Equal(http.StatusOK))

		var summary budget.BudgetSummary
		Expect(json.NewDecoder(w.Body).Decode(&summary)).To(Succeed())
		Expect(summary.Categories).To(HaveLen(1))
		Expect(summary.Categories[0].ActualAmount).To(Equal(200.0))
		Expect(summary.Categories[0].Status).To(Equal(budget.StatusOnTrack))
	})

	It("should reject an unknown category filter", func() {
		w := get("/budget/summary?category=Holidays")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("VALIDATION"))
	})

	It("should reject a malformed year", func() {
		Expect(get("/budget/vs-actuals?year=twenty").Code).To(Equal(http.StatusBadRequest))
		Expect(get("/budget/vs-actuals?year=1800").Code).To(Equal(http.StatusBadRequest))
	})

	It("should serve the current year by default", func() {
		w := get("/budget/vs-actuals")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp budget.BudgetVsActualsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Year).To(Equal(2026))
		Expect(resp.TotalAnnualBudget).To(Equal(7200.0))
		Expect(resp.TotalYTDActual).To(Equal(200.0))
	})

	It("should serve balance and insights", func() {
		w := get("/budget/balance?period=MONTHLY")
		Expect(w.Code).To(Equal(http.StatusOK))
		var balance budget.BalanceResponse
		Expect(json.NewDecoder(w.Body).Decode(&balance)).To(Succeed())
		Expect(balance.BudgetedExpenses).To(Equal(600.0))
		Expect(balance.ActualExpenses).To(Equal(200.0))
		Expect(balance.ActualBalance).To(Equal(-200.0))

		w = get("/budget/insights?period=WEEKLY&date=2026-03-04")
		Expect(w.Code).To(Equal(http.StatusOK))
		var insights budget.SpendingInsightsResponse
		Expect(json.NewDecoder(w.Body).Decode(&insights)).To(Succeed())
		Expect(insights.Insights).To(BeEmpty())
	})

	It("should reject an unsupported period", func() {
		Expect(get("/budget/insights?period=HOURLY").Code).To(Equal(http.StatusBadRequest))
	})
})
