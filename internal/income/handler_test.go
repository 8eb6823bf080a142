package income_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/budget-tracker/internal/income"
	"github.com/frahmantamala/budget-tracker/internal/transport"
)

var _ = Describe("Income Handler Integration", func() {
	var router chi.Router

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := income.NewHandler(&transport.BaseHandler{Logger: slogger}, newService())

		router = chi.NewRouter()
		router.Get("/income", handler.GetIncome)
		router.Post("/income", handler.CreateIncome)
		router.Delete("/income/{id}", handler.DeleteIncome)
		router.Get("/income/sources", handler.GetSources)
		router.Post("/income/sources", handler.CreateSource)
		router.Put("/income/sources/{id}", handler.UpdateSource)
		router.Delete("/income/sources/{id}", handler.DeleteSource)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("should record income against a source", func() {
		w := do(http.MethodPost, "/income/sources", `{"name":"Salary","expected_amount":5000,"pay_day":15}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var src income.SourceResponse
		Expect(json.NewDecoder(w.Body).Decode(&src)).To(Succeed())
		Expect(src.ExpectedAmount).To(Equal(5000.0))

		w = do(http.MethodPost, "/income", `{"date":"2026-03-15","amount":"5000.00","source":"Salary"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(http.MethodGet, "/income?from=2026-03-01&to=2026-03-31", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var list income.IncomeListResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Income).To(HaveLen(1))
		Expect(list.Total).To(Equal(5000.0))

		w = do(http.MethodDelete, "/income/sources/"+strconv.FormatInt(src.ID, 10), "")
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("should validate pay days", func() {
		w := do(http.MethodPost, "/income/sources", `{"name":"Salary","pay_day":40}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_PAY_DAY"))
	})

	It("should update a source", func() {
		w := do(http.MethodPost, "/income/sources", `{"name":"Salary","pay_day":15}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var src income.SourceResponse
		Expect(json.NewDecoder(w.Body).Decode(&src)).To(Succeed())

		w = do(http.MethodPut, "/income/sources/"+strconv.FormatInt(src.ID, 10), `{"pay_day":31}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(json.NewDecoder(w.Body).Decode(&src)).To(Succeed())
		Expect(src.PayDay).To(Equal(31))
	})

	It("should return 404 when deleting a missing entry", func() {
		w := do(http.MethodDelete, "/income/77", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
