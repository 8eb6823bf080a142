package expense_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/budget-tracker/internal/expense"
	"github.com/frahmantamala/budget-tracker/internal/transport"
)

var _ = Describe("Expense Handler Integration", func() {
	var (
		f      *fixture
		router chi.Router
	)

	BeforeEach(func() {
		f = newFixture()
		f.category("Groceries", "", 600)
		f.category("Transport", "", 200)
		f.rule("woolworths", "CONTAINS", "Groceries", 10)

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := expense.NewHandler(&transport.BaseHandler{Logger: slogger}, f.service, f.importer)

		router = chi.NewRouter()
		router.Get("/expenses", handler.ListExpenses)
		router.Post("/expenses", handler.CreateExpense)
		router.Post("/expenses/import", handler.ImportExpenses)
		router.Get("/expenses/{id}", handler.GetExpense)
		router.Delete("/expenses/{id}", handler.DeleteExpense)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("should create and fetch an expense", func() {
		w := do(http.MethodPost, "/expenses", `{"date":"2026-03-05","amount":"18.40","description":"Woolworths Town Hall"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created expense.ExpenseResponse
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.CategoryName).To(Equal("Groceries"))
		Expect(created.Amount).To(Equal(18.4))
		Expect(created.Date).To(Equal("2026-03-05"))

		w = do(http.MethodGet, "/expenses/"+strconv.FormatInt(created.ID, 10), "")
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("should reject an uncategorizable expense", func() {
		w := do(http.MethodPost, "/expenses", `{"date":"2026-03-05","amount":5,"description":"???"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("VALIDATION_ERROR"))
	})

	It("should return 404 for a missing expense", func() {
		w := do(http.MethodDelete, "/expenses/42", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should import CSV text sent as JSON", func() {
		body, err := json.Marshal(map[string]interface{}{
			"csv": "date,amount,description\n2026-03-01,45.20,WOOLWORTHS\n2026-03-02,3.00,Mystery\n",
		})
		Expect(err).NotTo(HaveOccurred())

		w := do(http.MethodPost, "/expenses/import", string(body))
		Expect(w.Code).To(Equal(http.StatusCreated))

		var result expense.ImportResult
		Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
		Expect(result.Imported).To(Equal(1))
		Expect(result.Uncategorized).To(HaveLen(1))

		w = do(http.MethodGet, "/expenses?category=Groceries&from=2026-03-01&to=2026-03-31", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var list expense.ExpensesResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Expenses).To(HaveLen(1))
		Expect(list.Total).To(Equal(45.2))
	})

	It("should accept a multipart upload as a dry run", func() {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "statement.csv")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte("Date,Amount,Description\n01/03/2026,-9.50,Opal,\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(mw.WriteField("options", `{"category_mapping":{"opal":"Transport"}}`)).To(Succeed())
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/expenses/import?dry_run=true", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var result expense.ImportResult
		Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
		Expect(result.DryRun).To(BeTrue())
		Expect(result.Format).To(Equal("commbank"))
		Expect(result.Rows).To(HaveLen(1))
		Expect(result.Rows[0].Category).To(Equal("Transport"))
		Expect(f.count()).To(BeZero())
	})

	It("should require csv content", func() {
		w := do(http.MethodPost, "/expenses/import", `{"format":"generic"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
