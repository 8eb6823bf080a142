package rule_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/budget-tracker/internal/rule"
	transportpkg "github.com/frahmantamala/budget-tracker/internal/transport"
)

var _ = Describe("Rule Handler", func() {
	var (
		mockRepo *MockRepository
		router   chi.Router
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := rule.NewHandler(
			transportpkg.NewBaseHandler(logger),
			rule.NewService(mockRepo, stubCategories{}, logger),
			rule.NewEngine(mockRepo, logger),
		)

		router = chi.NewRouter()
		router.Get("/rules", handler.GetRules)
		router.Post("/rules", handler.CreateRule)
		router.Delete("/rules/{id}", handler.DeleteRule)
		router.Post("/rules/suggest", handler.SuggestCategories)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("should create a rule and return it", func() {
		w := do(http.MethodPost, "/rules", `{"pattern":"woolworths","match_type":"contains","category":"Groceries","priority":10}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created rule.RuleResponse
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.MatchType).To(Equal("CONTAINS"))
		Expect(created.CategoryName).To(Equal("Groceries"))
		Expect(mockRepo.rules).To(HaveLen(1))
	})

	It("should reject an invalid regex with 400", func() {
		w := do(http.MethodPost, "/rules", `{"pattern":"([a-z","match_type":"REGEX","category":"Groceries"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(mockRepo.rules).To(BeEmpty())
	})

	It("should list rules in evaluation order", func() {
		mockRepo.Add("coles", rule.MatchContains, 1, groceries)
		mockRepo.Add("uber", rule.MatchStartsWith, 7, transport)

		w := do(http.MethodGet, "/rules", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp rule.RulesResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Rules).To(HaveLen(2))
		Expect(resp.Rules[0].Pattern).To(Equal("uber"))
		Expect(resp.Rules[1].Pattern).To(Equal("coles"))
	})

	It("should delete a rule", func() {
		r := mockRepo.Add("coles", rule.MatchContains, 1, groceries)
		w := do(http.MethodDelete, "/rules/1", "")
		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(r.ID).To(Equal(int64(1)))
		Expect(mockRepo.rules).To(BeEmpty())
	})

	It("should suggest categories for a batch of descriptions", func() {
		mockRepo.Add("woolworths", rule.MatchContains, 10, groceries)

		w := do(http.MethodPost, "/rules/suggest", `{"descriptions":["WOOLWORTHS 123 SYDNEY","Corner bakery"]}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp rule.SuggestionsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Matched).To(Equal(1))
		Expect(resp.Unmatched).To(Equal(1))
		Expect(resp.Suggestions[0].CategoryName).To(Equal("Groceries"))
		Expect(resp.Suggestions[1].Matched).To(BeFalse())
	})

	It("should require at least one description", func() {
		w := do(http.MethodPost, "/rules/suggest", `{}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
