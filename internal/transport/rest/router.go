package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"

	"github.com/frahmantamala/budget-tracker/api"
	"github.com/frahmantamala/budget-tracker/internal/budget"
	"github.com/frahmantamala/budget-tracker/internal/category"
	"github.com/frahmantamala/budget-tracker/internal/expense"
	"github.com/frahmantamala/budget-tracker/internal/income"
	"github.com/frahmantamala/budget-tracker/internal/rule"
	"github.com/frahmantamala/budget-tracker/internal/transport/middleware"
	"github.com/frahmantamala/budget-tracker/internal/transport/swagger"
)

// Handlers groups the domain handlers. A nil handler leaves its routes out.
type Handlers struct {
	Budget   *budget.Handler
	Category *category.Handler
	Rule     *rule.Handler
	Expense  *expense.Handler
	Income   *income.Handler
}

const specPath = "/openapi.yml"

type Options struct {
	AllowedOrigins string
	// JWTSecret turns on bearer authentication for every route except health.
	JWTSecret string
	JWTIssuer string
	// OpenAPI, when set, validates requests against the document.
	OpenAPI *openapi3.T
	// Schema, when set, adds migration state to /health.
	Schema SchemaVersions
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, opts Options, logger *slog.Logger) error {
	healthHandler := NewHealthHandler(db, opts.Schema)

	// Apply global middleware
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Document)
	})
	router.Handle("/swagger/*", swagger.Handler(specPath, opts.JWTSecret != ""))

	var validator func(http.Handler) http.Handler
	if opts.OpenAPI != nil {
		v, err := middleware.OpenAPIValidator(opts.OpenAPI, logger)
		if err != nil {
			return err
		}
		validator = v
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Group(func(pr chi.Router) {
			if opts.JWTSecret != "" {
				pr.Use(middleware.BearerAuth(opts.JWTSecret, opts.JWTIssuer, logger))
			}
			if validator != nil {
				pr.Use(validator)
			}

			if h.Budget != nil {
				pr.Route("/budget", func(br chi.Router) {
					br.Get("/summary", h.Budget.GetSummary)
					br.Get("/vs-actuals", h.Budget.GetVsActuals)
					br.Get("/balance", h.Budget.GetBalance)
					br.Get("/insights", h.Budget.GetInsights)
				})
			}

			if h.Category != nil {
				pr.Route("/categories", func(cr chi.Router) {
					cr.Get("/", h.Category.GetCategories)
					cr.Post("/", h.Category.CreateCategory)
					cr.Put("/{id}", h.Category.UpdateCategory)
					cr.Delete("/{id}", h.Category.DeleteCategory)
					cr.Patch("/{id}/activate", h.Category.ActivateCategory)
					cr.Patch("/{id}/deactivate", h.Category.DeactivateCategory)
				})
			}

			if h.Rule != nil {
				pr.Route("/rules", func(rr chi.Router) {
					rr.Get("/", h.Rule.GetRules)
					rr.Post("/", h.Rule.CreateRule)
					rr.Post("/suggest", h.Rule.SuggestCategories)
					rr.Put("/{id}", h.Rule.UpdateRule)
					rr.Delete("/{id}", h.Rule.DeleteRule)
				})
			}

			if h.Expense != nil {
				pr.Route("/expenses", func(er chi.Router) {
					er.Get("/", h.Expense.ListExpenses)
					er.Post("/", h.Expense.CreateExpense)
					er.Post("/import", h.Expense.ImportExpenses)
					er.Get("/{id}", h.Expense.GetExpense)
					er.Put("/{id}", h.Expense.UpdateExpense)
					er.Delete("/{id}", h.Expense.DeleteExpense)
				})
			}

			if h.Income != nil {
				pr.Route("/income", func(ir chi.Router) {
					ir.Get("/", h.Income.GetIncome)
					ir.Post("/", h.Income.CreateIncome)
					ir.Delete("/{id}", h.Income.DeleteIncome)
					ir.Get("/sources", h.Income.GetSources)
					ir.Post("/sources", h.Income.CreateSource)
					ir.Put("/sources/{id}", h.Income.UpdateSource)
					ir.Delete("/sources/{id}", h.Income.DeleteSource)
				})
			}
		})
	})
	return nil
}
