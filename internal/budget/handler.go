package budget

import (
	"context"
	"net/http"

	"github.com/frahmantamala/budget-tracker/internal/transport"
)

type ServiceAPI interface {
	GetBudgetSummary(ctx context.Context, req SummaryRequest) (*BudgetSummary, error)
	GetBudgetVsActuals(ctx context.Context, year int) (*BudgetVsActualsResponse, error)
	GetBalance(ctx context.Context, req BalanceRequest) (*BalanceResponse, error)
	GetSpendingInsights(ctx context.Context, req InsightsRequest) (*SpendingInsightsResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	summary, err := h.Service.GetBudgetSummary(r.Context(), SummaryRequest{
		Period:   query.Get("period"),
		Date:     query.Get("date"),
		Category: query.Get("category"),
	})
	if err != nil {
		h.Logger.Error("GetSummary: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetVsActuals(w http.ResponseWriter, r *http.Request) {
	year, err := h.QueryInt(r, "year", 0)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp, err := h.Service.GetBudgetVsActuals(r.Context(), year)
	if err != nil {
		h.Logger.Error("GetVsActuals: service error", "error", err, "year", year)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := h.Service.GetBalance(r.Context(), BalanceRequest{
		Period: query.Get("period"),
		Date:   query.Get("date"),
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := h.Service.GetSpendingInsights(r.Context(), InsightsRequest{
		Period: query.Get("period"),
		Date:   query.Get("date"),
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
