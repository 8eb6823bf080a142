package income

import (
	"context"
	"net/http"

	"github.com/frahmantamala/budget-tracker/internal/core/money"
	"github.com/frahmantamala/budget-tracker/internal/transport"
)

type ServiceAPI interface {
	ListSources(ctx context.Context, includeInactive bool) ([]*Source, error)
	CreateSource(ctx context.Context, dto *CreateSourceDTO) (*Source, error)
	UpdateSource(ctx context.Context, id int64, dto *UpdateSourceDTO) (*Source, error)
	DeleteSource(ctx context.Context, id int64) error
	CreateIncome(ctx context.Context, dto *CreateIncomeDTO) (*Income, error)
	ListIncome(ctx context.Context, filter ListFilter) ([]*Income, error)
	DeleteIncome(ctx context.Context, id int64) error
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

func (h *Handler) GetSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.Service.ListSources(r.Context(), h.QueryBool(r, "include_inactive"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := SourcesResponse{Sources: make([]SourceResponse, 0, len(sources))}
	for _, s := range sources {
		resp.Sources = append(resp.Sources, s.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var dto CreateSourceDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	source, err := h.Service.CreateSource(r.Context(), &dto)
	if err != nil {
		h.Logger.Error("CreateSource: service error", "error", err, "name", dto.Name)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, source.ToResponse())
}

func (h *Handler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateSourceDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	source, err := h.Service.UpdateSource(r.Context(), id, &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, source.ToResponse())
}

func (h *Handler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeleteSource(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetIncome(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	entries, err := h.Service.ListIncome(r.Context(), ListFilter{
		From:   query.Get("from"),
		To:     query.Get("to"),
		Source: query.Get("source"),
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := IncomeListResponse{
		Income: make([]IncomeResponse, 0, len(entries)),
		Total:  money.Float(Total(entries)),
	}
	for _, e := range entries {
		resp.Income = append(resp.Income, e.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	var dto CreateIncomeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	entry, err := h.Service.CreateIncome(r.Context(), &dto)
	if err != nil {
		h.Logger.Error("CreateIncome: service error", "error", err, "source", dto.Source)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, entry.ToResponse())
}

func (h *Handler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeleteIncome(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
