package rule

import (
	"context"
	"net/http"

	errors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/transport"
)

type ServiceAPI interface {
	ListRules(ctx context.Context, includeInactive bool) ([]*Rule, error)
	Create(ctx context.Context, dto *CreateRuleDTO) (*Rule, error)
	Update(ctx context.Context, id int64, dto *UpdateRuleDTO) (*Rule, error)
	Delete(ctx context.Context, id int64) error
}

type SuggesterAPI interface {
	SuggestCategories(ctx context.Context, descriptions []string) (*SuggestionsResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Engine  SuggesterAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, engine SuggesterAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Engine:      engine,
	}
}

func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Service.ListRules(r.Context(), h.QueryBool(r, "include_inactive"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := RulesResponse{Rules: make([]RuleResponse, 0, len(rules))}
	for _, rl := range rules {
		resp.Rules = append(resp.Rules, rl.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var dto CreateRuleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	created, err := h.Service.Create(r.Context(), &dto)
	if err != nil {
		h.Logger.Error("CreateRule: service error", "error", err, "pattern", dto.Pattern)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created.ToResponse())
}

func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateRuleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.Update(r.Context(), id, &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated.ToResponse())
}

func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SuggestCategories dry-runs the rule set without writing anything.
func (h *Handler) SuggestCategories(w http.ResponseWriter, r *http.Request) {
	var dto SuggestDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	descriptions := dto.Descriptions
	if dto.Description != "" {
		descriptions = append([]string{dto.Description}, descriptions...)
	}
	if len(descriptions) == 0 {
		h.HandleServiceError(w, errors.NewValidationFieldError("descriptions", "at least one description is required", errors.ErrCodeInvalidDescription))
		return
	}

	resp, err := h.Engine.SuggestCategories(r.Context(), descriptions)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
