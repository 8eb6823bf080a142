package category

import (
	"context"
	"net/http"

	"github.com/frahmantamala/budget-tracker/internal/transport"
)

type ServiceAPI interface {
	ListCategories(ctx context.Context, filter ListFilter) ([]Tree, error)
	Create(ctx context.Context, dto *CreateCategoryDTO) (*Category, error)
	Upsert(ctx context.Context, dto *CreateCategoryDTO) (*Category, error)
	Update(ctx context.Context, id int64, dto *UpdateCategoryDTO) (*Category, error)
	Delete(ctx context.Context, id int64) error
	Activate(ctx context.Context, id int64) (*Category, error)
	Deactivate(ctx context.Context, id int64) (*Category, error)
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

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Period:          r.URL.Query().Get("period"),
		IncludeInactive: h.QueryBool(r, "include_inactive"),
	}

	trees, err := h.Service.ListCategories(r.Context(), filter)
	if err != nil {
		h.Logger.Error("GetCategories: failed to get categories", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	response := CategoriesResponse{Categories: make([]TreeResponse, 0, len(trees))}
	for _, t := range trees {
		response.Categories = append(response.Categories, t.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, response)
}

// CreateCategory inserts a category, or updates it by name when ?upsert=true.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto CreateCategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var (
		created *Category
		err     error
	)
	if h.QueryBool(r, "upsert") {
		created, err = h.Service.Upsert(r.Context(), &dto)
	} else {
		created, err = h.Service.Create(r.Context(), &dto)
	}
	if err != nil {
		h.Logger.Error("CreateCategory: service error", "error", err, "name", dto.Name)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created.ToResponse())
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateCategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.Update(r.Context(), id, &dto)
	if err != nil {
		h.Logger.Error("UpdateCategory: service error", "error", err, "category_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated.ToResponse())
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Logger.Error("DeleteCategory: service error", "error", err, "category_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ActivateCategory(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Service.Activate)
}

func (h *Handler) DeactivateCategory(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Service.Deactivate)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) (*Category, error)) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	cat, err := fn(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cat.ToResponse())
}
