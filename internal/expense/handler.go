package expense

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	errors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/core/money"
	"github.com/frahmantamala/budget-tracker/internal/transport"
)

const maxImportBytes = 10 << 20

type ServiceAPI interface {
	CreateExpense(ctx context.Context, dto *CreateExpenseDTO) (*Expense, error)
	GetExpenseByID(ctx context.Context, id int64) (*Expense, error)
	UpdateExpense(ctx context.Context, id int64, dto *UpdateExpenseDTO) (*Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	ListExpenses(ctx context.Context, filter ListFilter) ([]*Expense, error)
}

type ImporterAPI interface {
	Import(ctx context.Context, r io.Reader, req ImportRequest) (*ImportResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Importer ImporterAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, importer ImporterAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Importer:    importer,
	}
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var dto CreateExpenseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	expense, err := h.Service.CreateExpense(r.Context(), &dto)
	if err != nil {
		h.Logger.Error("CreateExpense: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateExpense: expense created successfully",
		"expense_id", expense.ID,
		"amount", expense.Amount.String(),
		"category", expense.CategoryName)

	h.WriteJSON(w, http.StatusCreated, expense.ToResponse())
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	expense, err := h.Service.GetExpenseByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, expense.ToResponse())
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateExpenseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	expense, err := h.Service.UpdateExpense(r.Context(), id, &dto)
	if err != nil {
		h.Logger.Error("UpdateExpense: service error", "error", err, "expense_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, expense.ToResponse())
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeleteExpense(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := h.QueryInt(r, "limit", defaultListLimit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	offset, err := h.QueryInt(r, "offset", 0)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	filter := ListFilter{
		From:      query.Get("from"),
		To:        query.Get("to"),
		Category:  query.Get("category"),
		MinAmount: query.Get("min_amount"),
		MaxAmount: query.Get("max_amount"),
		Source:    query.Get("source"),
		Search:    query.Get("q"),
		Limit:     limit,
		Offset:    offset,
	}

	expenses, err := h.Service.ListExpenses(r.Context(), filter)
	if err != nil {
		h.Logger.Error("ListExpenses: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	resp := ExpensesResponse{
		Expenses: make([]ExpenseResponse, 0, len(expenses)),
		Total:    money.Float(Total(expenses)),
		Limit:    limit,
		Offset:   offset,
	}
	for _, e := range expenses {
		resp.Expenses = append(resp.Expenses, e.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

type importBody struct {
	ImportRequest
	CSV string `json:"csv"`
}

// ImportExpenses accepts either a JSON body carrying the raw CSV text, or a
// multipart form with a "file" part and an optional "options" JSON part.
func (h *Handler) ImportExpenses(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var (
		req    ImportRequest
		source io.Reader
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			h.HandleServiceError(w, errors.NewValidationError("invalid multipart form", errors.ErrCodeInvalidCSV))
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			h.HandleServiceError(w, errors.NewValidationFieldError("file", "file is required", errors.ErrCodeInvalidCSV))
			return
		}
		defer file.Close()
		source = file

		if opts := r.FormValue("options"); opts != "" {
			if err := json.Unmarshal([]byte(opts), &req); err != nil {
				h.HandleServiceError(w, errors.NewValidationFieldError("options", "options must be a JSON object", errors.ErrCodeValidationFailed))
				return
			}
		}
		if h.QueryBool(r, "dry_run") {
			req.DryRun = true
		}
	} else {
		var body importBody
		if err := h.DecodeJSON(r, &body); err != nil {
			h.HandleServiceError(w, err)
			return
		}
		if strings.TrimSpace(body.CSV) == "" {
			h.HandleServiceError(w, errors.NewValidationFieldError("csv", "csv is required", errors.ErrCodeInvalidCSV))
			return
		}
		req = body.ImportRequest
		source = strings.NewReader(body.CSV)
	}

	result, err := h.Importer.Import(r.Context(), source, req)
	if err != nil {
		h.Logger.Error("ImportExpenses: import failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if req.DryRun || result.Imported == 0 {
		status = http.StatusOK
	}
	h.WriteJSON(w, status, result)
}
