package expenses

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ako-polymers/resinworks/internal/platform/httpx"
)

// Handler exposes expense and overtime endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listExpenses)
	r.Post("/", h.addExpense)
	r.Delete("/{id}", h.deleteExpense)
	r.Get("/overtime", h.listOvertime)
	r.Post("/overtime", h.addOvertime)
	r.Delete("/overtime/{id}", h.deleteOvertime)
}

type expenseRequest struct {
	Category    string          `json:"category" validate:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	IncurredOn  string          `json:"incurredOn" validate:"required"`
}

type overtimeRequest struct {
	EmployeeName string          `json:"employeeName" validate:"required"`
	Hours        decimal.Decimal `json:"hours"`
	Rate         decimal.Decimal `json:"rate"`
	WorkedOn     string          `json:"workedOn" validate:"required"`
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListExpenses(r.Context())
	if err != nil {
		h.logger.Error("list expenses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) addExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	incurred, ok := h.parseDate(w, req.IncurredOn)
	if !ok {
		return
	}
	expense, err := h.service.AddExpense(r.Context(), Expense{
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		IncurredOn:  incurred,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, expense)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteExpense(r.Context(), id); err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "expense deleted"})
}

func (h *Handler) listOvertime(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListOvertime(r.Context())
	if err != nil {
		h.logger.Error("list overtime", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) addOvertime(w http.ResponseWriter, r *http.Request) {
	var req overtimeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	worked, ok := h.parseDate(w, req.WorkedOn)
	if !ok {
		return
	}
	overtime, err := h.service.AddOvertime(r.Context(), Overtime{
		EmployeeName: req.EmployeeName,
		Hours:        req.Hours,
		Rate:         req.Rate,
		WorkedOn:     worked,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, overtime)
}

func (h *Handler) deleteOvertime(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteOvertime(r.Context(), id); err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "overtime entry deleted"})
}

func (h *Handler) parseDate(w http.ResponseWriter, raw string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return t.UTC(), true
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("expense operation failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
