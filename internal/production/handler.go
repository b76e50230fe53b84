package production

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ako-polymers/resinworks/internal/formula"
	"github.com/ako-polymers/resinworks/internal/observability"
	"github.com/ako-polymers/resinworks/internal/platform/httpx"
	"github.com/ako-polymers/resinworks/internal/shared"
)

// Handler exposes production workflow endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	metrics  *observability.Metrics
	validate *validator.Validate
}

// NewHandler constructs a Handler. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics, validate: validator.New()}
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/produce", h.produce)
	r.Put("/{id}/status", h.updateStatus)
	r.Delete("/{id}", h.softDelete)
}

type produceRequest struct {
	ResinType string  `json:"resinType" validate:"required"`
	Volume    float64 `json:"volume" validate:"required,gt=0"`
	Unit      string  `json:"unit"`
	OrderID   *int64  `json:"orderId"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list production records", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	pagination := shared.NewPagination(page, perPage, len(records))
	start, end := pagination.Bounds()
	httpx.JSON(w, http.StatusOK, map[string]any{
		"records":    records[start:end],
		"pagination": pagination,
	})
}

func (h *Handler) produce(w http.ResponseWriter, r *http.Request) {
	var req produceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.Produce(r.Context(), ProduceInput{
		ResinType: req.ResinType,
		Volume:    req.Volume,
		Unit:      req.Unit,
		OrderID:   req.OrderID,
	})
	if err != nil {
		var insufficient *InsufficientStockError
		if errors.As(err, &insufficient) {
			h.metrics.RecordProduction("insufficient_stock")
		} else {
			h.metrics.RecordProduction("error")
		}
		h.respondDomainError(w, err)
		return
	}
	h.metrics.RecordProduction("ok")
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid production id")
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.UpdateStatus(r.Context(), id, Status(req.Status)); err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "status updated to " + req.Status})
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid production id")
		return
	}
	if err := h.service.SoftDelete(r.Context(), id); err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "production record deleted and materials returned"})
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	var insufficient *InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		httpx.ProblemWith(w, http.StatusConflict, "Insufficient Stock", insufficient.Error(), map[string]any{
			"materials": insufficient.Materials,
		})
	case errors.Is(err, ErrAlreadyProduced):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidStatus),
		errors.Is(err, formula.ErrUnknownResin), errors.Is(err, formula.ErrDegenerateFormula):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("production operation failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
