package dispatch

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ako-polymers/resinworks/internal/platform/httpx"
	"github.com/ako-polymers/resinworks/internal/production"
)

// Handler exposes dispatch endpoints. Mounted on the production router.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/{id}/deploy", h.deploy)
	r.Post("/normalize-splits", h.normalize)
}

type deployRequest struct {
	DispatchQty *float64 `json:"dispatchQty"`
}

func (h *Handler) deploy(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid production id")
		return
	}
	var req deployRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
			return
		}
	}
	result, err := h.service.Deploy(r.Context(), id, req.DispatchQty)
	if err != nil {
		switch {
		case errors.Is(err, production.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		case errors.Is(err, ErrInvalidState):
			httpx.Problem(w, http.StatusConflict, "Invalid State", err.Error())
		case errors.Is(err, ErrInvalidQuantity):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("deploy failed", slog.Int64("production_id", id), slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) normalize(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Normalize(r.Context()); err != nil {
		h.logger.Error("normalize splits failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "split suffixes normalized"})
}
