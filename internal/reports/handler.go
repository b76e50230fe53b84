package reports

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ako-polymers/resinworks/internal/platform/httpx"
)

// Handler exposes report endpoints.
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
	r.Get("/location-orders", h.locationOrders)
	r.Get("/dispatched-by-resin", h.dispatchedByResin)
	r.Get("/inactive-clients", h.inactiveClients)
	r.Post("/invalidate", h.invalidate)
}

func (h *Handler) locationOrders(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.OrdersByLocation(r.Context())
	if err != nil {
		h.logger.Error("location orders report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) dispatchedByResin(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.DispatchedByResin(r.Context())
	if err != nil {
		h.logger.Error("dispatched by resin report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) inactiveClients(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	out, err := h.service.InactiveClients(r.Context(), days)
	if err != nil {
		h.logger.Error("inactive clients report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) invalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Invalidate(r.Context()); err != nil {
		h.logger.Error("report cache invalidation", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "report cache invalidated"})
}
