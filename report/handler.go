package report

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ako-polymers/resinworks/internal/billing"
	"github.com/ako-polymers/resinworks/internal/platform/httpx"
)

// BillingPort is the slice of billing the invoice endpoint needs.
type BillingPort interface {
	Get(ctx context.Context, id int64) (billing.Record, error)
}

// Handler serves invoice PDFs. Mounted on the billing router.
type Handler struct {
	logger   *slog.Logger
	renderer *Renderer
	billing  BillingPort
}

// NewHandler constructs a Handler. renderer may be nil when no
// Gotenberg instance is configured.
func NewHandler(logger *slog.Logger, renderer *Renderer, billing BillingPort) *Handler {
	return &Handler{logger: logger, renderer: renderer, billing: billing}
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}/pdf", h.invoicePDF)
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid billing id")
		return
	}
	rec, err := h.billing.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, billing.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("load billing record for pdf", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	html, err := InvoiceHTML(rec)
	if err != nil {
		h.logger.Error("render invoice html", slog.Int64("billing_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.renderer.RenderPDF(r.Context(), html)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "pdf rendering is not configured")
			return
		}
		h.logger.Error("render invoice pdf", slog.Int64("billing_id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", "pdf rendering failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=invoice-"+strconv.FormatInt(id, 10)+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
