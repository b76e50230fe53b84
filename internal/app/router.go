package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ako-polymers/resinworks/internal/auth"
	"github.com/ako-polymers/resinworks/internal/billing"
	"github.com/ako-polymers/resinworks/internal/directory/clients"
	"github.com/ako-polymers/resinworks/internal/directory/sellers"
	"github.com/ako-polymers/resinworks/internal/directory/suppliers"
	"github.com/ako-polymers/resinworks/internal/dispatch"
	"github.com/ako-polymers/resinworks/internal/expenses"
	"github.com/ako-polymers/resinworks/internal/formula"
	"github.com/ako-polymers/resinworks/internal/observability"
	"github.com/ako-polymers/resinworks/internal/orders"
	"github.com/ako-polymers/resinworks/internal/platform/httpx"
	"github.com/ako-polymers/resinworks/internal/production"
	"github.com/ako-polymers/resinworks/internal/reports"
	"github.com/ako-polymers/resinworks/internal/stock"
	"github.com/ako-polymers/resinworks/report"
)

// RouterDeps aggregates everything the HTTP surface needs.
type RouterDeps struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	AuthService *auth.Service

	Auth       *auth.Handler
	Formulas   *formula.Handler
	Stock      *stock.Handler
	Production *production.Handler
	Dispatch   *dispatch.Handler
	Orders     *orders.Handler
	Clients    *clients.Handler
	Suppliers  *suppliers.Handler
	Sellers    *sellers.Handler
	Billing    *billing.Handler
	Invoices   *report.Handler
	Expenses   *expenses.Handler
	Reports    *reports.Handler
}

// NewRouter assembles the chi router with the full middleware stack.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  deps.Logger,
		Config:  deps.Config,
		Metrics: deps.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", deps.Auth.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthService.RequireAuth)

			r.Route("/formulas", deps.Formulas.MountRoutes)
			r.Route("/stock", deps.Stock.MountRoutes)
			r.Route("/production", func(r chi.Router) {
				deps.Production.MountRoutes(r)
				deps.Dispatch.MountRoutes(r)
			})
			r.Route("/orders", deps.Orders.MountRoutes)
			r.Route("/clients", deps.Clients.MountRoutes)
			r.Route("/suppliers", deps.Suppliers.MountRoutes)
			r.Route("/sellers", deps.Sellers.MountRoutes)
			r.Route("/billing", func(r chi.Router) {
				deps.Billing.MountRoutes(r)
				if deps.Invoices != nil {
					deps.Invoices.MountRoutes(r)
				}
			})
			r.Route("/expenses", deps.Expenses.MountRoutes)
			r.Route("/reports", deps.Reports.MountRoutes)
		})
	})

	return r
}
