package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ako-polymers/resinworks/internal/app"
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
	"github.com/ako-polymers/resinworks/internal/platform/cache"
	"github.com/ako-polymers/resinworks/internal/platform/db"
	"github.com/ako-polymers/resinworks/internal/production"
	"github.com/ako-polymers/resinworks/internal/reports"
	"github.com/ako-polymers/resinworks/internal/shared"
	"github.com/ako-polymers/resinworks/internal/stock"
	"github.com/ako-polymers/resinworks/jobs"
	"github.com/ako-polymers/resinworks/report"
)

// clientDirectory adapts the client directory to the order generator.
type clientDirectory struct {
	clients *clients.Service
}

func (d clientDirectory) Lookup(ctx context.Context, name string) (orders.ClientLocation, error) {
	client, err := d.clients.GetByName(ctx, name)
	if err != nil {
		return orders.ClientLocation{}, err
	}
	return orders.ClientLocation{
		Name:     client.Name,
		District: client.District,
		State:    client.State,
	}, nil
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)
	locker := shared.NewLocker(redisClient, 30*time.Second)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo,
		auth.NewOTPStore(redisClient, cfg.OTPTTL),
		auth.NewSessionStore(redisClient, cfg.TokenSecret, cfg.TokenTTL),
		jobClient)
	authHandler := auth.NewHandler(logger, authService)

	formulaRepo := formula.NewRepository(dbpool)
	formulaService := formula.NewService(formulaRepo)
	formulaHandler := formula.NewHandler(logger, formulaService)

	stockRepo := stock.NewRepository(dbpool)
	stockService := stock.NewService(stockRepo, auditLogger, stock.ServiceConfig{AllowNegativeStock: cfg.AllowNegativeStock})
	stockHandler := stock.NewHandler(logger, stockService)

	clientRepo := clients.NewRepository(dbpool)
	clientService := clients.NewService(clientRepo)
	clientHandler := clients.NewHandler(logger, clientService)
	if err := clientService.EnsureGodown(ctx); err != nil {
		logger.Error("ensure godown client", slog.Any("error", err))
		os.Exit(1)
	}

	supplierService := suppliers.NewService(suppliers.NewRepository(dbpool))
	supplierHandler := suppliers.NewHandler(logger, supplierService)

	sellerService := sellers.NewService(sellers.NewRepository(dbpool))
	sellerHandler := sellers.NewHandler(logger, sellerService)

	orderRepo := orders.NewRepository(dbpool)
	orderService := orders.NewService(orderRepo, orders.NewCounterRepository(dbpool),
		clientDirectory{clients: clientService}, auditLogger)
	orderHandler := orders.NewHandler(logger, orderService)

	productionRepo := production.NewRepository(dbpool)
	productionService := production.NewService(productionRepo, formulaService, stockService,
		orderService, locker, auditLogger)
	productionHandler := production.NewHandler(logger, productionService, metrics)

	dispatchService := dispatch.NewService(productionRepo, locker, auditLogger)
	dispatchHandler := dispatch.NewHandler(logger, dispatchService)

	billingService := billing.NewService(billing.NewRepository(dbpool))
	billingHandler := billing.NewHandler(logger, billingService)
	invoiceHandler := report.NewHandler(logger, report.NewRenderer(cfg.GotenbergURL), billingService)

	expenseService := expenses.NewService(expenses.NewRepository(dbpool))
	expenseHandler := expenses.NewHandler(logger, expenseService)

	reportCache := reports.NewCache(redisClient, 10*time.Minute)
	reportService := reports.NewService(reports.NewRepository(dbpool), reportCache)
	reportHandler := reports.NewHandler(logger, reportService)

	router := app.NewRouter(app.RouterDeps{
		Logger:      logger,
		Config:      cfg,
		Metrics:     metrics,
		AuthService: authService,
		Auth:        authHandler,
		Formulas:    formulaHandler,
		Stock:       stockHandler,
		Production:  productionHandler,
		Dispatch:    dispatchHandler,
		Orders:      orderHandler,
		Clients:     clientHandler,
		Suppliers:   supplierHandler,
		Sellers:     sellerHandler,
		Billing:     billingHandler,
		Invoices:    invoiceHandler,
		Expenses:    expenseHandler,
		Reports:     reportHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
