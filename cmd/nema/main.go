package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CodingBreaker07/nema-traders/internal/app"
	"github.com/CodingBreaker07/nema-traders/internal/auth"
	"github.com/CodingBreaker07/nema-traders/internal/billing"
	"github.com/CodingBreaker07/nema-traders/internal/customers"
	"github.com/CodingBreaker07/nema-traders/internal/jobs"
	"github.com/CodingBreaker07/nema-traders/internal/observability"
	"github.com/CodingBreaker07/nema-traders/internal/platform/kv"
	"github.com/CodingBreaker07/nema-traders/internal/products"
	"github.com/CodingBreaker07/nema-traders/internal/quotations"
	"github.com/CodingBreaker07/nema-traders/internal/settings"
)

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

	store, err := kv.Open(cfg.DataPath, kv.Options{
		Collections: []string{
			customers.Collection,
			products.Collection,
			billing.InvoiceCollection,
			billing.CreditCollection,
			quotations.Collection,
		},
		Seeds: map[string]int64{
			settings.InvoiceCounter:   cfg.InvoiceSeed,
			settings.QuotationCounter: cfg.QuotationSeed,
		},
	})
	if err != nil {
		logger.Error("open data store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close data store", slog.Any("error", err))
		}
	}()

	customerRepo := customers.NewRepository(store)
	productRepo := products.NewRepository(store)
	billingRepo := billing.NewRepository(store)
	quotationRepo := quotations.NewRepository(store)

	productService := products.NewService(productRepo)
	billingService := billing.NewService(billingRepo, customerRepo, productRepo)
	quotationService := quotations.NewService(quotationRepo, customerRepo, billingService)
	customerService := customers.NewService(customerRepo, billingService, quotationService)
	settingsService := settings.NewService(store)
	authService := auth.NewService(settingsService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthService:       authService,
		AuthHandler:       auth.NewHandler(logger, authService),
		CustomersHandler:  customers.NewHandler(logger, customerService),
		ProductsHandler:   products.NewHandler(logger, productService, settingsService),
		BillingHandler:    billing.NewHandler(logger, billingService),
		QuotationsHandler: quotations.NewHandler(logger, quotationService),
		SettingsHandler:   settings.NewHandler(logger, settingsService),
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	scheduler := jobs.NewScheduler(logger, settingsService, productService, cfg.BackupDir)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		return scheduler.Start(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("runtime error", slog.Any("error", err))
		os.Exit(1)
	}
}
