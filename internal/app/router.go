package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CodingBreaker07/nema-traders/internal/auth"
	"github.com/CodingBreaker07/nema-traders/internal/billing"
	"github.com/CodingBreaker07/nema-traders/internal/customers"
	"github.com/CodingBreaker07/nema-traders/internal/observability"
	"github.com/CodingBreaker07/nema-traders/internal/products"
	"github.com/CodingBreaker07/nema-traders/internal/quotations"
	"github.com/CodingBreaker07/nema-traders/internal/settings"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthService       *auth.Service
	AuthHandler       *auth.Handler
	CustomersHandler  *customers.Handler
	ProductsHandler   *products.Handler
	BillingHandler    *billing.Handler
	QuotationsHandler *quotations.Handler
	SettingsHandler   *settings.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults. Auth routes
// and health stay outside the unlock gate so a locked instance can recover.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.AuthService.RequireUnlock)

		r.Route("/customers", func(r chi.Router) {
			params.CustomersHandler.MountRoutes(r)
			params.BillingHandler.MountCustomerRoutes(r)
		})
		r.Route("/products", params.ProductsHandler.MountRoutes)
		r.Route("/quotations", params.QuotationsHandler.MountRoutes)
		r.Route("/settings", params.SettingsHandler.MountRoutes)
		params.BillingHandler.MountRoutes(r)
	})

	return r
}
