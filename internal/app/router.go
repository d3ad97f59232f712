package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/relaycrm/relay/internal/auth"
	"github.com/relaycrm/relay/internal/dashboards"
	"github.com/relaycrm/relay/internal/payments"
	"github.com/relaycrm/relay/internal/superadmin"
	"github.com/relaycrm/relay/internal/users"
	"github.com/relaycrm/relay/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Authenticator     *auth.Authenticator
	AuthHandler       *auth.Handler
	PaymentHandler    *payments.Handler
	DashboardHandler  *dashboards.Handler
	UserHandler       *users.Handler
	SuperAdminHandler *superadmin.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with Relay defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Public surface: checkout happens before an account exists.
	r.Route("/api/auth", params.AuthHandler.MountRoutes)
	r.Route("/api/payment", params.PaymentHandler.MountRoutes)

	// Everything else requires a valid token and a live user record.
	r.Group(func(r chi.Router) {
		r.Use(params.Authenticator.Middleware)
		r.Route("/api/dashboard", params.DashboardHandler.MountRoutes)
		r.Route("/api/users", params.UserHandler.MountRoutes)
		r.Route("/api/super", params.SuperAdminHandler.MountRoutes)
		if params.JobHandler != nil {
			r.Route("/api/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
