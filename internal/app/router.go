package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/cbmgo/financeiro/internal/audit"
	"github.com/cbmgo/financeiro/internal/auth"
	"github.com/cbmgo/financeiro/internal/ledger"
	"github.com/cbmgo/financeiro/internal/observability"
	"github.com/cbmgo/financeiro/internal/processos"
	"github.com/cbmgo/financeiro/internal/rbac"
	"github.com/cbmgo/financeiro/internal/reports"
	"github.com/cbmgo/financeiro/internal/settings"
	"github.com/cbmgo/financeiro/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	PermissionsHandler *rbac.PermissionsHandler
	ReportsHandler     *reports.Handler
	LedgerHandler      *ledger.Handler
	ProcessosHandler   *processos.Handler
	SettingsHandler    *settings.Handler
	AuditHandler       *audit.Handler
	RBACMiddleware     rbac.Middleware
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with the API surface under /api/v1.
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
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	loginLimit, loginWindow := 10, time.Minute
	if params.Config != nil {
		if params.Config.LoginRateLimit > 0 {
			loginLimit = params.Config.LoginRateLimit
		}
		if params.Config.LoginRateWindow > 0 {
			loginWindow = params.Config.LoginRateWindow
		}
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public: login, OAuth callback and registration.
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(loginLimit, loginWindow, httprate.WithKeyFuncs(httprate.KeyByIP)))
			params.AuthHandler.MountRoutes(r)
			params.UsersHandler.MountPublicRoutes(r)
		})

		// Authenticated: ledger, processos and settings are scoped to the
		// caller and need no extra permission.
		r.Group(func(r chi.Router) {
			r.Use(params.RBACMiddleware.RequireAuth)

			params.LedgerHandler.MountRoutes(r)
			r.Route("/processos", params.ProcessosHandler.MountRoutes)
			r.Route("/settings", params.SettingsHandler.MountRoutes)
			r.Route("/reports", params.ReportsHandler.MountRoutes)

			r.Group(func(r chi.Router) {
				r.Use(params.RBACMiddleware.RequireAny(rbac.PermManageUsers))
				r.Route("/permissions", params.PermissionsHandler.MountRoutes)
				r.Route("/admin", func(r chi.Router) {
					params.UsersHandler.MountAdminRoutes(r)
					params.AuditHandler.MountRoutes(r)
				})
			})
		})
	})

	return r
}
