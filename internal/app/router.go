package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rbac-console/console/internal/auth"
	"github.com/rbac-console/console/internal/observability"
	"github.com/rbac-console/console/internal/permissions"
	"github.com/rbac-console/console/internal/platform/httpx"
	"github.com/rbac-console/console/internal/rbac"
	"github.com/rbac-console/console/internal/roles"
	"github.com/rbac-console/console/internal/setting"
	"github.com/rbac-console/console/internal/shared"
	"github.com/rbac-console/console/internal/users"
	"github.com/rbac-console/console/internal/view"
	"github.com/rbac-console/console/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Pages              *view.Renderer
	SessionManager     *shared.SessionManager
	CSRFManager        *shared.CSRFManager
	RBACMiddleware     rbac.Middleware
	AuthHandler        *auth.Handler
	SettingHandler     *setting.Handler
	UsersHandler       *users.Handler
	RolesHandler       *roles.Handler
	PermissionsHandler *permissions.Handler
	Metrics            *observability.Metrics
	// AccessLog enables chi's request logger.
	AccessLog bool
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	if params.AccessLog {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	gate := params.RBACMiddleware

	r.With(gate.RequireSession, gate.RequireRoute).Get(rbac.PathHome, func(w http.ResponseWriter, r *http.Request) {
		params.Pages.Page(w, r, "pages/home.html", "Home", nil, http.StatusOK)
	})

	r.Get(rbac.PathUnauthorized, func(w http.ResponseWriter, r *http.Request) {
		params.Pages.Page(w, r, "pages/error.html", "Not authorized", nil, http.StatusForbidden)
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Gate middlewares sit on an inline group inside the subrouter so the
	// route pattern they see is complete.
	r.Route(rbac.PathSetting, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(gate.RequireSession, gate.RequireRoute)
			params.SettingHandler.MountRoutes(r)
			params.UsersHandler.MountRoutes(r)
			params.RolesHandler.MountRoutes(r)
			params.PermissionsHandler.MountRoutes(r)
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	// Unknown pages fall back to home.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, rbac.PathHome, http.StatusSeeOther)
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
