package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rbac-console/console/internal/shared"
)

// DenialObserver counts gate denials by reason.
type DenialObserver interface {
	ObserveDenial(reason string)
}

// Middleware wires the gate into HTTP handlers.
type Middleware struct {
	Gate     *Gate
	Logger   *slog.Logger
	Observer DenialObserver
}

// RequireSession admits requests whose session token is present, decodable
// and unexpired. Anything else clears the stored credentials and redirects
// to the login page.
func (m Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		token := sess.Token()
		if err := m.Gate.Admit(token); err != nil {
			m.deny(admissionReason(err))
			if !errors.Is(err, ErrNoToken) {
				m.log().Info("session rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
				sess.ClearCredentials()
			}
			http.Redirect(w, r, PathLogin, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoute redirects to the unauthorized page when the matched route
// requires a permission the session lacks. It runs on every request, so
// each navigation inside a gated subtree is checked again.
func (m Middleware) RequireRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		path := m.matchPath(r)
		if !m.Gate.Allowed(path, sess.Permissions()) {
			m.log().Info("route denied", slog.String("route", path))
			m.deny("route")
			http.Redirect(w, r, PathUnauthorized, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAll guards an action endpoint with the permissions that gate its
// affordance.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			sess := shared.SessionFromContext(r.Context())
			if !NewSet(sess.Permissions()).HasAll(perms) {
				m.log().Info("action denied", slog.String("path", r.URL.Path))
				m.deny("action")
				http.Redirect(w, r, PathUnauthorized, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// matchPath prefers the chi route pattern so that parameterised routes
// resolve to their table entry, falling back to the literal request path.
// The pattern is only complete when the middleware is installed on an
// inline group (r.Group or r.With) below the final router; a pattern still
// ending in a wildcard means routing has not finished and is ignored.
func (m Middleware) matchPath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		pattern := rctx.RoutePattern()
		if pattern != "" && !strings.HasSuffix(pattern, "*") {
			pattern = normalizePath(pattern)
			if _, ok := m.Gate.Table().Lookup(pattern); ok {
				return pattern
			}
		}
	}
	return normalizePath(r.URL.Path)
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "/*/", "/")
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

func admissionReason(err error) string {
	switch {
	case errors.Is(err, ErrNoToken):
		return "no_token"
	case errors.Is(err, ErrNoExpiry):
		return "no_expiry"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	default:
		return "malformed"
	}
}

func (m Middleware) deny(reason string) {
	if m.Observer != nil {
		m.Observer.ObserveDenial(reason)
	}
}

func (m Middleware) log() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}
