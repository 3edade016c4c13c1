package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"

	"github.com/rbac-console/console/internal/rbac"
	"github.com/rbac-console/console/internal/shared"
)

func newGatedRouter(g *rbac.Gate, sess *shared.Session) http.Handler {
	mw := rbac.Middleware{Gate: g}
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.With(mw.RequireSession, mw.RequireRoute).Get("/", ok)
	r.Route("/setting", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireSession, mw.RequireRoute)
			r.Get("/", ok)
			r.Get("/roles/{id}/permissions", ok)
			r.With(mw.RequireAll(rbac.SettingCreate)).Post("/roles", ok)
		})
	})
	return r
}

func sessionWith(t *testing.T, exp time.Time, perms ...string) *shared.Session {
	t.Helper()
	sess := &shared.Session{ID: "test"}
	sess.SetCredentials(signToken(t, jwt.MapClaims{"exp": exp.Unix()}), perms)
	return sess
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(method, path, nil))
	return res
}

func TestExpiredTokenRedirectsToLogin(t *testing.T) {
	g := newGate()
	sess := sessionWith(t, fixedNow.Add(-time.Minute), "setting.read")
	h := newGatedRouter(g, sess)

	for _, path := range []string{"/", "/setting", "/setting/roles/abc/permissions"} {
		res := serve(h, http.MethodGet, path)
		assert.Equal(t, http.StatusSeeOther, res.Code, path)
		assert.Equal(t, rbac.PathLogin, res.Header().Get("Location"), path)
	}
	assert.Empty(t, sess.Token(), "expired credentials are cleared")
}

func TestMissingTokenRedirectsToLogin(t *testing.T) {
	h := newGatedRouter(newGate(), &shared.Session{ID: "anon"})
	res := serve(h, http.MethodGet, "/")
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, rbac.PathLogin, res.Header().Get("Location"))
}

func TestRouteWithoutPermissionRedirectsToError(t *testing.T) {
	h := newGatedRouter(newGate(), sessionWith(t, fixedNow.Add(time.Hour)))

	res := serve(h, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, res.Code)

	res = serve(h, http.MethodGet, "/setting")
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, rbac.PathUnauthorized, res.Header().Get("Location"))

	res = serve(h, http.MethodGet, "/setting/roles/42/permissions")
	assert.Equal(t, rbac.PathUnauthorized, res.Header().Get("Location"))
}

func TestRouteWithPermissionAdmits(t *testing.T) {
	h := newGatedRouter(newGate(), sessionWith(t, fixedNow.Add(time.Hour), "setting.read"))

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/setting").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/setting/roles/42/permissions").Code)

	res := serve(h, http.MethodPost, "/setting/roles")
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, rbac.PathUnauthorized, res.Header().Get("Location"))
}

func TestActionPermissionAdmits(t *testing.T) {
	h := newGatedRouter(newGate(), sessionWith(t, fixedNow.Add(time.Hour), "setting.read", "setting.create"))
	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/setting/roles").Code)
}

type denialCounter map[string]int

func (d denialCounter) ObserveDenial(reason string) { d[reason]++ }

func TestDenialsAreObserved(t *testing.T) {
	counter := denialCounter{}
	sess := sessionWith(t, fixedNow.Add(time.Hour))
	mw := rbac.Middleware{Gate: newGate(), Observer: counter}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.With(mw.RequireSession, mw.RequireRoute).Get("/setting", ok)

	serve(r, http.MethodGet, "/setting")
	sess.ClearCredentials()
	serve(r, http.MethodGet, "/setting")

	assert.Equal(t, denialCounter{"route": 1, "no_token": 1}, counter)
}
