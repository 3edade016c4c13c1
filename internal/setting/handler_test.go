package setting_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbac-console/console/internal/rbac"
	"github.com/rbac-console/console/internal/rbacapi"
	"github.com/rbac-console/console/internal/setting"
	"github.com/rbac-console/console/internal/shared"
	"github.com/rbac-console/console/internal/view"
)

type fakeSection struct {
	key, title string
	rows       []setting.Row
	err        error
}

func (f fakeSection) Key() string   { return f.key }
func (f fakeSection) Title() string { return f.title }

func (f fakeSection) Load(context.Context, *rbacapi.Client) (setting.Table, error) {
	return setting.Table{Entity: f.title, Field: "name", Rows: f.rows}, f.err
}

func serve(t *testing.T, sections []setting.Section, path string, perms ...string) string {
	t.Helper()
	mr := miniredis.RunT(t)
	sessions := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "s", "secret", time.Hour, false)
	engine, err := view.NewEngine()
	require.NoError(t, err)
	pages := &view.Renderer{
		Engine: engine,
		CSRF:   shared.NewCSRFManager("csrf"),
		Gate:   rbac.NewGate(rbac.NewTable(rbac.DefaultRoutes())),
	}
	api, err := rbacapi.NewClient("http://127.0.0.1:1", time.Second)
	require.NoError(t, err)

	r := chi.NewRouter()
	setting.NewHandler(nil, pages, api, sections...).MountRoutes(r)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	sess, err := sessions.Load(req.Context(), req)
	require.NoError(t, err)
	sess.SetCredentials("token", perms)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	return res.Body.String()
}

func TestFirstSectionIsDefaultTab(t *testing.T) {
	sections := []setting.Section{
		fakeSection{key: "users", title: "User", rows: []setting.Row{{ID: "1", Value: "ops@example.com"}}},
		fakeSection{key: "roles", title: "Role"},
	}
	body := serve(t, sections, "/", "setting.read")

	assert.Contains(t, body, `<a href="/setting/users" class="tab active">User</a>`)
	assert.Contains(t, body, `<a href="/setting/roles" class="tab">Role</a>`)
	assert.Contains(t, body, "ops@example.com")
}

func TestSectionTabIsActive(t *testing.T) {
	sections := []setting.Section{
		fakeSection{key: "users", title: "User"},
		fakeSection{key: "roles", title: "Role", rows: []setting.Row{{ID: "1", Value: "admin"}}},
	}
	body := serve(t, sections, "/roles", "setting.read")

	assert.Contains(t, body, `<a href="/setting/roles" class="tab active">Role</a>`)
	assert.Contains(t, body, "admin")
}

func TestLoadFailureShowsNotAuthorized(t *testing.T) {
	sections := []setting.Section{
		fakeSection{key: "users", title: "User", err: errors.New("forbidden")},
	}
	body := serve(t, sections, "/users", "setting.read")

	assert.Contains(t, body, view.MsgNotAuthorized)
}
