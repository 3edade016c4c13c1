package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbac-console/console/internal/rbac"
	"github.com/rbac-console/console/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderHomeWithMenuAndFlash(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.Render(rr, "pages/home.html", http.StatusOK, TemplateData{
		Title:       "Home",
		CurrentPath: "/",
		LoggedIn:    true,
		Menu:        []rbac.MenuEntry{{Title: "Home", Path: "/"}, {Title: "Setting", Path: "/setting"}},
		Flashes:     []shared.FlashMessage{{Kind: shared.FlashSuccess, Message: "Login success"}},
	})
	require.NoError(t, err)

	body := rr.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, body, `href="/setting"`)
	assert.Contains(t, body, "Login success")
	assert.Contains(t, body, `action="/auth/logout"`)
}

func TestRenderUnknownTemplateWritesNothing(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.Render(rr, "pages/missing.html", http.StatusOK, TemplateData{})
	require.Error(t, err)
	assert.Empty(t, rr.Body.String())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Role Created", Created("role"))
	assert.Equal(t, "Role name Updated", Updated("role", "name"))
	assert.Equal(t, "User email Updated", Updated("user", "email"))
	assert.Equal(t, "Permission Deleted", Deleted("permission"))
	assert.Equal(t, "Permission Mapped", Mapped("permission"))
	assert.Equal(t, "Role Mapped Updated", MappedUpdated("role"))
	assert.Equal(t, "Permission Mapped Deleted", MappedDeleted("permission"))
}

func TestRendererPagePopsFlashesAndDerivesActions(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	pages := &Renderer{
		Engine: engine,
		CSRF:   shared.NewCSRFManager("secret"),
		Gate:   rbac.NewGate(rbac.NewTable(rbac.DefaultRoutes())),
	}

	sess := &shared.Session{ID: "s1"}
	sess.SetCredentials("token", []string{"setting.read"})
	sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: MsgNotAuthorized})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rr := httptest.NewRecorder()
	pages.Page(rr, req, "pages/home.html", "Home", nil, http.StatusOK)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), MsgNotAuthorized)
	assert.Contains(t, rr.Body.String(), `href="/setting"`)
	assert.Nil(t, sess.PopFlash(), "flashes are consumed by the render")
	assert.NotEmpty(t, sess.Get(shared.CSRFSessionKey))
}

func TestRendererRedirectQueuesFlash(t *testing.T) {
	pages := &Renderer{}
	sess := &shared.Session{ID: "s1"}
	req := httptest.NewRequest(http.MethodPost, "/setting/roles", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rr := httptest.NewRecorder()

	pages.Redirect(rr, req, "/setting/roles", shared.FlashSuccess, Created("role"))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/setting/roles", rr.Header().Get("Location"))
	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Role Created", flash.Message)
}
