package view

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rbac-console/console/internal/rbac"
	"github.com/rbac-console/console/internal/rbacapi"
	"github.com/rbac-console/console/internal/shared"
)

// MsgNotAuthorized is shown for every failed authenticated API call.
const MsgNotAuthorized = "you are not authorized"

// Renderer builds TemplateData from the request session and renders pages.
type Renderer struct {
	Engine *Engine
	CSRF   *shared.CSRFManager
	Gate   *rbac.Gate
	Logger *slog.Logger
}

// Page renders template name with the session's flashes, menu and actions.
func (p *Renderer) Page(w http.ResponseWriter, r *http.Request, name, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := p.CSRF.EnsureToken(r.Context(), sess)
	var flashes []shared.FlashMessage
	if sess != nil {
		for f := sess.PopFlash(); f != nil; f = sess.PopFlash() {
			flashes = append(flashes, *f)
		}
	}
	granted := sess.Permissions()
	viewData := TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flashes:     flashes,
		CurrentPath: r.URL.Path,
		Menu:        p.Gate.Menu(granted),
		Actions:     rbac.NewSet(granted).SettingActions(),
		LoggedIn:    sess.Token() != "",
		Data:        data,
	}
	if err := p.Engine.Render(w, name, status, viewData); err != nil {
		p.log().Error("render template", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Redirect queues a flash message and redirects with 303.
func (p *Renderer) Redirect(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && message != "" {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// Fail logs err and redirects with the not-authorized notification. Every
// API failure lands here: status errors and transport errors alike.
func (p *Renderer) Fail(w http.ResponseWriter, r *http.Request, location string, err error) {
	level := slog.LevelWarn
	if !errors.Is(err, rbacapi.ErrUnauthorized) {
		level = slog.LevelError
	}
	p.log().Log(r.Context(), level, "api call failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	p.Redirect(w, r, location, shared.FlashError, MsgNotAuthorized)
}

func (p *Renderer) log() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
