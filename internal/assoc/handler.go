package assoc

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rbac-console/console/internal/rbac"
	"github.com/rbac-console/console/internal/rbacapi"
	"github.com/rbac-console/console/internal/shared"
	"github.com/rbac-console/console/internal/view"
)

// Handler serves the link editor page of one kind.
type Handler struct {
	logger   *slog.Logger
	kind     Kind
	pages    *view.Renderer
	api      *rbacapi.Client
	rbac     rbac.Middleware
	backPath string
	backend  func(*rbacapi.Client) Backend
}

// NewHandler builds a Handler. backPath is where failures to load the
// editor send the operator, typically the owner's setting tab.
func NewHandler(logger *slog.Logger, kind Kind, pages *view.Renderer, api *rbacapi.Client, mw rbac.Middleware, backPath string, backend func(*rbacapi.Client) Backend) *Handler {
	return &Handler{
		logger:   logger,
		kind:     kind,
		pages:    pages,
		api:      api,
		rbac:     mw,
		backPath: backPath,
		backend:  backend,
	}
}

// MountRoutes registers the editor at pattern, which must contain an {id}
// parameter naming the owner. Routes are registered on r directly so the
// gate sees the full pattern.
func (h *Handler) MountRoutes(r chi.Router, pattern string) {
	r.Get(pattern, h.show)
	r.With(h.rbac.RequireAll(rbac.SettingCreate)).Post(pattern, h.create)
	r.With(h.rbac.RequireAll(rbac.SettingUpdate)).Post(pattern+"/update", h.update)
	r.With(h.rbac.RequireAll(rbac.SettingDelete)).Post(pattern+"/delete", h.remove)
}

type pageData struct {
	Kind    Kind
	OwnerID string
	State   State
	View    View
	// Path is the editor URL without state.
	Path      string
	ToggleURL string
	AddURL    string
	BackPath  string
}

func (h *Handler) editor(r *http.Request) *Editor {
	sess := shared.SessionFromContext(r.Context())
	return NewEditor(h.kind, h.backend(h.api.WithToken(sess.Token())))
}

func (h *Handler) ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		http.NotFound(w, r)
		return "", false
	}
	return id, true
}

// editorPath strips the action suffix from the request path.
func editorPath(r *http.Request) string {
	p := r.URL.Path
	for _, suffix := range []string{"/update", "/delete"} {
		p = strings.TrimSuffix(p, suffix)
	}
	return p
}

func withState(path string, s State) string {
	if q := s.Query().Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(w, r)
	if !ok {
		return
	}
	state := ParseState(r.URL.Query())
	loaded, err := h.editor(r).Load(r.Context(), ownerID)
	if err != nil {
		h.pages.Fail(w, r, h.backPath, err)
		return
	}
	SaveCatalog(shared.SessionFromContext(r.Context()), h.kind, ownerID, loaded.Catalog)

	path := r.URL.Path
	data := pageData{
		Kind:      h.kind,
		OwnerID:   ownerID,
		State:     state,
		View:      loaded,
		Path:      path,
		ToggleURL: withState(path, state.Toggle()),
		AddURL:    withState(path, state.BeginAdd()),
		BackPath:  h.backPath,
	}
	title := view.Title(h.kind.Owner) + " " + h.kind.Linked + "s"
	h.pages.Page(w, r, "pages/links.html", title, data, http.StatusOK)
}

// catalog returns the snapshot taken when the editor was shown, fetching a
// fresh one only when the session holds none for this owner.
func (h *Handler) catalog(r *http.Request, editor *Editor, ownerID string) ([]Item, error) {
	if items, ok := SavedCatalog(shared.SessionFromContext(r.Context()), h.kind, ownerID); ok {
		return items, nil
	}
	return editor.Catalog(r.Context())
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(w, r)
	if !ok {
		return
	}
	state := ParseState(r.URL.Query())
	back := withState(editorPath(r), state)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	editor := h.editor(r)
	catalog, err := h.catalog(r, editor, ownerID)
	if err != nil {
		h.pages.Fail(w, r, back, err)
		return
	}
	if _, err := editor.Create(r.Context(), ownerID, catalog, r.PostFormValue("name")); err != nil {
		h.fail(w, r, back, err)
		return
	}
	h.pages.Redirect(w, r, withState(editorPath(r), state.Created()), shared.FlashSuccess, view.Mapped(h.kind.Linked))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(w, r)
	if !ok {
		return
	}
	back := withState(editorPath(r), ParseState(r.URL.Query()))
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	oldName, newName := r.PostFormValue("old"), r.PostFormValue("name")
	if oldName == newName {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	editor := h.editor(r)
	catalog, err := h.catalog(r, editor, ownerID)
	if err != nil {
		h.pages.Fail(w, r, back, err)
		return
	}
	if _, _, err := editor.Update(r.Context(), ownerID, catalog, oldName, newName); err != nil {
		h.fail(w, r, back, err)
		return
	}
	h.pages.Redirect(w, r, back, shared.FlashSuccess, view.MappedUpdated(h.kind.Linked))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(w, r)
	if !ok {
		return
	}
	back := withState(editorPath(r), ParseState(r.URL.Query()))
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	editor := h.editor(r)
	catalog, err := h.catalog(r, editor, ownerID)
	if err != nil {
		h.pages.Fail(w, r, back, err)
		return
	}
	if _, err := editor.Remove(r.Context(), ownerID, catalog, r.PostFormValue("name")); err != nil {
		h.fail(w, r, back, err)
		return
	}
	h.pages.Redirect(w, r, back, shared.FlashSuccess, view.MappedDeleted(h.kind.Linked))
}

// fail reports resolution misses with their own message and everything
// else as an authorization failure.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, location string, err error) {
	var resolveErr *ResolveError
	if errors.As(err, &resolveErr) {
		h.logger.Info("link name not in catalog", slog.String("kind", h.kind.Linked), slog.String("name", resolveErr.Name))
		h.pages.Redirect(w, r, location, shared.FlashError, resolveErr.Error())
		return
	}
	h.pages.Fail(w, r, location, err)
}
