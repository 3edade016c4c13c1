package roles

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rbac-console/console/internal/assoc"
	"github.com/rbac-console/console/internal/rbac"
	"github.com/rbac-console/console/internal/rbacapi"
	"github.com/rbac-console/console/internal/setting"
	"github.com/rbac-console/console/internal/shared"
	"github.com/rbac-console/console/internal/view"
)

const entity = "role"

// Handler manages role endpoints under /setting.
type Handler struct {
	logger    *slog.Logger
	pages     *view.Renderer
	api       *rbacapi.Client
	rbac      rbac.Middleware
	links     *assoc.Handler
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, pages *view.Renderer, api *rbacapi.Client, mw rbac.Middleware) *Handler {
	links := assoc.NewHandler(logger, assoc.RolePermissions, pages, api, mw, rbac.PathSettingRoles,
		func(c *rbacapi.Client) assoc.Backend { return assoc.RolePermissionBackend{Client: c} })
	return &Handler{
		logger:    logger,
		pages:     pages,
		api:       api,
		rbac:      mw,
		links:     links,
		validator: validator.New(),
	}
}

// MountRoutes registers role routes. It must be called inside the gated
// group of the /setting router so route patterns are complete.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAll(rbac.SettingCreate)).Post("/roles", h.createRole)
	r.With(h.rbac.RequireAll(rbac.SettingUpdate)).Post("/roles/{id}", h.updateRole)
	r.With(h.rbac.RequireAll(rbac.SettingDelete)).Post("/roles/{id}/delete", h.deleteRole)
	h.links.MountRoutes(r, "/roles/{id}/permissions")
}

// Key implements setting.Section.
func (h *Handler) Key() string { return "roles" }

// Title implements setting.Section.
func (h *Handler) Title() string { return "Role" }

// Load implements setting.Section.
func (h *Handler) Load(ctx context.Context, client *rbacapi.Client) (setting.Table, error) {
	table := setting.Table{
		Entity:     entity,
		Field:      "name",
		CreatePath: rbac.PathSettingRoles,
		LinksTitle: "Permissions",
	}
	roles, err := NewService(client).ListRoles(ctx)
	if err != nil {
		return table, err
	}
	for _, role := range roles {
		base := rbac.PathSettingRoles + "/" + role.ID
		table.Rows = append(table.Rows, setting.Row{
			ID:         role.ID,
			Value:      role.Name,
			UpdatePath: base,
			DeletePath: base + "/delete",
			LinksPath:  base + "/permissions",
		})
	}
	return table, nil
}

type createForm struct {
	Name string `validate:"required"`
}

type updateForm struct {
	Value    string `validate:"required"`
	Original string
}

func (h *Handler) service(r *http.Request) *Service {
	sess := shared.SessionFromContext(r.Context())
	return NewService(h.api.WithToken(sess.Token()))
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := createForm{Name: r.PostFormValue("name")}
	if err := h.validator.Struct(form); err != nil {
		h.pages.Redirect(w, r, rbac.PathSettingRoles, shared.FlashError, "Name is required")
		return
	}
	if err := h.service(r).CreateRole(r.Context(), form.Name); err != nil {
		h.pages.Fail(w, r, rbac.PathSettingRoles, err)
		return
	}
	h.pages.Redirect(w, r, rbac.PathSettingRoles, shared.FlashSuccess, view.Created(entity))
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	form := updateForm{Value: r.PostFormValue("value"), Original: r.PostFormValue("original")}
	if err := h.validator.Struct(form); err != nil {
		h.pages.Redirect(w, r, rbac.PathSettingRoles, shared.FlashError, "Name is required")
		return
	}
	changed, err := h.service(r).RenameRole(r.Context(), id, form.Original, form.Value)
	if err != nil {
		h.pages.Fail(w, r, rbac.PathSettingRoles, err)
		return
	}
	if !changed {
		http.Redirect(w, r, rbac.PathSettingRoles, http.StatusSeeOther)
		return
	}
	h.pages.Redirect(w, r, rbac.PathSettingRoles, shared.FlashSuccess, view.Updated(entity, "name"))
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service(r).DeleteRole(r.Context(), id); err != nil {
		h.pages.Fail(w, r, rbac.PathSettingRoles, err)
		return
	}
	h.pages.Redirect(w, r, rbac.PathSettingRoles, shared.FlashSuccess, view.Deleted(entity))
}

func parseID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		http.NotFound(w, r)
		return "", false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return "", false
	}
	return id, true
}
