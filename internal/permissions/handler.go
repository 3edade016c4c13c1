// Package permissions serves the Permission tab of the setting page.
package permissions

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rbac-console/console/internal/rbac"
	"github.com/rbac-console/console/internal/rbacapi"
	"github.com/rbac-console/console/internal/setting"
	"github.com/rbac-console/console/internal/shared"
	"github.com/rbac-console/console/internal/view"
)

const entity = "permission"

// Handler manages permission endpoints under /setting.
type Handler struct {
	logger    *slog.Logger
	pages     *view.Renderer
	api       *rbacapi.Client
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, pages *view.Renderer, api *rbacapi.Client, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, pages: pages, api: api, rbac: mw, validator: validator.New()}
}

// MountRoutes registers permission routes inside the gated /setting group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAll(rbac.SettingCreate)).Post("/permissions", h.createPermission)
	r.With(h.rbac.RequireAll(rbac.SettingUpdate)).Post("/permissions/{id}", h.updatePermission)
	r.With(h.rbac.RequireAll(rbac.SettingDelete)).Post("/permissions/{id}/delete", h.deletePermission)
}

func (h *Handler) Key() string   { return "permissions" }
func (h *Handler) Title() string { return "Permission" }

// Load implements setting.Section. Permissions have no link editor.
func (h *Handler) Load(ctx context.Context, client *rbacapi.Client) (setting.Table, error) {
	table := setting.Table{Entity: entity, Field: "name", CreatePath: rbac.PathSettingPermissions}
	perms, err := NewService(client).ListPermissions(ctx)
	if err != nil {
		return table, err
	}
	for _, p := range perms {
		base := rbac.PathSettingPermissions + "/" + p.ID
		table.Rows = append(table.Rows, setting.Row{
			ID:         p.ID,
			Value:      p.Name,
			UpdatePath: base,
			DeletePath: base + "/delete",
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

func (h *Handler) createPermission(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := createForm{Name: r.PostFormValue("name")}
	if err := h.validator.Struct(form); err != nil {
		h.pages.Redirect(w, r, rbac.PathSettingPermissions, shared.FlashError, "Name is required")
		return
	}
	if err := h.service(r).CreatePermission(r.Context(), form.Name); err != nil {
		h.pages.Fail(w, r, rbac.PathSettingPermissions, err)
		return
	}
	h.pages.Redirect(w, r, rbac.PathSettingPermissions, shared.FlashSuccess, view.Created(entity))
}

func (h *Handler) updatePermission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		http.NotFound(w, r)
		return
	}
	form := updateForm{Value: r.PostFormValue("value"), Original: r.PostFormValue("original")}
	if err := h.validator.Struct(form); err != nil {
		h.pages.Redirect(w, r, rbac.PathSettingPermissions, shared.FlashError, "Name is required")
		return
	}
	changed, err := h.service(r).RenamePermission(r.Context(), id, form.Original, form.Value)
	if err != nil {
		h.pages.Fail(w, r, rbac.PathSettingPermissions, err)
		return
	}
	if !changed {
		http.Redirect(w, r, rbac.PathSettingPermissions, http.StatusSeeOther)
		return
	}
	h.pages.Redirect(w, r, rbac.PathSettingPermissions, shared.FlashSuccess, view.Updated(entity, "name"))
}

func (h *Handler) deletePermission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.service(r).DeletePermission(r.Context(), id); err != nil {
		h.pages.Fail(w, r, rbac.PathSettingPermissions, err)
		return
	}
	h.pages.Redirect(w, r, rbac.PathSettingPermissions, shared.FlashSuccess, view.Deleted(entity))
}
