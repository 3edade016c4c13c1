package users

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

const entity = "user"

// Handler manages user endpoints under /setting.
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
	links := assoc.NewHandler(logger, assoc.UserRoles, pages, api, mw, rbac.PathSettingUsers,
		func(c *rbacapi.Client) assoc.Backend { return assoc.UserRoleBackend{Client: c} })
	return &Handler{
		logger:    logger,
		pages:     pages,
		api:       api,
		rbac:      mw,
		links:     links,
		validator: validator.New(),
	}
}

// MountRoutes registers user routes inside the gated /setting group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAll(rbac.SettingCreate)).Post("/users", h.createUser)
	r.With(h.rbac.RequireAll(rbac.SettingUpdate)).Post("/users/{id}", h.updateUser)
	r.With(h.rbac.RequireAll(rbac.SettingDelete)).Post("/users/{id}/delete", h.deleteUser)
	h.links.MountRoutes(r, "/users/{id}/roles")
}

// Key implements setting.Section.
func (h *Handler) Key() string { return "users" }

// Title implements setting.Section.
func (h *Handler) Title() string { return "User" }

// Load implements setting.Section.
func (h *Handler) Load(ctx context.Context, client *rbacapi.Client) (setting.Table, error) {
	table := setting.Table{
		Entity:     entity,
		Field:      "email",
		CreatePath: rbac.PathSettingUsers,
		Password:   true,
		LinksTitle: "Roles",
	}
	users, err := NewService(client).ListUsers(ctx)
	if err != nil {
		return table, err
	}
	for _, u := range users {
		base := rbac.PathSettingUsers + "/" + u.ID
		table.Rows = append(table.Rows, setting.Row{
			ID:         u.ID,
			Value:      u.Email,
			UpdatePath: base,
			DeletePath: base + "/delete",
			LinksPath:  base + "/roles",
		})
	}
	return table, nil
}

// createForm only checks presence; the API owns every other rule.
type createForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type updateForm struct {
	Value    string `validate:"required"`
	Original string
}

func (h *Handler) service(r *http.Request) *Service {
	sess := shared.SessionFromContext(r.Context())
	return NewService(h.api.WithToken(sess.Token()))
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := createForm{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}
	if err := h.validator.Struct(form); err != nil {
		h.pages.Redirect(w, r, rbac.PathSettingUsers, shared.FlashError, "Email and password are required")
		return
	}
	if err := h.service(r).CreateUser(r.Context(), form.Email, form.Password); err != nil {
		h.pages.Fail(w, r, rbac.PathSettingUsers, err)
		return
	}
	h.pages.Redirect(w, r, rbac.PathSettingUsers, shared.FlashSuccess, view.Created(entity))
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	form := updateForm{Value: r.PostFormValue("value"), Original: r.PostFormValue("original")}
	if err := h.validator.Struct(form); err != nil {
		h.pages.Redirect(w, r, rbac.PathSettingUsers, shared.FlashError, "Email is required")
		return
	}
	changed, err := h.service(r).ChangeEmail(r.Context(), id, form.Original, form.Value)
	if err != nil {
		h.pages.Fail(w, r, rbac.PathSettingUsers, err)
		return
	}
	if !changed {
		http.Redirect(w, r, rbac.PathSettingUsers, http.StatusSeeOther)
		return
	}
	h.pages.Redirect(w, r, rbac.PathSettingUsers, shared.FlashSuccess, view.Updated(entity, "email"))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service(r).DeleteUser(r.Context(), id); err != nil {
		h.pages.Fail(w, r, rbac.PathSettingUsers, err)
		return
	}
	h.pages.Redirect(w, r, rbac.PathSettingUsers, shared.FlashSuccess, view.Deleted(entity))
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
