package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rbac-console/console/internal/rbac"
	"github.com/rbac-console/console/internal/shared"
	"github.com/rbac-console/console/internal/view"
)

// Notification texts.
const (
	MsgLoginSuccess = "Login success"
	MsgLoginFailed  = "Incorrect email/password"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	pages          *view.Renderer
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, pages *view.Renderer, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		pages:          pages,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

// loginForm checks presence only.
type loginForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.pages.Page(w, r, "pages/login.html", "Login", loginPageData{}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				errs[fieldErr.Field()] = fieldErr.Field() + " is required"
			}
		}
	}

	if len(errs) == 0 {
		creds, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		if err == nil && sess != nil {
			sess.SetCredentials(creds.Token, creds.Permissions)
			if _, err := h.csrfManager.Rotate(r.Context(), sess); err != nil {
				h.logger.Warn("rotate csrf token", slog.Any("error", err))
			}
			h.pages.Redirect(w, r, rbac.PathHome, shared.FlashSuccess, MsgLoginSuccess)
			return
		}
		if sess == nil {
			h.logger.Error("session missing during login")
		}
		h.logger.Info("login failed", slog.Any("error", err))
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: MsgLoginFailed})
		}
	}

	form.Password = ""
	h.pages.Page(w, r, "pages/login.html", "Login", loginPageData{Form: form, Errors: errs}, http.StatusBadRequest)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.ClearCredentials()
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, rbac.PathLogin, http.StatusSeeOther)
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleLogoutForTest exposes the logout handler for tests.
func (h *Handler) HandleLogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}
