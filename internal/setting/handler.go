package setting

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rbac-console/console/internal/rbac"
	"github.com/rbac-console/console/internal/rbacapi"
	"github.com/rbac-console/console/internal/shared"
	"github.com/rbac-console/console/internal/view"
)

// Handler serves the setting page and its tabs.
type Handler struct {
	logger   *slog.Logger
	pages    *view.Renderer
	api      *rbacapi.Client
	sections []Section
}

// NewHandler builds a Handler. The first section is the default tab.
func NewHandler(logger *slog.Logger, pages *view.Renderer, api *rbacapi.Client, sections ...Section) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, pages: pages, api: api, sections: sections}
}

// Tab is a link in the tab strip.
type Tab struct {
	Title  string
	Path   string
	Active bool
}

type pageData struct {
	Tabs  []Tab
	Table Table
}

// MountRoutes registers the tab pages. It must be called inside the gated
// group of the /setting router.
func (h *Handler) MountRoutes(r chi.Router) {
	if len(h.sections) == 0 {
		return
	}
	r.Get("/", h.show(h.sections[0]))
	for _, s := range h.sections {
		r.Get("/"+s.Key(), h.show(s))
	}
}

func (h *Handler) show(section Section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		table, err := section.Load(r.Context(), h.api.WithToken(sess.Token()))
		if err != nil {
			h.logger.Warn("load setting tab", slog.String("tab", section.Key()), slog.Any("error", err))
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: view.MsgNotAuthorized})
		}
		data := pageData{Tabs: h.tabs(section), Table: table}
		h.pages.Page(w, r, "pages/setting.html", "Setting", data, http.StatusOK)
	}
}

func (h *Handler) tabs(active Section) []Tab {
	tabs := make([]Tab, 0, len(h.sections))
	for _, s := range h.sections {
		tabs = append(tabs, Tab{
			Title:  s.Title(),
			Path:   rbac.PathSetting + "/" + s.Key(),
			Active: s.Key() == active.Key(),
		})
	}
	return tabs
}
