package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/rbac-console/console/internal/rbac"
	"github.com/rbac-console/console/internal/shared"
	"github.com/rbac-console/console/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flashes     []shared.FlashMessage
	CurrentPath string
	// Menu lists the navigation entries the operator may see.
	Menu []rbac.MenuEntry
	// Actions gates the create, update and delete affordances.
	Actions  rbac.Actions
	LoggedIn bool
	Data     any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"title": Title,
		"withQuery": func(path string, q url.Values) string {
			if enc := q.Encode(); enc != "" {
				return path + "?" + enc
			}
			return path
		},
		"active": func(current, path string) bool {
			if path == rbac.PathHome {
				return current == path
			}
			return current == path || len(current) > len(path) && current[:len(path)+1] == path+"/"
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData. Output is buffered so
// a failing template never leaves a half written page.
func (e *Engine) Render(w http.ResponseWriter, name string, status int, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
