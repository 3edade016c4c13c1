package rbac

import "strings"

// Route describes a gated console page.
type Route struct {
	Path        string
	Title       string
	Permissions []Permission
	// Hidden routes are gated but never listed in the navigation menu.
	Hidden   bool
	Children []Route
}

// Console page paths.
const (
	PathHome               = "/"
	PathSetting            = "/setting"
	PathSettingUsers       = "/setting/users"
	PathSettingRoles       = "/setting/roles"
	PathSettingPermissions = "/setting/permissions"
	PathRolePermissions    = "/setting/roles/{id}/permissions"
	PathUserRoles          = "/setting/users/{id}/roles"
	PathLogin              = "/auth/login"
	PathUnauthorized       = "/error"
)

// DefaultRoutes returns the console route table. Child paths are relative
// to their parent.
func DefaultRoutes() []Route {
	read := []Permission{SettingRead}
	return []Route{
		{Path: PathHome, Title: "Home"},
		{
			Path:        PathSetting,
			Title:       "Setting",
			Permissions: read,
			Children: []Route{
				{Path: "/users", Title: "User", Permissions: read},
				{Path: "/roles", Title: "Role", Permissions: read},
				{Path: "/permissions", Title: "Permission", Permissions: read},
				{Path: "/roles/{id}/permissions", Title: "Role permissions", Permissions: read, Hidden: true},
				{Path: "/users/{id}/roles", Title: "User roles", Permissions: read, Hidden: true},
			},
		},
	}
}

// Table is an immutable, flattened view of a route tree keyed by full path.
type Table struct {
	top   []Route
	byKey map[string]Route
}

// NewTable flattens routes. Later duplicates of a path are ignored.
func NewTable(routes []Route) *Table {
	t := &Table{top: routes, byKey: make(map[string]Route)}
	var walk func(prefix string, rs []Route)
	walk = func(prefix string, rs []Route) {
		for _, r := range rs {
			full := joinPath(prefix, r.Path)
			if _, ok := t.byKey[full]; !ok {
				flat := r
				flat.Path = full
				flat.Children = nil
				t.byKey[full] = flat
			}
			walk(full, r.Children)
		}
	}
	walk("", routes)
	return t
}

// Lookup finds the route whose full path equals path exactly.
func (t *Table) Lookup(path string) (Route, bool) {
	r, ok := t.byKey[path]
	return r, ok
}

// Top returns the top-level routes in declaration order.
func (t *Table) Top() []Route {
	return t.top
}

// Paths returns every full path in the table.
func (t *Table) Paths() []string {
	paths := make([]string, 0, len(t.byKey))
	for p := range t.byKey {
		paths = append(paths, p)
	}
	return paths
}

func joinPath(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(path, "/")
}
