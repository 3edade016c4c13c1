// Package setting renders the User, Role and Permission tabs of the
// console's setting page.
package setting

import (
	"context"

	"github.com/rbac-console/console/internal/rbacapi"
)

// Section is one tab of the setting page.
type Section interface {
	// Key is the tab's path segment under /setting, e.g. "roles".
	Key() string
	// Title is the tab label, e.g. "Role".
	Title() string
	// Load fetches the tab's table with the operator's client.
	Load(ctx context.Context, client *rbacapi.Client) (Table, error)
}

// Table is the data behind one tab.
type Table struct {
	// Entity is the singular noun used in labels, e.g. "role".
	Entity string
	// Field is the inline editable column, e.g. "name".
	Field string
	// CreatePath receives the create form.
	CreatePath string
	// Password asks the create form for a password as well.
	Password bool
	// LinksTitle labels the link editor action; empty when the entity has
	// no link editor.
	LinksTitle string
	Rows       []Row
}

// Row is one record with the endpoints of its affordances.
type Row struct {
	ID         string
	Value      string
	UpdatePath string
	DeletePath string
	LinksPath  string
}
