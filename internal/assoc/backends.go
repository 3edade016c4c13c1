package assoc

import (
	"context"

	"github.com/rbac-console/console/internal/rbacapi"
)

// RolePermissionBackend links permissions to roles through the RBAC API.
type RolePermissionBackend struct {
	Client *rbacapi.Client
}

func (b RolePermissionBackend) Linked(ctx context.Context, roleID string) ([]Item, error) {
	perms, err := b.Client.RolePermissions(ctx, roleID)
	if err != nil {
		return nil, err
	}
	return permissionItems(perms), nil
}

func (b RolePermissionBackend) Catalog(ctx context.Context) ([]Item, error) {
	perms, err := b.Client.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	return permissionItems(perms), nil
}

func (b RolePermissionBackend) Add(ctx context.Context, roleID, permissionID string) error {
	return b.Client.AddRolePermission(ctx, roleID, permissionID)
}

func (b RolePermissionBackend) Replace(ctx context.Context, roleID, oldID, newID string) error {
	return b.Client.ReplaceRolePermission(ctx, roleID, oldID, newID)
}

func (b RolePermissionBackend) Remove(ctx context.Context, roleID, permissionID string) error {
	return b.Client.RemoveRolePermission(ctx, roleID, permissionID)
}

// UserRoleBackend links roles to users through the RBAC API.
type UserRoleBackend struct {
	Client *rbacapi.Client
}

func (b UserRoleBackend) Linked(ctx context.Context, userID string) ([]Item, error) {
	roles, err := b.Client.UserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	return roleItems(roles), nil
}

func (b UserRoleBackend) Catalog(ctx context.Context) ([]Item, error) {
	roles, err := b.Client.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	return roleItems(roles), nil
}

func (b UserRoleBackend) Add(ctx context.Context, userID, roleID string) error {
	return b.Client.AddUserRole(ctx, userID, roleID)
}

func (b UserRoleBackend) Replace(ctx context.Context, userID, oldID, newID string) error {
	return b.Client.ReplaceUserRole(ctx, userID, oldID, newID)
}

func (b UserRoleBackend) Remove(ctx context.Context, userID, roleID string) error {
	return b.Client.RemoveUserRole(ctx, userID, roleID)
}

func permissionItems(perms []rbacapi.Permission) []Item {
	items := make([]Item, 0, len(perms))
	for _, p := range perms {
		items = append(items, Item{ID: p.ID, Name: p.Name})
	}
	return items
}

func roleItems(roles []rbacapi.Role) []Item {
	items := make([]Item, 0, len(roles))
	for _, r := range roles {
		items = append(items, Item{ID: r.ID, Name: r.Name})
	}
	return items
}
