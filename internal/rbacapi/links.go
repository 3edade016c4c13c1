package rbacapi

import (
	"context"
	"net/http"
)

// RolePermissions lists the permissions linked to a role.
func (c *Client) RolePermissions(ctx context.Context, roleID string) ([]Permission, error) {
	perms := []Permission{}
	if err := c.do(ctx, http.MethodGet, nil, &perms, rbacPrefix, ResourceRoleHasPermission, roleID); err != nil {
		return nil, err
	}
	return perms, nil
}

// AddRolePermission links a permission to a role.
func (c *Client) AddRolePermission(ctx context.Context, roleID, permissionID string) error {
	body := RoleHasPermission{RoleID: roleID, PermissionID: permissionID}
	return c.do(ctx, http.MethodPost, body, nil, rbacPrefix, ResourceRoleHasPermission)
}

// ReplaceRolePermission swaps oldID for newID on a role.
func (c *Client) ReplaceRolePermission(ctx context.Context, roleID, oldID, newID string) error {
	body := RoleHasPermissionUpdate{OldPermissionID: oldID, NewPermissionID: newID}
	return c.do(ctx, http.MethodPatch, body, nil, rbacPrefix, ResourceRoleHasPermission, roleID)
}

// RemoveRolePermission unlinks a permission from a role.
func (c *Client) RemoveRolePermission(ctx context.Context, roleID, permissionID string) error {
	return c.do(ctx, http.MethodDelete, nil, nil, rbacPrefix, ResourceRoleHasPermission, roleID, permissionID)
}

// UserRoles lists the roles linked to a user.
func (c *Client) UserRoles(ctx context.Context, userID string) ([]Role, error) {
	roles := []Role{}
	if err := c.do(ctx, http.MethodGet, nil, &roles, rbacPrefix, ResourceUserHasRole, userID); err != nil {
		return nil, err
	}
	return roles, nil
}

// AddUserRole links a role to a user.
func (c *Client) AddUserRole(ctx context.Context, userID, roleID string) error {
	return c.do(ctx, http.MethodPost, UserHasRole{UserID: userID, RoleID: roleID}, nil, rbacPrefix, ResourceUserHasRole)
}

// ReplaceUserRole swaps oldID for newID on a user.
func (c *Client) ReplaceUserRole(ctx context.Context, userID, oldID, newID string) error {
	body := UserHasRoleUpdate{OldRoleID: oldID, NewRoleID: newID}
	return c.do(ctx, http.MethodPatch, body, nil, rbacPrefix, ResourceUserHasRole, userID)
}

// RemoveUserRole unlinks a role from a user.
func (c *Client) RemoveUserRole(ctx context.Context, userID, roleID string) error {
	return c.do(ctx, http.MethodDelete, nil, nil, rbacPrefix, ResourceUserHasRole, userID, roleID)
}
