package main

import (
	"context"
	"fmt"

	"github.com/rbac-console/console/internal/rbac"
	"github.com/rbac-console/console/internal/rbacapi"
)

type seedResult struct {
	PermissionsCreated int
	RoleCreated        bool
	LinksAdded         int
}

// seedRBAC ensures every setting permission exists and that roleName holds
// all of them. Existing records are matched by name.
func seedRBAC(ctx context.Context, client *rbacapi.Client, roleName string) (seedResult, error) {
	var res seedResult

	perms, err := client.ListPermissions(ctx)
	if err != nil {
		return res, fmt.Errorf("list permissions: %w", err)
	}
	have := make(map[string]bool, len(perms))
	for _, p := range perms {
		have[p.Name] = true
	}
	for _, p := range rbac.All() {
		if have[p.String()] {
			continue
		}
		if err := client.CreatePermission(ctx, p.String()); err != nil {
			return res, fmt.Errorf("create permission %s: %w", p, err)
		}
		res.PermissionsCreated++
	}
	if res.PermissionsCreated > 0 {
		if perms, err = client.ListPermissions(ctx); err != nil {
			return res, fmt.Errorf("list permissions: %w", err)
		}
	}

	role, found, err := findRole(ctx, client, roleName)
	if err != nil {
		return res, err
	}
	if !found {
		if err := client.CreateRole(ctx, roleName); err != nil {
			return res, fmt.Errorf("create role %s: %w", roleName, err)
		}
		res.RoleCreated = true
		if role, found, err = findRole(ctx, client, roleName); err != nil {
			return res, err
		}
		if !found {
			return res, fmt.Errorf("role %s missing after create", roleName)
		}
	}

	linked, err := client.RolePermissions(ctx, role.ID)
	if err != nil {
		return res, fmt.Errorf("list role permissions: %w", err)
	}
	held := make(map[string]bool, len(linked))
	for _, p := range linked {
		held[p.ID] = true
	}
	wanted := make(map[string]bool)
	for _, p := range rbac.All() {
		wanted[p.String()] = true
	}
	for _, p := range perms {
		if !wanted[p.Name] || held[p.ID] {
			continue
		}
		if err := client.AddRolePermission(ctx, role.ID, p.ID); err != nil {
			return res, fmt.Errorf("link %s to %s: %w", p.Name, roleName, err)
		}
		res.LinksAdded++
	}
	return res, nil
}

func findRole(ctx context.Context, client *rbacapi.Client, name string) (rbacapi.Role, bool, error) {
	roles, err := client.ListRoles(ctx)
	if err != nil {
		return rbacapi.Role{}, false, fmt.Errorf("list roles: %w", err)
	}
	for _, r := range roles {
		if r.Name == name {
			return r, true, nil
		}
	}
	return rbacapi.Role{}, false, nil
}
