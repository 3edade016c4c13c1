package rbacapi

import (
	"context"
	"errors"
	"net/http"
)

// Login exchanges credentials for a token and permission list. Any failure,
// including transport errors, is reported as ErrInvalidCredentials wrapping
// the cause.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, LoginRequest{Email: email, Password: password}, &resp, authPrefix, "login")
	if err != nil {
		return LoginResponse{}, errors.Join(ErrInvalidCredentials, err)
	}
	if resp.Token == "" {
		return LoginResponse{}, ErrInvalidCredentials
	}
	if resp.Permissions == nil {
		resp.Permissions = []string{}
	}
	return resp, nil
}

// ListUsers returns every user.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	users := []User{}
	if err := c.do(ctx, http.MethodGet, nil, &users, rbacPrefix, ResourceUser); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates a user with the given email and password.
func (c *Client) CreateUser(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, CreateUserRequest{Email: email, Password: password}, nil, rbacPrefix, ResourceUser)
}

// UpdateUser changes a user's email.
func (c *Client) UpdateUser(ctx context.Context, id, email string) error {
	return c.do(ctx, http.MethodPatch, UpdateUserRequest{Email: email}, nil, rbacPrefix, ResourceUser, id)
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, nil, nil, rbacPrefix, ResourceUser, id)
}

// ListRoles returns every role.
func (c *Client) ListRoles(ctx context.Context) ([]Role, error) {
	roles := []Role{}
	if err := c.do(ctx, http.MethodGet, nil, &roles, rbacPrefix, ResourceRole); err != nil {
		return nil, err
	}
	return roles, nil
}

// CreateRole creates a role.
func (c *Client) CreateRole(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, NameRequest{Name: name}, nil, rbacPrefix, ResourceRole)
}

// UpdateRole renames a role.
func (c *Client) UpdateRole(ctx context.Context, id, name string) error {
	return c.do(ctx, http.MethodPatch, NameRequest{Name: name}, nil, rbacPrefix, ResourceRole, id)
}

// DeleteRole removes a role.
func (c *Client) DeleteRole(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, nil, nil, rbacPrefix, ResourceRole, id)
}

// ListPermissions returns every permission.
func (c *Client) ListPermissions(ctx context.Context) ([]Permission, error) {
	perms := []Permission{}
	if err := c.do(ctx, http.MethodGet, nil, &perms, rbacPrefix, ResourcePermission); err != nil {
		return nil, err
	}
	return perms, nil
}

// CreatePermission creates a permission.
func (c *Client) CreatePermission(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, NameRequest{Name: name}, nil, rbacPrefix, ResourcePermission)
}

// UpdatePermission renames a permission.
func (c *Client) UpdatePermission(ctx context.Context, id, name string) error {
	return c.do(ctx, http.MethodPatch, NameRequest{Name: name}, nil, rbacPrefix, ResourcePermission, id)
}

// DeletePermission removes a permission.
func (c *Client) DeletePermission(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, nil, nil, rbacPrefix, ResourcePermission, id)
}
