package rbacapi

// Resource path segments under /rbac.
const (
	ResourceUser              = "user"
	ResourceRole              = "role"
	ResourcePermission        = "permission"
	ResourceUserHasRole       = "user-has-role"
	ResourceRoleHasPermission = "role-has-permission"
)

// User is an operator account. Passwords are never returned.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Role groups permissions.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Permission is an atomic capability such as "setting.read".
type Permission struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the operator's token and permission names.
type LoginResponse struct {
	Token       string   `json:"token"`
	Permissions []string `json:"permissions"`
}

// CreateUserRequest is the body of POST /rbac/user.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the body of PATCH /rbac/user/:id.
type UpdateUserRequest struct {
	Email string `json:"email"`
}

// NameRequest is the create and update body for roles and permissions.
type NameRequest struct {
	Name string `json:"name"`
}

// RoleHasPermission links a role to a permission.
type RoleHasPermission struct {
	RoleID       string `json:"role_id"`
	PermissionID string `json:"permission_id"`
}

// RoleHasPermissionUpdate swaps one linked permission for another.
type RoleHasPermissionUpdate struct {
	OldPermissionID string `json:"old_permission_id"`
	NewPermissionID string `json:"new_permission_id"`
}

// UserHasRole links a user to a role.
type UserHasRole struct {
	UserID string `json:"user_id"`
	RoleID string `json:"role_id"`
}

// UserHasRoleUpdate swaps one linked role for another.
type UserHasRoleUpdate struct {
	OldRoleID string `json:"old_role_id"`
	NewRoleID string `json:"new_role_id"`
}
