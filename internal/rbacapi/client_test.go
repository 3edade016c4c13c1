package rbacapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbac-console/console/internal/rbacapi"
	"github.com/rbac-console/console/internal/rbacapi/rbacapitest"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveAPICall(resource, method string, status int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, method+" "+resource)
}

func newClient(t *testing.T, srv *rbacapitest.Server, opts ...rbacapi.Option) *rbacapi.Client {
	t.Helper()
	client, err := rbacapi.NewClient(srv.URL, 5*time.Second, opts...)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresAbsoluteURL(t *testing.T) {
	_, err := rbacapi.NewClient("/relative", time.Second)
	require.Error(t, err)

	_, err = rbacapi.NewClient("http://api.local/", 0)
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	srv := rbacapitest.New(t)
	srv.SeedRole("viewer", "setting.read")
	srv.SeedUser("ops@example.com", "hunter2", "viewer")
	client := newClient(t, srv)

	resp, err := client.Login(context.Background(), "ops@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, []string{"setting.read"}, resp.Permissions)
}

func TestLoginFailureIsInvalidCredentials(t *testing.T) {
	srv := rbacapitest.New(t)
	srv.SeedUser("ops@example.com", "hunter2")
	client := newClient(t, srv)

	_, err := client.Login(context.Background(), "ops@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, rbacapi.ErrInvalidCredentials))
}

func TestLoginTransportFailureIsInvalidCredentials(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	client, err := rbacapi.NewClient(down.URL, time.Second)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, rbacapi.ErrInvalidCredentials)
}

func TestRoleCRUD(t *testing.T) {
	srv := rbacapitest.New(t)
	_, token := srv.SeedAdmin()
	client := newClient(t, srv).WithToken(token)
	ctx := context.Background()

	require.NoError(t, client.CreateRole(ctx, "manager"))
	roles, err := client.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "manager", roles[1].Name)

	require.NoError(t, client.UpdateRole(ctx, roles[1].ID, "lead"))
	roles, err = client.ListRoles(ctx)
	require.NoError(t, err)
	assert.Equal(t, "lead", roles[1].Name)

	require.NoError(t, client.DeleteRole(ctx, roles[1].ID))
	roles, err = client.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestUserAndPermissionCRUD(t *testing.T) {
	srv := rbacapitest.New(t)
	_, token := srv.SeedAdmin()
	client := newClient(t, srv).WithToken(token)
	ctx := context.Background()

	require.NoError(t, client.CreateUser(ctx, "new@example.com", "pw"))
	users, err := client.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.NoError(t, client.UpdateUser(ctx, users[1].ID, "renamed@example.com"))
	require.NoError(t, client.DeleteUser(ctx, users[1].ID))
	users, err = client.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, client.CreatePermission(ctx, "report.read"))
	perms, err := client.ListPermissions(ctx)
	require.NoError(t, err)
	last := perms[len(perms)-1]
	assert.Equal(t, "report.read", last.Name)
	require.NoError(t, client.UpdatePermission(ctx, last.ID, "report.export"))
	require.NoError(t, client.DeletePermission(ctx, last.ID))
}

func TestRolePermissionLinks(t *testing.T) {
	srv := rbacapitest.New(t)
	_, token := srv.SeedAdmin()
	role := srv.SeedRole("auditor")
	read := srv.SeedPermission("audit.read")
	export := srv.SeedPermission("audit.export")
	client := newClient(t, srv).WithToken(token)
	ctx := context.Background()

	require.NoError(t, client.AddRolePermission(ctx, role.ID, read.ID))
	linked, err := client.RolePermissions(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []rbacapi.Permission{read}, linked)

	require.NoError(t, client.ReplaceRolePermission(ctx, role.ID, read.ID, export.ID))
	linked, err = client.RolePermissions(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []rbacapi.Permission{export}, linked)

	require.NoError(t, client.RemoveRolePermission(ctx, role.ID, export.ID))
	linked, err = client.RolePermissions(ctx, role.ID)
	require.NoError(t, err)
	assert.Empty(t, linked)

	assert.Contains(t, srv.Calls(), rbacapitest.Call{
		Method: http.MethodDelete,
		Path:   "/rbac/role-has-permission/" + role.ID + "/" + export.ID,
	})
}

func TestUserRoleLinks(t *testing.T) {
	srv := rbacapitest.New(t)
	_, token := srv.SeedAdmin()
	viewer := srv.SeedRole("viewer")
	editor := srv.SeedRole("editor")
	user := srv.SeedUser("ops@example.com", "pw")
	client := newClient(t, srv).WithToken(token)
	ctx := context.Background()

	require.NoError(t, client.AddUserRole(ctx, user.ID, viewer.ID))
	require.NoError(t, client.ReplaceUserRole(ctx, user.ID, viewer.ID, editor.ID))
	roles, err := client.UserRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []rbacapi.Role{editor}, roles)

	require.NoError(t, client.RemoveUserRole(ctx, user.ID, editor.ID))
	roles, err = client.UserRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestStatusErrorsAreUnauthorized(t *testing.T) {
	srv := rbacapitest.New(t)
	srv.SeedRole("viewer", "setting.read")
	user := srv.SeedUser("ops@example.com", "pw", "viewer")
	token := srv.IssueToken(user.ID, time.Now().Add(time.Hour))
	client := newClient(t, srv).WithToken(token)

	err := client.CreateRole(context.Background(), "manager")
	require.Error(t, err)
	assert.ErrorIs(t, err, rbacapi.ErrUnauthorized)

	var statusErr *rbacapi.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Contains(t, statusErr.Message, "setting.create")

	srv.FailNext(http.StatusInternalServerError, "boom")
	_, err = client.ListRoles(context.Background())
	assert.ErrorIs(t, err, rbacapi.ErrUnauthorized)
}

func TestMissingTokenIsRejected(t *testing.T) {
	srv := rbacapitest.New(t)
	client := newClient(t, srv)

	_, err := client.ListUsers(context.Background())
	var statusErr *rbacapi.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}

func TestWithTokenDoesNotMutateOriginal(t *testing.T) {
	srv := rbacapitest.New(t)
	_, token := srv.SeedAdmin()
	base := newClient(t, srv)

	_, err := base.WithToken(token).ListRoles(context.Background())
	require.NoError(t, err)

	_, err = base.ListRoles(context.Background())
	assert.ErrorIs(t, err, rbacapi.ErrUnauthorized)
}

func TestObserverSeesEveryCall(t *testing.T) {
	srv := rbacapitest.New(t)
	_, token := srv.SeedAdmin()
	obs := &recordingObserver{}
	client := newClient(t, srv, rbacapi.WithObserver(obs)).WithToken(token)

	_, err := client.ListRoles(context.Background())
	require.NoError(t, err)
	_, err = client.RolePermissions(context.Background(), "missing")
	require.Error(t, err)

	assert.Equal(t, []string{"GET role", "GET role-has-permission"}, obs.calls)
}

func TestCancelledContext(t *testing.T) {
	srv := rbacapitest.New(t)
	_, token := srv.SeedAdmin()
	client := newClient(t, srv).WithToken(token)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.ListRoles(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
