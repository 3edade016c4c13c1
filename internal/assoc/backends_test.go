package assoc_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbac-console/console/internal/assoc"
	"github.com/rbac-console/console/internal/rbacapi"
	"github.com/rbac-console/console/internal/rbacapi/rbacapitest"
)

func TestRolePermissionEditorAgainstAPI(t *testing.T) {
	srv := rbacapitest.New(t)
	_, token := srv.SeedAdmin()
	manager := srv.SeedRole("manager")
	client, err := rbacapi.NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	editor := assoc.NewEditor(assoc.RolePermissions, assoc.RolePermissionBackend{Client: client.WithToken(token)})
	ctx := context.Background()

	view, err := editor.Load(ctx, manager.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Linked)
	require.NotEmpty(t, view.Catalog)
	assert.Equal(t, "setting.read", view.Default)

	linked, err := editor.Create(ctx, manager.ID, view.Catalog, "setting.read")
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "setting.read", linked[0].Name)

	fresh, err := client.WithToken(token).RolePermissions(ctx, manager.ID)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, fresh[0].ID, linked[0].ID)

	srv.ResetCalls()
	_, err = editor.Remove(ctx, manager.ID, view.Catalog, "setting.export")
	assert.EqualError(t, err, "permission id not found")
	assert.Empty(t, srv.Calls())
}

func TestUserRoleEditorAgainstAPI(t *testing.T) {
	srv := rbacapitest.New(t)
	_, token := srv.SeedAdmin()
	srv.SeedRole("viewer", "setting.read")
	user := srv.SeedUser("ops@example.com", "pw", "viewer")
	client, err := rbacapi.NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	editor := assoc.NewEditor(assoc.UserRoles, assoc.UserRoleBackend{Client: client.WithToken(token)})
	ctx := context.Background()

	view, err := editor.Load(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, view.Linked, 1)

	linked, changed, err := editor.Update(ctx, user.ID, view.Catalog, "viewer", "admin")
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, linked, 1)
	assert.Equal(t, "admin", linked[0].Name)

	assert.Contains(t, srv.Calls(), rbacapitest.Call{Method: http.MethodPatch, Path: "/rbac/user-has-role/" + user.ID})
}
