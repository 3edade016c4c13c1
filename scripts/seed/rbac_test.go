package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbac-console/console/internal/rbacapi"
	"github.com/rbac-console/console/internal/rbacapi/rbacapitest"
)

func seedClient(t *testing.T) (*rbacapi.Client, *rbacapitest.Server) {
	t.Helper()
	srv := rbacapitest.New(t)
	_, token := srv.SeedAdmin()
	client, err := rbacapi.NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	return client.WithToken(token), srv
}

func TestSeedCreatesRoleAndLinks(t *testing.T) {
	client, _ := seedClient(t)
	ctx := context.Background()

	res, err := seedRBAC(ctx, client, "operator")
	require.NoError(t, err)
	assert.Equal(t, seedResult{RoleCreated: true, LinksAdded: 4}, res)

	res, err = seedRBAC(ctx, client, "operator")
	require.NoError(t, err)
	assert.Equal(t, seedResult{}, res)
}

func TestSeedCompletesPartialRole(t *testing.T) {
	client, srv := seedClient(t)
	role := srv.SeedRole("ops", "setting.read")

	res, err := seedRBAC(context.Background(), client, "ops")
	require.NoError(t, err)
	assert.False(t, res.RoleCreated)
	assert.Equal(t, 3, res.LinksAdded)

	linked, err := client.RolePermissions(context.Background(), role.ID)
	require.NoError(t, err)
	assert.Len(t, linked, 4)
}
