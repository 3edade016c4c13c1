package permissions

import (
	"context"
	"testing"

	"github.com/rbac-console/console/internal/rbacapi"
)

type stubPermissionRepo struct {
	perms   []rbacapi.Permission
	updates int
	deleted []string
}

func (s *stubPermissionRepo) ListPermissions(context.Context) ([]rbacapi.Permission, error) {
	return s.perms, nil
}

func (s *stubPermissionRepo) CreatePermission(_ context.Context, name string) error {
	s.perms = append(s.perms, rbacapi.Permission{ID: name, Name: name})
	return nil
}

func (s *stubPermissionRepo) UpdatePermission(context.Context, string, string) error {
	s.updates++
	return nil
}

func (s *stubPermissionRepo) DeletePermission(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func TestRenamePermission(t *testing.T) {
	repo := &stubPermissionRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	changed, err := svc.RenamePermission(ctx, "p1", "setting.read", "setting.read")
	if err != nil || changed {
		t.Fatalf("expected no-op, got changed=%v err=%v", changed, err)
	}
	changed, err = svc.RenamePermission(ctx, "p1", "setting.read", "setting.view")
	if err != nil || !changed {
		t.Fatalf("expected rename, got changed=%v err=%v", changed, err)
	}
	if repo.updates != 1 {
		t.Fatalf("expected one update call, got %d", repo.updates)
	}
}

func TestCreateListDeletePermission(t *testing.T) {
	repo := &stubPermissionRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.CreatePermission(ctx, "report.read"); err != nil {
		t.Fatalf("create: %v", err)
	}
	perms, err := svc.ListPermissions(ctx)
	if err != nil || len(perms) != 1 {
		t.Fatalf("unexpected list %v err=%v", perms, err)
	}
	if err := svc.DeletePermission(ctx, perms[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "report.read" {
		t.Fatalf("unexpected deletes %v", repo.deleted)
	}
}
