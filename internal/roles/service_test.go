package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/rbac-console/console/internal/rbacapi"
)

type stubRoleRepo struct {
	roles   []rbacapi.Role
	updates []string
	deleted []string
	err     error
}

func (s *stubRoleRepo) ListRoles(context.Context) ([]rbacapi.Role, error) {
	return s.roles, s.err
}

func (s *stubRoleRepo) CreateRole(_ context.Context, name string) error {
	if s.err != nil {
		return s.err
	}
	s.roles = append(s.roles, rbacapi.Role{ID: name, Name: name})
	return nil
}

func (s *stubRoleRepo) UpdateRole(_ context.Context, id, name string) error {
	s.updates = append(s.updates, id+"="+name)
	return s.err
}

func (s *stubRoleRepo) DeleteRole(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func TestRenameRoleSkipsUnchangedName(t *testing.T) {
	repo := &stubRoleRepo{}
	svc := NewService(repo)

	changed, err := svc.RenameRole(context.Background(), "r1", "admin", "admin")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if changed {
		t.Fatalf("expected no change")
	}
	if len(repo.updates) != 0 {
		t.Fatalf("expected no update call, got %v", repo.updates)
	}
}

func TestRenameRoleCallsRepository(t *testing.T) {
	repo := &stubRoleRepo{}
	svc := NewService(repo)

	changed, err := svc.RenameRole(context.Background(), "r1", "admin", "owner")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if !changed {
		t.Fatalf("expected change")
	}
	if len(repo.updates) != 1 || repo.updates[0] != "r1=owner" {
		t.Fatalf("unexpected updates %v", repo.updates)
	}
}

func TestRenameRolePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&stubRoleRepo{err: boom})

	changed, err := svc.RenameRole(context.Background(), "r1", "admin", "owner")
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if changed {
		t.Fatalf("failed rename must not report a change")
	}
}

func TestCreateAndDeleteRole(t *testing.T) {
	repo := &stubRoleRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.CreateRole(ctx, "manager"); err != nil {
		t.Fatalf("create: %v", err)
	}
	roles, err := svc.ListRoles(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(roles) != 1 || roles[0].Name != "manager" {
		t.Fatalf("unexpected roles %v", roles)
	}
	if err := svc.DeleteRole(ctx, "manager"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected one delete, got %v", repo.deleted)
	}
}
