package permissions

import (
	"context"

	"github.com/rbac-console/console/internal/rbacapi"
)

// RepositoryPort defines the remote calls the permission pages make.
type RepositoryPort interface {
	ListPermissions(ctx context.Context) ([]rbacapi.Permission, error)
	CreatePermission(ctx context.Context, name string) error
	UpdatePermission(ctx context.Context, id, name string) error
	DeletePermission(ctx context.Context, id string) error
}

// Service handles permission business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListPermissions returns all permissions.
func (s *Service) ListPermissions(ctx context.Context) ([]rbacapi.Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// CreatePermission creates a permission. Names are free-form: the console
// does not require them to be ones it understands.
func (s *Service) CreatePermission(ctx context.Context, name string) error {
	return s.repo.CreatePermission(ctx, name)
}

// RenamePermission renames unless name equals original.
func (s *Service) RenamePermission(ctx context.Context, id, original, name string) (bool, error) {
	if name == original {
		return false, nil
	}
	if err := s.repo.UpdatePermission(ctx, id, name); err != nil {
		return false, err
	}
	return true, nil
}

// DeletePermission removes a permission.
func (s *Service) DeletePermission(ctx context.Context, id string) error {
	return s.repo.DeletePermission(ctx, id)
}
