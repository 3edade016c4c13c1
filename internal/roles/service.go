package roles

import (
	"context"

	"github.com/rbac-console/console/internal/rbacapi"
)

// RepositoryPort defines the remote calls the role pages make.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]rbacapi.Role, error)
	CreateRole(ctx context.Context, name string) error
	UpdateRole(ctx context.Context, id, name string) error
	DeleteRole(ctx context.Context, id string) error
}

// Service handles role business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]rbacapi.Role, error) {
	return s.repo.ListRoles(ctx)
}

// CreateRole creates a role called name.
func (s *Service) CreateRole(ctx context.Context, name string) error {
	return s.repo.CreateRole(ctx, name)
}

// RenameRole renames a role unless name equals original, in which case no
// call is made. It reports whether the role was updated.
func (s *Service) RenameRole(ctx context.Context, id, original, name string) (bool, error) {
	if name == original {
		return false, nil
	}
	if err := s.repo.UpdateRole(ctx, id, name); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteRole removes a role.
func (s *Service) DeleteRole(ctx context.Context, id string) error {
	return s.repo.DeleteRole(ctx, id)
}
