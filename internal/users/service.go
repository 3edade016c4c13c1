package users

import (
	"context"

	"github.com/rbac-console/console/internal/rbacapi"
)

// RepositoryPort defines the remote calls the user pages make.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]rbacapi.User, error)
	CreateUser(ctx context.Context, email, password string) error
	UpdateUser(ctx context.Context, id, email string) error
	DeleteUser(ctx context.Context, id string) error
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]rbacapi.User, error) {
	return s.repo.ListUsers(ctx)
}

// CreateUser creates a user.
func (s *Service) CreateUser(ctx context.Context, email, password string) error {
	return s.repo.CreateUser(ctx, email, password)
}

// ChangeEmail updates a user's email unless it equals original. It reports
// whether a call was made.
func (s *Service) ChangeEmail(ctx context.Context, id, original, email string) (bool, error) {
	if email == original {
		return false, nil
	}
	if err := s.repo.UpdateUser(ctx, id, email); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteUser removes a user.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}
