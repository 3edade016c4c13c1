package auth

import (
	"context"
	"fmt"

	"github.com/rbac-console/console/internal/rbacapi"
	"github.com/rbac-console/console/internal/shared"
)

// ErrInvalidCredentials is returned for every failed login.
var ErrInvalidCredentials = rbacapi.ErrInvalidCredentials

// Authenticator exchanges credentials with the RBAC API.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (rbacapi.LoginResponse, error)
}

// Service wraps authentication business rules.
type Service struct {
	api Authenticator
}

// NewService constructs a new Service.
func NewService(api Authenticator) *Service {
	return &Service{api: api}
}

// Authenticate returns the operator's credentials. The permission list is
// taken from the login response as-is.
func (s *Service) Authenticate(ctx context.Context, email, password string) (shared.Credentials, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return shared.Credentials{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return shared.Credentials{Token: resp.Token, Permissions: resp.Permissions}, nil
}
