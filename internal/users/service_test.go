package users

import (
	"context"
	"errors"
	"testing"

	"github.com/rbac-console/console/internal/rbacapi"
)

type stubUserRepo struct {
	users   []rbacapi.User
	created map[string]string
	updates []string
	err     error
}

func (s *stubUserRepo) ListUsers(context.Context) ([]rbacapi.User, error) {
	return s.users, s.err
}

func (s *stubUserRepo) CreateUser(_ context.Context, email, password string) error {
	if s.created == nil {
		s.created = map[string]string{}
	}
	s.created[email] = password
	return s.err
}

func (s *stubUserRepo) UpdateUser(_ context.Context, id, email string) error {
	s.updates = append(s.updates, id+"="+email)
	return s.err
}

func (s *stubUserRepo) DeleteUser(context.Context, string) error {
	return s.err
}

func TestChangeEmailSkipsUnchangedEmail(t *testing.T) {
	repo := &stubUserRepo{}
	changed, err := NewService(repo).ChangeEmail(context.Background(), "u1", "a@example.com", "a@example.com")
	if err != nil {
		t.Fatalf("change email: %v", err)
	}
	if changed || len(repo.updates) != 0 {
		t.Fatalf("expected no-op, got changed=%v updates=%v", changed, repo.updates)
	}
}

func TestChangeEmail(t *testing.T) {
	repo := &stubUserRepo{}
	changed, err := NewService(repo).ChangeEmail(context.Background(), "u1", "a@example.com", "b@example.com")
	if err != nil {
		t.Fatalf("change email: %v", err)
	}
	if !changed || len(repo.updates) != 1 || repo.updates[0] != "u1=b@example.com" {
		t.Fatalf("unexpected result changed=%v updates=%v", changed, repo.updates)
	}
}

func TestCreateUserPassesPassword(t *testing.T) {
	repo := &stubUserRepo{}
	if err := NewService(repo).CreateUser(context.Background(), "new@example.com", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if repo.created["new@example.com"] != "pw" {
		t.Fatalf("password not forwarded: %v", repo.created)
	}
}

func TestDeleteUserPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	if err := NewService(&stubUserRepo{err: boom}).DeleteUser(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
