// Package rbacapitest provides an in-memory RBAC API for tests.
package rbacapitest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rbac-console/console/internal/platform/httpx"
	"github.com/rbac-console/console/internal/rbac"
	"github.com/rbac-console/console/internal/rbacapi"
)

// Issuer is the iss claim of tokens minted by the server.
const Issuer = "full-stack-rbac"

// Call is one request received by the server.
type Call struct {
	Method string
	Path   string
}

type userRecord struct {
	rbacapi.User
	hash []byte
}

type failure struct {
	status  int
	message string
}

// Server is a goroutine safe fake of the RBAC API.
type Server struct {
	*httptest.Server

	// Now is the clock used for token expiry.
	Now func() time.Time

	mu          sync.Mutex
	secret      []byte
	users       []userRecord
	roles       []rbacapi.Role
	permissions []rbacapi.Permission
	rolePerms   map[string][]string
	userRoles   map[string][]string
	calls       []Call
	failNext    *failure
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		Now:       time.Now,
		secret:    []byte("rbacapitest-secret"),
		rolePerms: make(map[string][]string),
		userRoles: make(map[string][]string),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Post("/auth/login", s.login)
	r.Route("/rbac", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/user", s.listUsers)
		r.Post("/user", s.createUser)
		r.Patch("/user/{id}", s.updateUser)
		r.Delete("/user/{id}", s.deleteUser)

		r.Get("/role", s.listRoles)
		r.Post("/role", s.createRole)
		r.Patch("/role/{id}", s.updateRole)
		r.Delete("/role/{id}", s.deleteRole)

		r.Get("/permission", s.listPermissions)
		r.Post("/permission", s.createPermission)
		r.Patch("/permission/{id}", s.updatePermission)
		r.Delete("/permission/{id}", s.deletePermission)

		r.Get("/role-has-permission/{id}", s.listRolePermissions)
		r.Post("/role-has-permission", s.addRolePermission)
		r.Patch("/role-has-permission/{id}", s.replaceRolePermission)
		r.Delete("/role-has-permission/{id}/{linked}", s.removeRolePermission)

		r.Get("/user-has-role/{id}", s.listUserRoles)
		r.Post("/user-has-role", s.addUserRole)
		r.Patch("/user-has-role/{id}", s.replaceUserRole)
		r.Delete("/user-has-role/{id}/{linked}", s.removeUserRole)
	})
	return r
}

// SeedPermission adds a permission and returns it.
func (s *Server) SeedPermission(name string) rbacapi.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := rbacapi.Permission{ID: uuid.NewString(), Name: name}
	s.permissions = append(s.permissions, p)
	return p
}

// SeedRole adds a role linked to the named permissions, creating missing
// permissions on the way.
func (s *Server) SeedRole(name string, permissions ...string) rbacapi.Role {
	ids := make([]string, 0, len(permissions))
	for _, pname := range permissions {
		p, ok := s.permissionByName(pname)
		if !ok {
			p = s.SeedPermission(pname)
		}
		ids = append(ids, p.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	role := rbacapi.Role{ID: uuid.NewString(), Name: name}
	s.roles = append(s.roles, role)
	s.rolePerms[role.ID] = ids
	return role
}

// SeedUser adds a user linked to the named roles, which must exist.
func (s *Server) SeedUser(email, password string, roles ...string) rbacapi.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("rbacapitest: hash password: %v", err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user := rbacapi.User{ID: uuid.NewString(), Email: email}
	var ids []string
	for _, name := range roles {
		for _, r := range s.roles {
			if r.Name == name {
				ids = append(ids, r.ID)
			}
		}
	}
	s.users = append(s.users, userRecord{User: user, hash: hash})
	s.userRoles[user.ID] = ids
	return user
}

// SeedAdmin creates a user holding every setting permission and returns a
// valid token for it.
func (s *Server) SeedAdmin() (rbacapi.User, string) {
	names := make([]string, 0, len(rbac.All()))
	for _, p := range rbac.All() {
		names = append(names, p.String())
	}
	s.SeedRole("admin", names...)
	user := s.SeedUser("admin@example.com", "secret", "admin")
	return user, s.IssueToken(user.ID, s.Now().Add(24*time.Hour))
}

// IssueToken signs a token for userID expiring at exp.
func (s *Server) IssueToken(userID string, exp time.Time) string {
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(s.Now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("rbacapitest: sign token: %v", err))
	}
	return token
}

// FailNext makes the next /rbac request fail with status and message.
func (s *Server) FailNext(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = &failure{status: status, message: message}
}

// Calls returns the requests received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// ResetCalls clears the call log.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// Roles returns a snapshot of the stored roles.
func (s *Server) Roles() []rbacapi.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rbacapi.Role(nil), s.roles...)
}

// Users returns a snapshot of the stored users.
func (s *Server) Users() []rbacapi.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]rbacapi.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.User)
	}
	return out
}

// Permissions returns a snapshot of the stored permissions.
func (s *Server) Permissions() []rbacapi.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rbacapi.Permission(nil), s.permissions...)
}

func (s *Server) permissionByName(name string) (rbacapi.Permission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.permissions {
		if p.Name == name {
			return p, true
		}
	}
	return rbacapi.Permission{}, false
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// authenticate verifies the bearer token and requires setting.<action> for
// the request method.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fail := s.failNext
		s.failNext = nil
		s.mu.Unlock()
		if fail != nil {
			httpx.Message(w, fail.status, fail.message)
			return
		}

		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		var claims jwt.RegisteredClaims
		_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		})
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(s.Now()) {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}

		required := requiredPermission(r.Method)
		s.mu.Lock()
		granted := rbac.NewSet(s.grantedLocked(claims.Subject))
		s.mu.Unlock()
		if !granted.Has(required) {
			httpx.RespondError(w, fmt.Errorf("%w: %s required", httpx.ErrForbidden, required))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requiredPermission(method string) rbac.Permission {
	switch method {
	case http.MethodPost:
		return rbac.SettingCreate
	case http.MethodPatch, http.MethodPut:
		return rbac.SettingUpdate
	case http.MethodDelete:
		return rbac.SettingDelete
	default:
		return rbac.SettingRead
	}
}

// grantedLocked returns the permission names reachable from the user's
// roles, in role then link order without duplicates.
func (s *Server) grantedLocked(userID string) []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, roleID := range s.userRoles[userID] {
		for _, permID := range s.rolePerms[roleID] {
			for _, p := range s.permissions {
				if p.ID != permID {
					continue
				}
				if _, ok := seen[p.Name]; !ok {
					seen[p.Name] = struct{}{}
					names = append(names, p.Name)
				}
			}
		}
	}
	return names
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req rbacapi.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	s.mu.Lock()
	var found *userRecord
	for i := range s.users {
		if s.users[i].Email == req.Email {
			found = &s.users[i]
			break
		}
	}
	if found == nil || bcrypt.CompareHashAndPassword(found.hash, []byte(req.Password)) != nil {
		s.mu.Unlock()
		httpx.RespondError(w, fmt.Errorf("%w: wrong email or password", httpx.ErrUnauthorized))
		return
	}
	userID := found.ID
	perms := s.grantedLocked(userID)
	s.mu.Unlock()

	token := s.IssueToken(userID, s.Now().Add(24*time.Hour))
	httpx.JSON(w, http.StatusOK, rbacapi.LoginResponse{Token: token, Permissions: perms})
}

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, s.Users())
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req rbacapi.CreateUserRequest
	if err := decode(r, &req); err != nil || req.Email == "" || req.Password == "" {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == req.Email {
			httpx.RespondError(w, httpx.ErrDuplicate)
			return
		}
	}
	user := rbacapi.User{ID: uuid.NewString(), Email: req.Email}
	s.users = append(s.users, userRecord{User: user, hash: hash})
	httpx.JSON(w, http.StatusCreated, user)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var req rbacapi.UpdateUserRequest
	if err := decode(r, &req); err != nil || req.Email == "" {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].Email = req.Email
			httpx.JSON(w, http.StatusOK, s.users[i].User)
			return
		}
	}
	httpx.RespondError(w, httpx.ErrNotFound)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			delete(s.userRoles, id)
			httpx.NoContent(w)
			return
		}
	}
	httpx.RespondError(w, httpx.ErrNotFound)
}

func (s *Server) listRoles(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, s.Roles())
}

func (s *Server) createRole(w http.ResponseWriter, r *http.Request) {
	var req rbacapi.NameRequest
	if err := decode(r, &req); err != nil || req.Name == "" {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, role := range s.roles {
		if role.Name == req.Name {
			httpx.RespondError(w, httpx.ErrDuplicate)
			return
		}
	}
	role := rbacapi.Role{ID: uuid.NewString(), Name: req.Name}
	s.roles = append(s.roles, role)
	httpx.JSON(w, http.StatusCreated, role)
}

func (s *Server) updateRole(w http.ResponseWriter, r *http.Request) {
	var req rbacapi.NameRequest
	if err := decode(r, &req); err != nil || req.Name == "" {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.roles {
		if s.roles[i].ID == id {
			s.roles[i].Name = req.Name
			httpx.JSON(w, http.StatusOK, s.roles[i])
			return
		}
	}
	httpx.RespondError(w, httpx.ErrNotFound)
}

func (s *Server) deleteRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.roles {
		if s.roles[i].ID == id {
			s.roles = append(s.roles[:i], s.roles[i+1:]...)
			delete(s.rolePerms, id)
			for uid, ids := range s.userRoles {
				s.userRoles[uid] = without(ids, id)
			}
			httpx.NoContent(w)
			return
		}
	}
	httpx.RespondError(w, httpx.ErrNotFound)
}

func (s *Server) listPermissions(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, s.Permissions())
}

func (s *Server) createPermission(w http.ResponseWriter, r *http.Request) {
	var req rbacapi.NameRequest
	if err := decode(r, &req); err != nil || req.Name == "" {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.permissions {
		if p.Name == req.Name {
			httpx.RespondError(w, httpx.ErrDuplicate)
			return
		}
	}
	p := rbacapi.Permission{ID: uuid.NewString(), Name: req.Name}
	s.permissions = append(s.permissions, p)
	httpx.JSON(w, http.StatusCreated, p)
}

func (s *Server) updatePermission(w http.ResponseWriter, r *http.Request) {
	var req rbacapi.NameRequest
	if err := decode(r, &req); err != nil || req.Name == "" {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.permissions {
		if s.permissions[i].ID == id {
			s.permissions[i].Name = req.Name
			httpx.JSON(w, http.StatusOK, s.permissions[i])
			return
		}
	}
	httpx.RespondError(w, httpx.ErrNotFound)
}

func (s *Server) deletePermission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.permissions {
		if s.permissions[i].ID == id {
			s.permissions = append(s.permissions[:i], s.permissions[i+1:]...)
			for rid, ids := range s.rolePerms {
				s.rolePerms[rid] = without(ids, id)
			}
			httpx.NoContent(w)
			return
		}
	}
	httpx.RespondError(w, httpx.ErrNotFound)
}

func (s *Server) listRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasRoleLocked(roleID) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	out := []rbacapi.Permission{}
	for _, id := range s.rolePerms[roleID] {
		if p, ok := s.permissionLocked(id); ok {
			out = append(out, p)
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (s *Server) addRolePermission(w http.ResponseWriter, r *http.Request) {
	var req rbacapi.RoleHasPermission
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasRoleLocked(req.RoleID) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	if _, ok := s.permissionLocked(req.PermissionID); !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	if err := addLink(s.rolePerms, req.RoleID, req.PermissionID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, req)
}

func (s *Server) replaceRolePermission(w http.ResponseWriter, r *http.Request) {
	var req rbacapi.RoleHasPermissionUpdate
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	roleID := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permissionLocked(req.NewPermissionID); !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	if err := replaceLink(s.rolePerms, roleID, req.OldPermissionID, req.NewPermissionID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (s *Server) removeRolePermission(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := removeLink(s.rolePerms, chi.URLParam(r, "id"), chi.URLParam(r, "linked")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (s *Server) listUserRoles(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasUserLocked(userID) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	out := []rbacapi.Role{}
	for _, id := range s.userRoles[userID] {
		for _, role := range s.roles {
			if role.ID == id {
				out = append(out, role)
			}
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (s *Server) addUserRole(w http.ResponseWriter, r *http.Request) {
	var req rbacapi.UserHasRole
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasUserLocked(req.UserID) || !s.hasRoleLocked(req.RoleID) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	if err := addLink(s.userRoles, req.UserID, req.RoleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, req)
}

func (s *Server) replaceUserRole(w http.ResponseWriter, r *http.Request) {
	var req rbacapi.UserHasRoleUpdate
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	userID := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasRoleLocked(req.NewRoleID) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	if err := replaceLink(s.userRoles, userID, req.OldRoleID, req.NewRoleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (s *Server) removeUserRole(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := removeLink(s.userRoles, chi.URLParam(r, "id"), chi.URLParam(r, "linked")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (s *Server) hasRoleLocked(id string) bool {
	for _, r := range s.roles {
		if r.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) hasUserLocked(id string) bool {
	for _, u := range s.users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) permissionLocked(id string) (rbacapi.Permission, bool) {
	for _, p := range s.permissions {
		if p.ID == id {
			return p, true
		}
	}
	return rbacapi.Permission{}, false
}

func decode(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return errors.Join(httpx.ErrValidation, err)
	}
	return nil
}

func addLink(links map[string][]string, owner, linked string) error {
	for _, id := range links[owner] {
		if id == linked {
			return httpx.ErrDuplicate
		}
	}
	links[owner] = append(links[owner], linked)
	return nil
}

func replaceLink(links map[string][]string, owner, oldID, newID string) error {
	ids := links[owner]
	for _, id := range ids {
		if id == newID && id != oldID {
			return httpx.ErrDuplicate
		}
	}
	for i, id := range ids {
		if id == oldID {
			ids[i] = newID
			return nil
		}
	}
	return httpx.ErrNotFound
}

func removeLink(links map[string][]string, owner, linked string) error {
	ids := links[owner]
	for _, id := range ids {
		if id == linked {
			links[owner] = without(ids, linked)
			return nil
		}
	}
	return httpx.ErrNotFound
}

func without(ids []string, drop string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
