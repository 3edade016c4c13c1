package shared

import (
	"encoding/json"
	"strings"
)

// Session keys holding the operator's credentials.
const (
	TokenSessionKey       = "token"
	PermissionsSessionKey = "permissions"
)

// Credentials is the authenticated operator's token and permission list as
// returned by the remote login call. The permission list is trusted as-is.
type Credentials struct {
	Token       string
	Permissions []string
}

// SetCredentials stores the token and the JSON encoded permission list.
func (s *Session) SetCredentials(token string, permissions []string) {
	if permissions == nil {
		permissions = []string{}
	}
	encoded, err := json.Marshal(permissions)
	if err != nil {
		encoded = []byte("[]")
	}
	s.Set(TokenSessionKey, token)
	s.Set(PermissionsSessionKey, string(encoded))
}

// Token returns the stored bearer token or an empty string.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s.Get(TokenSessionKey))
}

// Permissions decodes the stored permission list. A missing or malformed
// entry yields nil, which grants nothing.
func (s *Session) Permissions() []string {
	if s == nil {
		return nil
	}
	raw := s.Get(PermissionsSessionKey)
	if raw == "" {
		return nil
	}
	var perms []string
	if err := json.Unmarshal([]byte(raw), &perms); err != nil {
		return nil
	}
	return perms
}

// Credentials returns the stored credentials and whether a token is present.
func (s *Session) Credentials() (Credentials, bool) {
	token := s.Token()
	if token == "" {
		return Credentials{}, false
	}
	return Credentials{Token: token, Permissions: s.Permissions()}, true
}

// ClearCredentials removes the token and permission list.
func (s *Session) ClearCredentials() {
	if s == nil {
		return
	}
	s.Delete(TokenSessionKey)
	s.Delete(PermissionsSessionKey)
}
