package rbac

import (
	"fmt"
	"strings"
)

// Resource names a group of console capabilities.
type Resource string

// Action names an operation on a Resource.
type Action string

const (
	ResourceSetting Resource = "setting"
)

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Permission is a (resource, action) pair. Its string form, e.g.
// "setting.read", is what the login call returns and the session stores.
type Permission struct {
	Resource Resource
	Action   Action
}

// String returns the wire form of the permission.
func (p Permission) String() string {
	return string(p.Resource) + "." + string(p.Action)
}

// Known permissions.
var (
	SettingRead   = Permission{Resource: ResourceSetting, Action: ActionRead}
	SettingCreate = Permission{Resource: ResourceSetting, Action: ActionCreate}
	SettingUpdate = Permission{Resource: ResourceSetting, Action: ActionUpdate}
	SettingDelete = Permission{Resource: ResourceSetting, Action: ActionDelete}
)

// All lists every permission the console knows about.
func All() []Permission {
	return []Permission{SettingRead, SettingCreate, SettingUpdate, SettingDelete}
}

// ParsePermission converts a wire string into a known Permission.
func ParsePermission(raw string) (Permission, error) {
	raw = strings.TrimSpace(raw)
	for _, p := range All() {
		if p.String() == raw {
			return p, nil
		}
	}
	return Permission{}, fmt.Errorf("rbac: unknown permission %q", raw)
}

// Set is a membership set of granted permission strings. Strings that do
// not parse into a known Permission are kept so that unknown grants from
// the server never widen or narrow what the console checks.
type Set map[string]struct{}

// NewSet builds a Set from the session's permission list.
func NewSet(granted []string) Set {
	set := make(Set, len(granted))
	for _, p := range granted {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		set[p] = struct{}{}
	}
	return set
}

// Has reports whether p is granted.
func (s Set) Has(p Permission) bool {
	_, ok := s[p.String()]
	return ok
}

// HasAll reports whether every required permission is granted. An empty
// requirement is always satisfied.
func (s Set) HasAll(required []Permission) bool {
	for _, p := range required {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// Actions summarises the setting affordances granted to the operator.
type Actions struct {
	Read   bool
	Create bool
	Update bool
	Delete bool
}

// SettingActions derives the affordance flags used by the entity pages.
func (s Set) SettingActions() Actions {
	return Actions{
		Read:   s.Has(SettingRead),
		Create: s.Has(SettingCreate),
		Update: s.Has(SettingUpdate),
		Delete: s.Has(SettingDelete),
	}
}
