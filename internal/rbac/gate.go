package rbac

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Admission failures. Each one sends the operator back to the login page.
var (
	ErrNoToken        = errors.New("rbac: no session token")
	ErrTokenMalformed = errors.New("rbac: session token cannot be decoded")
	ErrNoExpiry       = errors.New("rbac: session token has no expiry")
	ErrTokenExpired   = errors.New("rbac: session token expired")
)

// DecodeExpiry reads the exp claim of a JWT without verifying its
// signature. The console never holds the signing key; the remote API
// verifies the token on every call.
func DecodeExpiry(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Unix() == 0 {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// MenuEntry is a navigation link visible to the operator.
type MenuEntry struct {
	Title string
	Path  string
}

// Gate decides route admission and permission based visibility.
type Gate struct {
	table *Table
	// Now is the clock used for expiry checks.
	Now func() time.Time
}

// NewGate builds a Gate over the given route table.
func NewGate(table *Table) *Gate {
	return &Gate{table: table, Now: time.Now}
}

// Table exposes the route table the gate consults.
func (g *Gate) Table() *Table {
	return g.table
}

// Admit checks that a token is present, decodable, carries an expiry and
// has not expired. Comparison is at millisecond resolution.
func (g *Gate) Admit(token string) error {
	if token == "" {
		return ErrNoToken
	}
	exp, err := DecodeExpiry(token)
	if err != nil {
		return err
	}
	if exp.UnixMilli() < g.now().UnixMilli() {
		return ErrTokenExpired
	}
	return nil
}

// Allowed reports whether the operator may view path. Only an exact match
// in the route table is checked; paths outside the table and routes
// without requirements are always allowed.
func (g *Gate) Allowed(path string, granted []string) bool {
	route, ok := g.table.Lookup(path)
	if !ok {
		return true
	}
	return NewSet(granted).HasAll(route.Permissions)
}

// Menu lists the top-level routes whose requirements are all granted. It
// does not consider admission: a valid token with no permissions yields
// only the unrestricted entries.
func (g *Gate) Menu(granted []string) []MenuEntry {
	set := NewSet(granted)
	var entries []MenuEntry
	for _, r := range g.table.Top() {
		if r.Hidden || !set.HasAll(r.Permissions) {
			continue
		}
		entries = append(entries, MenuEntry{Title: r.Title, Path: r.Path})
	}
	return entries
}

func (g *Gate) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}
