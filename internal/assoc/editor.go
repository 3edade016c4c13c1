// Package assoc edits many-to-many links between an owner record and a
// catalog of linkable records: a role's permissions or a user's roles.
package assoc

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"
)

// Item is a linkable record.
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Backend performs the remote calls for one link kind.
type Backend interface {
	// Linked lists the items linked to owner.
	Linked(ctx context.Context, ownerID string) ([]Item, error)
	// Catalog lists every item that could be linked.
	Catalog(ctx context.Context) ([]Item, error)
	Add(ctx context.Context, ownerID, itemID string) error
	Replace(ctx context.Context, ownerID, oldID, newID string) error
	Remove(ctx context.Context, ownerID, itemID string) error
}

// Kind describes a link kind for labels and messages.
type Kind struct {
	// Owner is the owning entity, e.g. "role".
	Owner string
	// Linked is the linked entity, e.g. "permission".
	Linked string
}

// Known link kinds.
var (
	RolePermissions = Kind{Owner: "role", Linked: "permission"}
	UserRoles       = Kind{Owner: "user", Linked: "role"}
)

// ResolveError reports a name that did not match any catalog entry. No link
// call is made when it is returned.
type ResolveError struct {
	Kind Kind
	Name string
}

func (e *ResolveError) Error() string {
	return e.Kind.Linked + " id not found"
}

// State is the editor's lock and add mode. The zero value is Viewing.
type State struct {
	Unlocked bool
	Adding   bool
}

// Toggle flips the lock. Adding is kept as-is.
func (s State) Toggle() State {
	s.Unlocked = !s.Unlocked
	return s
}

// BeginAdd enters Adding. Only a completed create leaves it.
func (s State) BeginAdd() State {
	s.Adding = true
	return s
}

// Created is the state after a successful create.
func (s State) Created() State {
	return State{}
}

// ParseState reads the state from a query string.
func ParseState(q url.Values) State {
	return State{
		Unlocked: q.Get("unlocked") == "1",
		Adding:   q.Get("adding") == "1",
	}
}

// Query encodes the state for a redirect or link.
func (s State) Query() url.Values {
	q := url.Values{}
	if s.Unlocked {
		q.Set("unlocked", "1")
	}
	if s.Adding {
		q.Set("adding", "1")
	}
	return q
}

// View is the data an editor page renders.
type View struct {
	Linked  []Item
	Catalog []Item
	// Default is the pre-selected candidate: the first catalog entry.
	Default string
}

// Editor runs link operations for one owner kind.
type Editor struct {
	kind    Kind
	backend Backend
}

// NewEditor constructs an Editor.
func NewEditor(kind Kind, backend Backend) *Editor {
	return &Editor{kind: kind, backend: backend}
}

// Kind returns the editor's link kind.
func (e *Editor) Kind() Kind {
	return e.kind
}

// Load fetches the linked items and the catalog concurrently.
func (e *Editor) Load(ctx context.Context, ownerID string) (View, error) {
	var view View
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		linked, err := e.backend.Linked(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("assoc: list linked %ss: %w", e.kind.Linked, err)
		}
		view.Linked = linked
		return nil
	})
	g.Go(func() error {
		catalog, err := e.backend.Catalog(gctx)
		if err != nil {
			return fmt.Errorf("assoc: list %s catalog: %w", e.kind.Linked, err)
		}
		view.Catalog = catalog
		return nil
	})
	if err := g.Wait(); err != nil {
		return View{}, err
	}
	if len(view.Catalog) > 0 {
		view.Default = view.Catalog[0].Name
	}
	return view, nil
}

// Create links the item called name, resolved against a previously loaded
// catalog, and returns the refreshed list.
func (e *Editor) Create(ctx context.Context, ownerID string, catalog []Item, name string) ([]Item, error) {
	id, err := e.resolve(catalog, name)
	if err != nil {
		return nil, err
	}
	if err := e.backend.Add(ctx, ownerID, id); err != nil {
		return nil, fmt.Errorf("assoc: add %s: %w", e.kind.Linked, err)
	}
	return e.refetch(ctx, ownerID)
}

// Update replaces the link to oldName with newName. Identical names are a
// no-op and make no call; the boolean reports whether a call was made.
func (e *Editor) Update(ctx context.Context, ownerID string, catalog []Item, oldName, newName string) ([]Item, bool, error) {
	if oldName == newName {
		return nil, false, nil
	}
	oldID, err := e.resolve(catalog, oldName)
	if err != nil {
		return nil, false, err
	}
	newID, err := e.resolve(catalog, newName)
	if err != nil {
		return nil, false, err
	}
	if err := e.backend.Replace(ctx, ownerID, oldID, newID); err != nil {
		return nil, false, fmt.Errorf("assoc: replace %s: %w", e.kind.Linked, err)
	}
	linked, err := e.refetch(ctx, ownerID)
	return linked, true, err
}

// Remove unlinks the item called name and returns the refreshed list.
func (e *Editor) Remove(ctx context.Context, ownerID string, catalog []Item, name string) ([]Item, error) {
	id, err := e.resolve(catalog, name)
	if err != nil {
		return nil, err
	}
	if err := e.backend.Remove(ctx, ownerID, id); err != nil {
		return nil, fmt.Errorf("assoc: remove %s: %w", e.kind.Linked, err)
	}
	return e.refetch(ctx, ownerID)
}

// Catalog fetches the candidate catalog on its own, for callers that hold
// no snapshot from an earlier Load.
func (e *Editor) Catalog(ctx context.Context) ([]Item, error) {
	catalog, err := e.backend.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("assoc: list %s catalog: %w", e.kind.Linked, err)
	}
	return catalog, nil
}

// resolve matches name exactly against the catalog.
func (e *Editor) resolve(catalog []Item, name string) (string, error) {
	for _, it := range catalog {
		if it.Name == name {
			return it.ID, nil
		}
	}
	return "", &ResolveError{Kind: e.kind, Name: name}
}

func (e *Editor) refetch(ctx context.Context, ownerID string) ([]Item, error) {
	linked, err := e.backend.Linked(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("assoc: refresh linked %ss: %w", e.kind.Linked, err)
	}
	return linked, nil
}
