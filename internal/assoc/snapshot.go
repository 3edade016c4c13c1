package assoc

import (
	"encoding/json"

	"github.com/rbac-console/console/internal/shared"
)

type catalogSnapshot struct {
	Owner string `json:"owner"`
	Items []Item `json:"items"`
}

func snapshotKey(kind Kind) string {
	return "assoc." + kind.Owner + "." + kind.Linked + ".catalog"
}

// SaveCatalog remembers the catalog shown to the operator for owner so the
// next mutation resolves names against what was on screen. One snapshot is
// kept per kind.
func SaveCatalog(sess *shared.Session, kind Kind, ownerID string, items []Item) {
	if sess == nil {
		return
	}
	data, err := json.Marshal(catalogSnapshot{Owner: ownerID, Items: items})
	if err != nil {
		return
	}
	sess.Set(snapshotKey(kind), string(data))
}

// SavedCatalog returns the snapshot stored for owner, if any.
func SavedCatalog(sess *shared.Session, kind Kind, ownerID string) ([]Item, bool) {
	if sess == nil {
		return nil, false
	}
	raw := sess.Get(snapshotKey(kind))
	if raw == "" {
		return nil, false
	}
	var snap catalogSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil || snap.Owner != ownerID {
		return nil, false
	}
	return snap.Items, true
}
