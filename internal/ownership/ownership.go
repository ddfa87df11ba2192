// Package ownership provides the single authorization predicate gating
// mutations on owned entities (videos, comments, tweets, playlists).
package ownership

import "errors"

// ErrNotOwner indicates the caller does not own the entity it tried to mutate.
var ErrNotOwner = errors.New("caller is not the owner")

// Assert returns ErrNotOwner unless viewerID equals the entity's owner
// reference. Read-side visibility rules are separate; this guard only fronts
// mutations.
func Assert(viewerID, ownerID string) error {
	if viewerID == "" || viewerID != ownerID {
		return ErrNotOwner
	}
	return nil
}
