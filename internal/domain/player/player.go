// Package player defines the player identity domain entity. This
// package is PURE and must NOT import any infrastructure packages.
package player

import "github.com/google/uuid"

// StartingDirhams is the balance every fresh save begins with.
const StartingDirhams = 2500

// Identity is the player's basic identity info. It is created once on
// first run and immutable afterwards except for an explicit reset.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewIdentity mints an identity for a first-run player. The id is an
// opaque random token, not meaningful to the backend.
func NewIdentity(name string) Identity {
	return Identity{
		ID:   "user-" + uuid.NewString(),
		Name: name,
	}
}
