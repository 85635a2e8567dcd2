// Package creature defines the core domain entities for pokecats: the
// static templates that can spawn, the ephemeral wild instances on the
// map, and the persisted capture snapshots. This package is PURE and
// must NOT import any infrastructure packages.
package creature

import "time"

// Rarity grades how rare a pokecat template is.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// Status tells whether a creature is still roaming or already caught.
type Status string

const (
	StatusWild   Status = "wild"
	StatusCaught Status = "caught"
)

// Template is a catalog row: the source of truth for what can spawn.
// Coordinates and lifetimes in the bundled catalog file are placeholders
// that the spawn engine overwrites per instance.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"iconUrl"`
	Rarity  Rarity `json:"rarity"`
}

// Wild is a positioned, time-bounded live instance derived from a
// Template. It exists only in the spawn engine's working memory and is
// never persisted; captures snapshot it into a Caught record instead.
type Wild struct {
	Template

	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	OriginLat float64 `json:"originLat"`
	OriginLng float64 `json:"originLng"`

	// Direction is the heading in degrees; movement steps follow it.
	Direction float64 `json:"direction"`
	Status    Status  `json:"status"`

	// ExpiresAt is set once at spawn and never extended.
	ExpiresAt  time.Time `json:"expiresAt"`
	FadingOut  bool      `json:"fadingOut"`
	IsMoving   bool      `json:"isMoving"`
	NextToggle time.Time `json:"-"`
}

// Expired reports whether the instance outlived its lifetime.
func (w Wild) Expired(now time.Time) bool {
	return now.After(w.ExpiresAt)
}

// Caught is a persisted capture snapshot: the wild creature's state at
// capture time plus the capture timestamp. The capture list is
// append-only and never deduplicated by template id.
type Caught struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Lat      float64   `json:"lat"`
	Lng      float64   `json:"lng"`
	IconURL  string    `json:"iconUrl"`
	Rarity   Rarity    `json:"rarity"`
	CaughtAt time.Time `json:"caughtAt"`

	// ExpiresAt is only set on scanner grants and is informational;
	// nothing ever removes a record from the capture list.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Snapshot freezes a wild creature into a capture record.
func (w Wild) Snapshot(at time.Time) Caught {
	return Caught{
		ID:       w.ID,
		Name:     w.Name,
		Lat:      w.Lat,
		Lng:      w.Lng,
		IconURL:  w.IconURL,
		Rarity:   w.Rarity,
		CaughtAt: at,
	}
}
