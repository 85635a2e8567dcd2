// Package catalog loads the static game catalogs: pokecat templates
// from the bundled JSON data file, and item definitions from code.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pokecat-game/pokecat/server/internal/domain/creature"
	"github.com/pokecat-game/pokecat/server/internal/domain/item"
)

// catalogRecord matches the on-disk record shape. The file carries
// placeholder lat/lng/status/expiresAt fields from the original data
// export; the spawn engine overwrites all of them per instance, so only
// the template fields are read here.
type catalogRecord struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	IconURL string          `json:"iconUrl"`
	Rarity  creature.Rarity `json:"rarity"`
}

// Catalog is the read-only set of creature templates and item
// definitions. Loaded once at startup; safe for concurrent reads.
type Catalog struct {
	templates []creature.Template
	byID      map[string]creature.Template
}

// Empty returns a catalog with no creature templates. The server runs
// degraded with it when the data file cannot be loaded: the map stays
// empty but the rest of the game keeps working.
func Empty() *Catalog {
	return &Catalog{byID: make(map[string]creature.Template)}
}

// Load reads the creature catalog from the JSON file at path.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read creature catalog: %w", err)
	}
	return Parse(raw)
}

// Parse builds a catalog from raw JSON data.
func Parse(raw []byte) (*Catalog, error) {
	var records []catalogRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse creature catalog: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("creature catalog is empty")
	}

	c := &Catalog{
		templates: make([]creature.Template, 0, len(records)),
		byID:      make(map[string]creature.Template, len(records)),
	}
	for _, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("creature catalog record without id (name=%q)", rec.Name)
		}
		if _, dup := c.byID[rec.ID]; dup {
			return nil, fmt.Errorf("duplicate creature id %q in catalog", rec.ID)
		}
		t := creature.Template{
			ID:      rec.ID,
			Name:    rec.Name,
			IconURL: rec.IconURL,
			Rarity:  rec.Rarity,
		}
		c.templates = append(c.templates, t)
		c.byID[rec.ID] = t
	}
	return c, nil
}

// Templates returns all creature templates in file order.
func (c *Catalog) Templates() []creature.Template {
	out := make([]creature.Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Template looks up a creature template by id.
func (c *Catalog) Template(id string) (creature.Template, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Len returns the number of creature templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Items returns the static item definitions.
func (c *Catalog) Items() []item.Definition {
	return item.All()
}

// Item looks up an item definition by id.
func (c *Catalog) Item(id string) (item.Definition, bool) {
	return item.Get(id)
}
