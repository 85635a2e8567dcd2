// Package item defines the core domain entities for purchasable items
// and the player inventory. This package is PURE and must NOT import any
// infrastructure packages.
package item

// Category represents the kind of item.
type Category string

const (
	CategoryFood      Category = "food"
	CategoryEquipment Category = "equipment"
	CategoryWeapon    Category = "weapon"
	CategoryCage      Category = "cage"
)

// Rarity grades how hard an item is to come by in the store.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// DefaultCatchRate applies when a definition carries no explicit rate.
const DefaultCatchRate = 0.7

// Definition provides the static metadata about a purchasable item.
// The id is the natural key; one row per distinct item.
type Definition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Price       int      `json:"price"`
	Rarity      Rarity   `json:"rarity"`
	Usable      bool     `json:"usable"`
	UseEffect   string   `json:"use_effect,omitempty"`
	CatchRate   float64  `json:"catch_rate,omitempty"` // 0 means "use DefaultCatchRate"
	IconURL     string   `json:"icon_url,omitempty"`
}

// EffectiveCatchRate returns the configured catch rate, or the default
// when the definition never set one.
func (d Definition) EffectiveCatchRate() float64 {
	if d.CatchRate <= 0 {
		return DefaultCatchRate
	}
	return d.CatchRate
}

// GameItem is one owned inventory line. At most one line exists per
// definition id; lines that reach quantity 0 are pruned, never stored.
type GameItem struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	Category  Category `json:"category,omitempty"`
	CatchRate float64  `json:"catch_rate,omitempty"`
	IconURL   string   `json:"icon_url,omitempty"`
}

// FromDefinition creates a fresh inventory line merging catalog metadata.
func FromDefinition(def Definition, quantity int) GameItem {
	return GameItem{
		ID:        def.ID,
		Name:      def.Name,
		Quantity:  quantity,
		Category:  def.Category,
		CatchRate: def.CatchRate,
		IconURL:   def.IconURL,
	}
}

// Registry contains all purchasable items and their properties.
// Item sprites are bundled with the scene frontend; the server only
// knows their paths.
var Registry = map[string]Definition{
	"grilled-fish": {
		ID:          "grilled-fish",
		Name:        "Grilled Fish",
		Description: "A freshly grilled fish. No cat can resist the smell for long.",
		Category:    CategoryFood,
		Price:       100,
		Rarity:      RarityCommon,
		Usable:      true,
		UseEffect:   "Lures the cat closer",
		CatchRate:   0.5,
		IconURL:     "/sprites/items/grilled-fish.svg",
	},
	"wish-cash": {
		ID:          "wish-cash",
		Name:        "Wish Cash",
		Description: "A shiny lucky-coin snack. Cats bat at it, then keep it forever.",
		Category:    CategoryFood,
		Price:       250,
		Rarity:      RarityRare,
		Usable:      true,
		UseEffect:   "Tempts greedy cats",
		CatchRate:   0.65,
		IconURL:     "/sprites/items/wish-cash.svg",
	},
	"fastpaw-shoes": {
		ID:          "fastpaw-shoes",
		Name:        "Fastpaw Shoes",
		Description: "Sneakers for sneaking. Lets you get close before the cat bolts.",
		Category:    CategoryEquipment,
		Price:       400,
		Rarity:      RarityRare,
		Usable:      true,
		UseEffect:   "Close the distance quietly",
		CatchRate:   0.7,
		IconURL:     "/sprites/items/fastpaw-shoes.svg",
	},
	"meow-net": {
		ID:          "meow-net",
		Name:        "Meow Net",
		Description: "A lightweight throwing net. Hard to dodge once it opens mid-air.",
		Category:    CategoryWeapon,
		Price:       800,
		Rarity:      RarityEpic,
		Usable:      true,
		UseEffect:   "Snares the cat mid-jump",
		CatchRate:   0.8,
		IconURL:     "/sprites/items/meow-net.svg",
	},
	"auto-cage": {
		ID:          "auto-cage",
		Name:        "Auto Cage",
		Description: "A self-closing cage with a comfy cushion inside. Almost cheating.",
		Category:    CategoryCage,
		Price:       1500,
		Rarity:      RarityLegendary,
		Usable:      true,
		UseEffect:   "Traps the cat automatically",
		CatchRate:   0.95,
		IconURL:     "/sprites/items/auto-cage.svg",
	},
}

// Get returns the definition for an item id.
func Get(id string) (Definition, bool) {
	def, ok := Registry[id]
	return def, ok
}

// All returns every registered definition. Order is unspecified.
func All() []Definition {
	defs := make([]Definition, 0, len(Registry))
	for _, def := range Registry {
		defs = append(defs, def)
	}
	return defs
}
