package engine

import "errors"

var (
	// ErrEncounterGone means the referenced encounter already ended;
	// whatever was pending against it must be dropped silently.
	ErrEncounterGone = errors.New("encounter no longer active")

	// ErrCreatureGone means the creature left the visible set before the
	// capture could start.
	ErrCreatureGone = errors.New("creature no longer on the map")

	// ErrNoSuchItem means the item id is not in the registry.
	ErrNoSuchItem = errors.New("unknown item")

	// ErrItemNotOwned means the player holds no line of that item.
	ErrItemNotOwned = errors.New("item not in inventory")

	// ErrInsufficientFunds means a purchase exceeded the balance.
	ErrInsufficientFunds = errors.New("not enough dirhams")

	// ErrNoSession means no player identity was established yet.
	ErrNoSession = errors.New("no active session")
)
