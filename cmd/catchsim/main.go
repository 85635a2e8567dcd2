// Package main - catchsim
// Monte Carlo harness for the catch mechanics: simulates a large number
// of throws per item and prints the observed outcome distribution next
// to the configured probabilities. Useful when tuning item catch rates.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/pokecat-game/pokecat/server/internal/domain/item"
	"github.com/pokecat-game/pokecat/server/internal/engine"
)

func main() {
	throws := flag.Int("throws", 100000, "Throws to simulate per item")
	itemID := flag.String("item", "", "Simulate a single item id (default: all)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	var defs []item.Definition
	if *itemID != "" {
		def, ok := item.Get(*itemID)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown item %q\n", *itemID)
			os.Exit(1)
		}
		defs = []item.Definition{def}
	} else {
		defs = item.All()
		sort.Slice(defs, func(i, j int) bool { return defs[i].Price < defs[j].Price })
	}

	fmt.Printf("Simulating %d throws per item (seed %d)\n", *throws, *seed)
	fmt.Printf("Dodge probability: %.2f\n\n", engine.DodgeProbability)
	fmt.Printf("%-15s %6s | %8s %8s %8s | %10s %10s\n",
		"item", "rate", "dodged", "caught", "escaped", "obs catch", "exp catch")

	for _, def := range defs {
		rate := def.EffectiveCatchRate()
		var dodged, caught, escaped int

		for i := 0; i < *throws; i++ {
			if rng.Float64() < engine.DodgeProbability {
				dodged++
				continue
			}
			if rng.Float64() < rate {
				caught++
			} else {
				escaped++
			}
		}

		// Conditional catch probability given the throw connected; the
		// dodge roll happens first and consumes nothing.
		connected := caught + escaped
		obs := 0.0
		if connected > 0 {
			obs = float64(caught) / float64(connected)
		}
		fmt.Printf("%-15s %6.2f | %8d %8d %8d | %10.4f %10.4f\n",
			def.ID, rate, dodged, caught, escaped, obs, rate)
	}
}
