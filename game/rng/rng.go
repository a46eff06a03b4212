// Package rng provides the deterministic pseudo-random source used by
// bot strategies. Two generators built from the same seed string produce
// identical sequences on any process, which is what makes bot replays
// byte-identical; no system entropy is ever mixed in.
package rng

import (
	"fmt"
	"hash/fnv"
)

// 64-bit linear congruential constants (Knuth's MMIX multiplier). The
// only requirement on the generator is a stable cross-process sequence.
const (
	lcgMul = 6364136223846793005
	lcgInc = 1442695040888963407
)

// RNG is a deterministic generator seeded from a string.
type RNG struct {
	state uint64
}

// New creates a generator whose sequence is a pure function of seed.
func New(seed string) *RNG {
	h := fnv.New64a()
	h.Write([]byte(seed))
	r := &RNG{state: h.Sum64()}
	// One warm-up step decorrelates adjacent seed hashes.
	r.next()
	return r
}

// ForTurn creates the generator for one bot decision, keyed by the room
// seed, the turn number, and the acting player. Re-running the same turn
// of the same room therefore always replays the same decision.
func ForTurn(botSeed string, turnNumber, playerID int) *RNG {
	return New(fmt.Sprintf("%s:%d:%d", botSeed, turnNumber, playerID))
}

func (r *RNG) next() uint64 {
	r.state = r.state*lcgMul + lcgInc
	return r.state
}

// Unit returns the next value in [0, 1).
func (r *RNG) Unit() float64 {
	return float64(r.next()>>11) / (1 << 53)
}

// IntBetween returns a uniform integer in [lo, hi). It panics if the
// range is empty, matching how the strategies use it.
func (r *RNG) IntBetween(lo, hi int) int {
	if hi <= lo {
		panic(fmt.Sprintf("rng: empty range [%d,%d)", lo, hi))
	}
	return lo + int(r.next()>>33)%(hi-lo)
}

// Shuffle permutes n elements via the swap function, Fisher-Yates style.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, r.IntBetween(0, i+1))
	}
}

// Pick returns a uniformly chosen element of items.
func Pick[T any](r *RNG, items []T) T {
	return items[r.IntBetween(0, len(items))]
}
