// Package combat resolves attacks, turn-start effects, lethal checks and
// battle-start effects between fighters.
package combat

import (
	"math/rand"
	"time"
)

// Roller is the random source used by every chance-based effect.
// *rand.Rand satisfies it; tests substitute scripted rollers.
type Roller interface {
	Float64() float64
	Intn(n int) int
}

// NewRoller returns a seeded random source. A seed of 0 picks one from the clock.
func NewRoller(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Chance rolls a probability check. Zero or negative chances never succeed.
func Chance(r Roller, p float64) bool {
	if p <= 0 {
		return false
	}
	return r.Float64() < p
}
