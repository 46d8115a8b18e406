package entity

// StatusKind identifies a damage-over-time effect.
type StatusKind string

const (
	StatusPoison StatusKind = "poison"
	StatusBurn   StatusKind = "burn"
	StatusBleed  StatusKind = "bleed"
)

// StatusEffect is one active damage-over-time stack.
// Stacks of the same kind are independent; each expires on its own.
type StatusEffect struct {
	Kind           StatusKind
	Power          int // Damage dealt per turn
	RemainingTurns int
}

// StatusTick reports the result of ticking one status stack.
type StatusTick struct {
	Kind   StatusKind
	Amount int  // Damage dealt this tick
	Ended  bool // True if the stack expired
}

// AttackDebuff is a timed attack reduction. Amount is what was actually
// removed from Attack, so expiry restores exactly that much.
type AttackDebuff struct {
	Amount         int
	RemainingTurns int
}
