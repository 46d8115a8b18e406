// Package entity provides battle participants: fighters and teams.
package entity

import (
	"maps"
	"slices"

	"github.com/samdwyer/gachabattle/internal/gamedata"
)

// Fighter is a battle-scoped combatant built from a collected item or
// generated for the enemy side. Permanent stats are fixed when the fighter is
// created; everything below the Ability field is reset per battle.
type Fighter struct {
	ID        string
	Name      string
	ImageRef  string
	GroupName string

	HP, MaxHP int
	Attack    int

	Ability *gamedata.AbilityDef

	// Transient battle state
	Shield           int
	DamageMultiplier float64        // Starts at 1.0, grows additively
	ChargedMulti     float64        // One-shot multiplier consumed by the next attack
	DodgeBonus       float64        // Added to ability dodge chance
	Uses             map[string]int // Per-battle use counters keyed by modifier name
	Fired            map[string]bool
	Stunned          bool
	Frozen           int
	SkipTurns        int
	DodgeNext        bool
	ExtraAttacks     int
	ImmortalTurns    int
	SilencedTurns    int
	Nullified        bool
	UsedSurvival     bool
	UsedRevival      bool
	HasAttacked      bool
	HasBeenHit       bool
	AttackCount      int
	ConsecutiveHits  int
	TurnsTaken       int
	DoubleAttackUsed bool

	dots    []StatusEffect
	debuffs []AttackDebuff
}

// NewFighter creates a fighter at full HP with fresh battle state.
func NewFighter(id, name string, maxHP, attack int, ability *gamedata.AbilityDef) *Fighter {
	if maxHP < 1 {
		maxHP = 1
	}
	if attack < 0 {
		attack = 0
	}
	f := &Fighter{
		ID:      id,
		Name:    name,
		HP:      maxHP,
		MaxHP:   maxHP,
		Attack:  attack,
		Ability: ability,
	}
	f.ResetBattleState()
	return f
}

// ResetBattleState re-initialises every transient field.
func (f *Fighter) ResetBattleState() {
	f.Shield = 0
	f.DamageMultiplier = 1.0
	f.ChargedMulti = 0
	f.DodgeBonus = 0
	f.Uses = make(map[string]int)
	f.Fired = make(map[string]bool)
	f.Stunned = false
	f.Frozen = 0
	f.SkipTurns = 0
	f.DodgeNext = false
	f.ExtraAttacks = 0
	f.ImmortalTurns = 0
	f.SilencedTurns = 0
	f.Nullified = false
	f.UsedSurvival = false
	f.UsedRevival = false
	f.HasAttacked = false
	f.HasBeenHit = false
	f.AttackCount = 0
	f.ConsecutiveHits = 0
	f.TurnsTaken = 0
	f.DoubleAttackUsed = false
	f.dots = nil
	f.debuffs = nil
}

// IsAlive returns true if the fighter has HP remaining.
func (f *Fighter) IsAlive() bool { return f.HP > 0 }

// HPRatio returns current HP as a fraction of max HP.
func (f *Fighter) HPRatio() float64 {
	if f.MaxHP <= 0 {
		return 0
	}
	return float64(f.HP) / float64(f.MaxHP)
}

// ActiveAbility returns the equipped ability, or nil while it is silenced,
// locked or nullified.
func (f *Fighter) ActiveAbility() *gamedata.AbilityDef {
	if f.Ability == nil || f.Nullified || f.SilencedTurns > 0 {
		return nil
	}
	return f.Ability
}

// Modifier returns the active ability's modifier, or nil.
func (f *Fighter) Modifier() *gamedata.Modifier {
	if a := f.ActiveAbility(); a != nil {
		return &a.Modifier
	}
	return nil
}

// TakeDamage reduces HP and returns actual damage taken. HP never drops below zero.
func (f *Fighter) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := amount
	if actual > f.HP {
		actual = f.HP
	}
	f.HP -= actual
	return actual
}

// Heal restores HP and returns actual amount healed. Dead fighters are not healed.
func (f *Fighter) Heal(amount int) int {
	if amount <= 0 || f.HP <= 0 {
		return 0
	}
	actual := amount
	if f.HP+actual > f.MaxHP {
		actual = f.MaxHP - f.HP
	}
	if actual < 0 {
		actual = 0
	}
	f.HP += actual
	return actual
}

// ReduceAttack lowers Attack by amount with a floor of 1 and returns what was removed.
func (f *Fighter) ReduceAttack(amount int) int {
	if amount <= 0 || f.Attack <= 1 {
		return 0
	}
	actual := amount
	if f.Attack-actual < 1 {
		actual = f.Attack - 1
	}
	f.Attack -= actual
	return actual
}

// ReduceMaxHP lowers MaxHP with a floor of 1, clamping HP to the new maximum.
func (f *Fighter) ReduceMaxHP(amount int) int {
	if amount <= 0 || f.MaxHP <= 1 {
		return 0
	}
	actual := amount
	if f.MaxHP-actual < 1 {
		actual = f.MaxHP - 1
	}
	f.MaxHP -= actual
	if f.HP > f.MaxHP {
		f.HP = f.MaxHP
	}
	return actual
}

// TryUse reports whether a limited modifier may fire and records the use.
// A cap of zero means unlimited and is not counted.
func (f *Fighter) TryUse(key string, limit int) bool {
	if limit <= 0 {
		return true
	}
	if f.Uses == nil {
		f.Uses = make(map[string]int)
	}
	if f.Uses[key] >= limit {
		return false
	}
	f.Uses[key]++
	return true
}

// FireOnce returns true the first time it is called for key in a battle.
func (f *Fighter) FireOnce(key string) bool {
	if f.Fired[key] {
		return false
	}
	if f.Fired == nil {
		f.Fired = make(map[string]bool)
	}
	f.Fired[key] = true
	return true
}

// =============================================================================
// Status effects
// =============================================================================

// AddStatus adds a damage-over-time stack.
func (f *Fighter) AddStatus(kind StatusKind, power, turns int) {
	if power <= 0 || turns <= 0 {
		return
	}
	f.dots = append(f.dots, StatusEffect{Kind: kind, Power: power, RemainingTurns: turns})
}

// Statuses returns a copy of the active damage-over-time stacks.
func (f *Fighter) Statuses() []StatusEffect {
	return slices.Clone(f.dots)
}

// StatusTotal returns the summed power of all stacks of a kind.
func (f *Fighter) StatusTotal(kind StatusKind) int {
	total := 0
	for _, s := range f.dots {
		if s.Kind == kind {
			total += s.Power
		}
	}
	return total
}

// TickStatusEffects applies one turn of damage-over-time. Each stack deals
// its power, decrements its duration and is removed when it reaches zero.
func (f *Fighter) TickStatusEffects() []StatusTick {
	var ticks []StatusTick
	remaining := f.dots[:0]

	for _, effect := range f.dots {
		tick := StatusTick{Kind: effect.Kind, Amount: f.TakeDamage(effect.Power)}

		effect.RemainingTurns--
		if effect.RemainingTurns <= 0 {
			tick.Ended = true
		} else {
			remaining = append(remaining, effect)
		}
		ticks = append(ticks, tick)
	}

	f.dots = remaining
	return ticks
}

// AddAttackDebuff lowers Attack for a number of turns.
func (f *Fighter) AddAttackDebuff(amount, turns int) int {
	removed := f.ReduceAttack(amount)
	if removed > 0 && turns > 0 {
		f.debuffs = append(f.debuffs, AttackDebuff{Amount: removed, RemainingTurns: turns})
	}
	return removed
}

// TickAttackDebuffs decrements timed debuffs and returns the attack restored
// by those that expired.
func (f *Fighter) TickAttackDebuffs() int {
	restored := 0
	remaining := f.debuffs[:0]
	for _, d := range f.debuffs {
		d.RemainingTurns--
		if d.RemainingTurns <= 0 {
			restored += d.Amount
			continue
		}
		remaining = append(remaining, d)
	}
	f.debuffs = remaining
	f.Attack += restored
	return restored
}

// Clone returns a deep copy. The ability definition is shared since it is immutable.
func (f *Fighter) Clone() *Fighter {
	c := *f
	c.Uses = maps.Clone(f.Uses)
	c.Fired = maps.Clone(f.Fired)
	c.dots = slices.Clone(f.dots)
	c.debuffs = slices.Clone(f.debuffs)
	return &c
}
