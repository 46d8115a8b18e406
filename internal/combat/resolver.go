package combat

import (
	"fmt"
	"math"

	"github.com/samdwyer/gachabattle/internal/entity"
)

// Use-counter keys shared by the pipeline.
const (
	useDamageBonus  = "damageBonus"
	useDamageReduce = "damageReduce"
	useBlockFirst   = "blockFirst"
)

// maxDodgeChance bounds dodge once stacked bonuses are added. A base chance
// above it is kept as is.
const maxDodgeChance = 0.9

// AttackResult is the outcome of running one attack through the pipeline.
type AttackResult struct {
	Damage  int
	Dodged  bool
	Blocked bool
	Gambled bool // Gambled to zero
	Effects []string
}

// Landed reports whether the attack connected at all.
func (r AttackResult) Landed() bool {
	return !r.Dodged && !r.Blocked && !r.Gambled
}

// Resolver runs the damage pipeline.
type Resolver struct {
	rng Roller
}

// NewResolver creates a resolver drawing chances from rng.
func NewResolver(rng Roller) *Resolver {
	return &Resolver{rng: rng}
}

// ResolveAttack computes the damage of one attack. Attacker stages run first,
// then defender stages. Stage order is fixed because stages do not commute:
// lifesteal reads post-crit damage and the damage cap applies after flat and
// percent reduction but before parry.
//
// The attacker and defender are mutated as a side effect: lifesteal and
// recoil change attacker HP, thorns change attacker HP, and limited-use
// counters are consumed on both sides.
func (r *Resolver) ResolveAttack(attacker, defender *entity.Fighter, baseDamage int) AttackResult {
	damage := baseDamage
	if damage < 0 {
		damage = 0
	}
	var effects []string
	zeroed := false

	if mod := attacker.Modifier(); mod != nil {
		name := attacker.ActiveAbility().Name

		if mod.FlatDamage != 0 {
			damage += int(mod.FlatDamage)
		}

		if mod.DamageBonus != 0 && attacker.TryUse(useDamageBonus, mod.Uses) {
			damage = mulFloor(damage, 1+mod.DamageBonus)
			effects = append(effects, name+"!")
		}

		if Chance(r.rng, mod.CritChance) {
			damage = mulFloor(damage, orDefault(mod.CritMulti, 2))
			effects = append(effects, "Critical!")
		}

		if mod.ExecuteThreshold > 0 && defender.HPRatio() <= mod.ExecuteThreshold {
			damage = mulFloor(damage, orDefault(mod.ExecuteMulti, 2))
			effects = append(effects, "Execute!")
		}

		if Chance(r.rng, mod.DoubleChance) {
			damage *= 2
			effects = append(effects, "Double Strike!")
		}

		if Chance(r.rng, mod.LuckyChance) {
			damage = mulFloor(damage, orDefault(mod.LuckyMulti, 2))
			effects = append(effects, "Lucky!")
		}

		if mod.GambleChance > 0 {
			if Chance(r.rng, mod.GambleChance) {
				damage *= 2
				effects = append(effects, "Gamble Win!")
			} else {
				damage = 0
				zeroed = true
				effects = append(effects, "Gamble Miss!")
			}
		}

		if mod.LifeSteal > 0 {
			heal := attacker.Heal(mulFloor(damage, mod.LifeSteal))
			effects = append(effects, fmt.Sprintf("Heal %d", heal))
		}

		if mod.VampireHeal > 0 {
			heal := attacker.Heal(mulFloor(damage, mod.VampireHeal))
			effects = append(effects, fmt.Sprintf("Drain %d", heal))
		}

		if mod.SelfDamage > 0 {
			attacker.TakeDamage(mod.SelfDamage)
			if !zeroed {
				damage += mod.DamageGain
			}
			effects = append(effects, fmt.Sprintf("Rage -%d HP", mod.SelfDamage))
		}
	}

	if mod := defender.Modifier(); mod != nil {
		if Chance(r.rng, dodgeChance(mod.DodgeChance, defender.DodgeBonus)) {
			return AttackResult{Dodged: true, Effects: append(effects, "Dodged!")}
		}

		if mod.BlockFirst && defender.TryUse(useBlockFirst, 1) {
			return AttackResult{Blocked: true, Effects: append(effects, "Blocked!")}
		}

		if mod.DamageReduce != 0 && defender.TryUse(useDamageReduce, mod.Uses) {
			damage = mulFloor(damage, 1-mod.DamageReduce)
			effects = append(effects, "Reduced!")
		}

		if mod.FlatReduction > 0 && !zeroed {
			damage = max(1, damage-mod.FlatReduction)
			effects = append(effects, fmt.Sprintf("Armor -%d", mod.FlatReduction))
		}

		if mod.DamageCap > 0 {
			limit := mulFloor(defender.MaxHP, mod.DamageCap)
			if damage > limit {
				damage = limit
				effects = append(effects, "Capped!")
			}
		}

		if Chance(r.rng, mod.ParryChance) {
			damage = mulFloor(damage, 1-mod.ParryReduce)
			effects = append(effects, "Parry!")
		}

		if mod.ThornsDamage > 0 {
			thorns := mulFloor(damage, mod.ThornsDamage)
			attacker.TakeDamage(thorns)
			effects = append(effects, fmt.Sprintf("Thorns %d", thorns))
		}
	}

	if zeroed {
		return AttackResult{Gambled: true, Effects: effects}
	}
	return AttackResult{Damage: max(1, damage), Effects: effects}
}

// OutgoingDamage computes the base damage handed to the pipeline:
// Attack scaled by the damage multiplier, then shaped by the attacker's
// pre-pipeline modifiers. A pending one-shot charge is consumed.
func OutgoingDamage(attacker, defender *entity.Fighter) (int, []string) {
	damage := mulFloor(attacker.Attack, attacker.DamageMultiplier)
	var effects []string

	if attacker.ChargedMulti > 0 {
		damage = mulFloor(damage, attacker.ChargedMulti)
		effects = append(effects, "Charged!")
		attacker.ChargedMulti = 0
	}

	mod := attacker.Modifier()
	if mod == nil {
		return max(0, damage), effects
	}

	if mod.StackingDamage > 0 && attacker.ConsecutiveHits > 0 {
		damage += mod.StackingDamage * attacker.ConsecutiveHits
		effects = append(effects, fmt.Sprintf("Combo x%d", attacker.ConsecutiveHits))
	}

	if mod.ChargeEvery > 0 && (attacker.AttackCount+1)%mod.ChargeEvery == 0 {
		damage = mulFloor(damage, orDefault(mod.ChargeMulti, 2))
		effects = append(effects, "Charge!")
	}

	if mod.PunchMulti > 0 && !attacker.HasAttacked {
		damage = mulFloor(damage, mod.PunchMulti)
		effects = append(effects, "One Punch!")
	} else if mod.AfterMulti > 0 && attacker.HasAttacked {
		damage = mulFloor(damage, mod.AfterMulti)
	}

	if mod.AttackEveryNTurns > 0 && mod.DamageMultiplier > 0 {
		damage = mulFloor(damage, mod.DamageMultiplier)
	}

	if mod.FullHPBonus > 0 && defender.HP >= defender.MaxHP {
		damage = mulFloor(damage, 1+mod.FullHPBonus)
		effects = append(effects, "Overwhelm!")
	}

	if mod.FinisherBonus > 0 {
		if boosted := mulFloor(damage, 1+mod.FinisherBonus); boosted >= defender.HP+defender.Shield {
			damage = boosted
			effects = append(effects, "Finishing Blow!")
		}
	}

	if mod.DamagePenalty > 0 {
		damage = mulFloor(damage, 1-mod.DamagePenalty)
	}

	return max(0, damage), effects
}

// mulFloor multiplies and floors, never returning a negative value.
func mulFloor(v int, m float64) int {
	out := math.Floor(float64(v) * m)
	if out <= 0 || math.IsNaN(out) {
		return 0
	}
	if out > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(out)
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func dodgeChance(base, bonus float64) float64 {
	if bonus <= 0 {
		return base
	}
	return max(base, min(base+bonus, maxDodgeChance))
}
