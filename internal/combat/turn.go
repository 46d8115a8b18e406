package combat

import (
	"fmt"
	"math"

	"github.com/samdwyer/gachabattle/internal/entity"
	"github.com/samdwyer/gachabattle/internal/gamedata"
)

// Second Wind fires below this ratio when the ability names no threshold.
const defaultLowHPThreshold = 0.2

// TurnStart applies one fighter's start-of-turn effects and returns the log
// lines they produced. Order: damage-over-time, regeneration, stat ramps,
// threshold flips, then timers tick down. It touches only f, so running it
// for both active fighters in either order gives the same result.
func TurnStart(f *entity.Fighter, r Roller) []string {
	if !f.IsAlive() {
		return nil
	}
	var out []string

	for _, tick := range f.TickStatusEffects() {
		if tick.Amount > 0 {
			out = append(out, fmt.Sprintf("%s takes %d %s damage!", f.Name, tick.Amount, tick.Kind))
		}
		if tick.Ended {
			out = append(out, fmt.Sprintf("%s's %s wears off.", f.Name, tick.Kind))
		}
	}

	if ability := f.ActiveAbility(); ability != nil && f.IsAlive() {
		out = append(out, applyTurnAbility(f, ability, r)...)
	}

	if restored := f.TickAttackDebuffs(); restored > 0 {
		out = append(out, fmt.Sprintf("%s recovers %d attack.", f.Name, restored))
	}
	if f.SilencedTurns > 0 {
		f.SilencedTurns--
		if f.SilencedTurns == 0 && f.Ability != nil && !f.Nullified {
			out = append(out, fmt.Sprintf("%s's %s is restored.", f.Name, f.Ability.Name))
		}
	}
	return out
}

func applyTurnAbility(f *entity.Fighter, ability *gamedata.AbilityDef, r Roller) []string {
	mod := &ability.Modifier
	var out []string

	// Regeneration
	if mod.HealPerTurn > 0 {
		if healed := f.Heal(mod.HealPerTurn); healed > 0 {
			out = append(out, fmt.Sprintf("%s regenerates %d HP.", f.Name, healed))
		}
	}
	if mod.RegenPercent > 0 {
		if healed := f.Heal(max(1, mulFloor(f.MaxHP, mod.RegenPercent))); healed > 0 {
			out = append(out, fmt.Sprintf("%s regenerates %d HP.", f.Name, healed))
		}
	}
	if mod.GrowHP > 0 {
		f.MaxHP += mod.GrowHP
		f.HP += mod.GrowHP
		out = append(out, fmt.Sprintf("%s grows! +%d max HP", f.Name, mod.GrowHP))
	}
	if mod.SelfBurn > 0 {
		lost := f.TakeDamage(mod.SelfBurn)
		out = append(out, fmt.Sprintf("%s burns %d HP for power.", f.Name, lost))
	}

	// Stat ramps
	if ability.Is(gamedata.TriggerOnTurn) && mod.AttackGain > 0 {
		f.Attack += mod.AttackGain
		out = append(out, fmt.Sprintf("%s gains +%d attack.", f.Name, mod.AttackGain))
	}
	if mod.DamageStack > 0 {
		f.DamageMultiplier += mod.DamageStack
	}
	if mod.PatienceStack > 0 {
		f.DamageMultiplier += mod.PatienceStack
	}
	if mod.AcrobatStack > 0 {
		f.DodgeBonus += mod.AcrobatStack
	}
	if mod.ChaosRange > 0 {
		swing := (r.Float64()*2 - 1) * mod.ChaosRange
		delta := int(math.Round(float64(f.Attack) * swing))
		f.Attack = max(1, f.Attack+delta)
		out = append(out, fmt.Sprintf("%s's power shifts chaotically (%+d attack).", f.Name, delta))
	}

	if !f.IsAlive() {
		return out
	}
	return append(out, applyThresholds(f, ability)...)
}

// applyThresholds flips the one-shot low-HP effects. Each fires at most once
// per battle.
func applyThresholds(f *entity.Fighter, ability *gamedata.AbilityDef) []string {
	mod := &ability.Modifier
	ratio := f.HPRatio()
	var out []string

	if mod.EnrageThreshold > 0 && ratio < mod.EnrageThreshold && f.FireOnce("enrage") {
		f.Attack += mod.EnrageAttack
		out = append(out, fmt.Sprintf("%s becomes enraged! +%d attack", f.Name, mod.EnrageAttack))
	}
	if mod.DesperateThreshold > 0 && ratio < mod.DesperateThreshold && f.FireOnce("desperate") {
		f.Attack = mulFloor(f.Attack, orDefault(mod.DesperateMulti, 2))
		out = append(out, fmt.Sprintf("%s is desperate! Attack is now %d", f.Name, f.Attack))
	}
	if mod.AdrenalineThreshold > 0 && ratio < mod.AdrenalineThreshold && f.FireOnce("adrenaline") {
		f.Attack += mod.AdrenalineAttack
		out = append(out, fmt.Sprintf("%s surges with adrenaline! +%d attack", f.Name, mod.AdrenalineAttack))
	}
	if mod.RageThreshold > 0 && ratio <= mod.RageThreshold && f.FireOnce("rage") {
		gain := mulFloor(f.Attack, mod.RageMod)
		f.Attack += gain
		out = append(out, fmt.Sprintf("%s flies into a rage! +%d attack", f.Name, gain))
	}

	if !ability.Is(gamedata.TriggerLowHP) {
		return out
	}
	threshold := orDefault(mod.Threshold, defaultLowHPThreshold)
	if mod.AttackPercent > 0 && ratio < threshold && f.FireOnce("berserk") {
		gain := mulFloor(f.Attack, mod.AttackPercent)
		f.Attack += gain
		out = append(out, fmt.Sprintf("%s goes berserk! +%d attack", f.Name, gain))
	}
	if mod.HealPercent > 0 && ratio < threshold && f.TryUse("healPercent", mod.Uses) {
		healed := f.Heal(max(1, mulFloor(f.MaxHP, mod.HealPercent)))
		out = append(out, fmt.Sprintf("%s catches a second wind! +%d HP", f.Name, healed))
	}
	return out
}
