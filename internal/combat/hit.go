package combat

import (
	"fmt"

	"github.com/samdwyer/gachabattle/internal/entity"
	"github.com/samdwyer/gachabattle/internal/gamedata"
)

// Default durations for on-hit effects that omit one.
const (
	defaultDoTDuration    = 3
	defaultWeakenDuration = 2
	defaultFreezeTurns    = 1
)

// HitReport describes what happened when a resolved attack met the defender.
type HitReport struct {
	Evaded   bool // Avoided by a pending dodge
	Immune   bool // Absorbed by immortality
	Absorbed int  // Taken by the shield
	Dealt    int  // HP actually removed
	Overkill int  // Damage beyond the defender's remaining HP
	Messages []string
}

// Landed reports whether the hit reached the defender's HP or shield.
func (h HitReport) Landed() bool {
	return !h.Evaded && !h.Immune
}

// ApplyHit applies a resolved attack to the defender: a pending dodge first,
// then shield absorption, then immortality, then HP loss.
func ApplyHit(attacker, defender *entity.Fighter, result AttackResult) HitReport {
	var report HitReport

	switch {
	case result.Dodged:
		report.Evaded = true
		report.Messages = append(report.Messages, fmt.Sprintf("%s dodges the attack!", defender.Name))
		if mod := defender.Modifier(); mod != nil && mod.DodgeHeal > 0 {
			if healed := defender.Heal(mod.DodgeHeal); healed > 0 {
				report.Messages = append(report.Messages, fmt.Sprintf("%s recovers %d HP!", defender.Name, healed))
			}
		}
		return report
	case result.Blocked:
		report.Evaded = true
		report.Messages = append(report.Messages, fmt.Sprintf("%s blocks the attack!", defender.Name))
		return report
	case result.Gambled:
		report.Evaded = true
		report.Messages = append(report.Messages, fmt.Sprintf("%s misses!", attacker.Name))
		return report
	}

	if defender.DodgeNext {
		defender.DodgeNext = false
		report.Evaded = true
		report.Messages = append(report.Messages, fmt.Sprintf("%s dodges the attack!", defender.Name))
		return report
	}

	damage := result.Damage

	if mod := attacker.Modifier(); mod != nil && mod.ArmorBreak && defender.Shield > 0 {
		defender.Shield = 0
		report.Messages = append(report.Messages, fmt.Sprintf("%s shatters %s's shield!", attacker.Name, defender.Name))
	}

	if defender.ImmortalTurns > 0 {
		defender.ImmortalTurns--
		report.Immune = true
		report.Messages = append(report.Messages, fmt.Sprintf("%s is immortal! Takes no damage.", defender.Name))
		return report
	}

	if defender.Shield > 0 && damage > 0 {
		absorbed := min(defender.Shield, damage)
		defender.Shield -= absorbed
		damage -= absorbed
		report.Absorbed = absorbed
		report.Messages = append(report.Messages, fmt.Sprintf("%s's shield absorbs %d damage!", defender.Name, absorbed))
	}

	defender.HasBeenHit = true
	report.Dealt = defender.TakeDamage(damage)
	report.Overkill = damage - report.Dealt
	report.Messages = append(report.Messages, fmt.Sprintf("%s deals %d damage to %s!", attacker.Name, report.Dealt, defender.Name))
	return report
}

// ApplyOnHit applies the attacker's on-hit effects to a defender that was hit.
func ApplyOnHit(attacker, defender *entity.Fighter, r Roller) []string {
	mod := attacker.Modifier()
	if mod == nil {
		return nil
	}
	var out []string

	if mod.LifeOnHit > 0 {
		if healed := attacker.Heal(mod.LifeOnHit); healed > 0 {
			out = append(out, fmt.Sprintf("%s heals %d HP!", attacker.Name, healed))
		}
	}
	if mod.AttackStack > 0 {
		attacker.Attack += mod.AttackStack
		out = append(out, fmt.Sprintf("%s gains +%d attack!", attacker.Name, mod.AttackStack))
	}
	if Chance(r, mod.FeintDodge) {
		attacker.DodgeNext = true
		out = append(out, fmt.Sprintf("%s feints and readies a dodge!", attacker.Name))
	}

	if !defender.IsAlive() {
		return out
	}

	if mod.PoisonDamage > 0 {
		defender.AddStatus(entity.StatusPoison, mod.PoisonDamage, orDefaultInt(mod.PoisonDuration, defaultDoTDuration))
		out = append(out, fmt.Sprintf("%s is poisoned!", defender.Name))
	}
	if mod.BurnDamage > 0 {
		defender.AddStatus(entity.StatusBurn, mod.BurnDamage, orDefaultInt(mod.BurnDuration, defaultDoTDuration))
		out = append(out, fmt.Sprintf("%s is burning!", defender.Name))
	}
	if mod.BleedDamage > 0 {
		defender.AddStatus(entity.StatusBleed, mod.BleedDamage, orDefaultInt(mod.BleedDuration, defaultDoTDuration))
		out = append(out, fmt.Sprintf("%s is bleeding!", defender.Name))
	}
	if Chance(r, mod.StunChance) {
		defender.Stunned = true
		out = append(out, fmt.Sprintf("%s is stunned!", defender.Name))
	}
	if Chance(r, mod.FreezeChance) {
		defender.Frozen = max(defender.Frozen, defaultFreezeTurns)
		out = append(out, fmt.Sprintf("%s is frozen solid!", defender.Name))
	}
	if mod.CrippleFlat > 0 {
		if removed := defender.ReduceAttack(mod.CrippleFlat); removed > 0 {
			out = append(out, fmt.Sprintf("%s is crippled! -%d attack", defender.Name, removed))
		}
	}
	if mod.ShatterHP > 0 {
		if removed := defender.ReduceMaxHP(mod.ShatterHP); removed > 0 {
			out = append(out, fmt.Sprintf("%s loses %d max HP!", defender.Name, removed))
		}
	}
	if mod.DrainPercent > 0 {
		drained := defender.TakeDamage(max(1, mulFloor(defender.MaxHP, mod.DrainPercent)))
		healed := attacker.Heal(drained)
		out = append(out, fmt.Sprintf("%s drains %d HP from %s! (+%d)", attacker.Name, drained, defender.Name, healed))
	}
	if mod.WeakenPercent > 0 {
		if removed := defender.AddAttackDebuff(max(1, mulFloor(defender.Attack, mod.WeakenPercent)), orDefaultInt(mod.Duration, defaultWeakenDuration)); removed > 0 {
			out = append(out, fmt.Sprintf("%s is weakened! -%d attack", defender.Name, removed))
		}
	}
	if mod.SilenceTurns > 0 {
		defender.SilencedTurns = max(defender.SilencedTurns, mod.SilenceTurns)
		out = append(out, fmt.Sprintf("%s is silenced!", defender.Name))
	}
	if mod.BurnAbilityTurns > 0 && Chance(r, mod.BurnAbilityChance) {
		defender.SilencedTurns = max(defender.SilencedTurns, mod.BurnAbilityTurns)
		out = append(out, fmt.Sprintf("%s's ability is burned out!", defender.Name))
	}
	return out
}

// ApplyAfterHit applies the defender's reactions to being hit.
func ApplyAfterHit(defender, attacker *entity.Fighter, r Roller) []string {
	mod := defender.Modifier()
	if mod == nil || !defender.IsAlive() {
		return nil
	}
	var out []string

	if mod.CounterAttack || Chance(r, mod.CounterChance) {
		dealt := attacker.TakeDamage(defender.Attack)
		out = append(out, fmt.Sprintf("%s counters for %d damage!", defender.Name, dealt))
	}
	if mod.AnticipateDodge {
		defender.DodgeNext = true
		out = append(out, fmt.Sprintf("%s anticipates the next attack!", defender.Name))
	}
	return out
}

// ApplyOnKill applies the killer's on-kill effects. Allies are the killer's
// living teammates.
func ApplyOnKill(killer, victim *entity.Fighter, allies []*entity.Fighter, overkill int) []string {
	ability := killer.ActiveAbility()
	if ability == nil || !killer.IsAlive() {
		return nil
	}
	mod := &ability.Modifier
	var out []string

	if ability.Is(gamedata.TriggerOnKill) && mod.AttackGain > 0 {
		killer.Attack += mod.AttackGain
		out = append(out, fmt.Sprintf("%s gains +%d attack!", killer.Name, mod.AttackGain))
	}
	if mod.AbsorbAttack > 0 {
		gain := mulFloor(victim.Attack, mod.AbsorbAttack)
		killer.Attack += gain
		out = append(out, fmt.Sprintf("%s absorbs %d attack from %s!", killer.Name, gain, victim.Name))
	}
	if mod.OverkillHeal && overkill > 0 {
		if healed := killer.Heal(overkill); healed > 0 {
			out = append(out, fmt.Sprintf("%s heals %d from overkill!", killer.Name, healed))
		}
	}
	if mod.AllyHealOnKill > 0 {
		for _, ally := range allies {
			if healed := ally.Heal(max(1, mulFloor(ally.MaxHP, mod.AllyHealOnKill))); healed > 0 {
				out = append(out, fmt.Sprintf("%s heals %d HP!", ally.Name, healed))
			}
		}
	}
	return out
}

// ApplyOnDeath applies a fallen fighter's death effects. It fires at most
// once per fighter. The opponent may be nil.
func ApplyOnDeath(dead *entity.Fighter, allies []*entity.Fighter, opponent *entity.Fighter) []string {
	mod := dead.Modifier()
	if mod == nil || !dead.FireOnce("death") {
		return nil
	}
	var out []string

	if mod.DeathDamage > 0 && opponent != nil && opponent.IsAlive() {
		dealt := opponent.TakeDamage(max(1, mulFloor(dead.MaxHP, mod.DeathDamage)))
		out = append(out, fmt.Sprintf("%s's last words deal %d damage to %s!", dead.Name, dealt, opponent.Name))
	}
	if mod.DeathBuff > 0 {
		for _, ally := range allies {
			gain := max(1, mulFloor(ally.Attack, mod.DeathBuff))
			ally.Attack += gain
			out = append(out, fmt.Sprintf("%s is inspired! +%d attack", ally.Name, gain))
		}
	}
	return out
}

// ApplyAllyDeath lets the living members of a team react to a teammate
// falling. Every vengeance holder buffs the whole surviving team.
func ApplyAllyDeath(living []*entity.Fighter) []string {
	var out []string
	for _, holder := range living {
		mod := holder.Modifier()
		if mod == nil || mod.VengeanceBuff <= 0 {
			continue
		}
		out = append(out, fmt.Sprintf("%s swears vengeance!", holder.Name))
		for _, ally := range living {
			gain := max(1, mulFloor(ally.Attack, mod.VengeanceBuff))
			ally.Attack += gain
			out = append(out, fmt.Sprintf("%s gains +%d attack!", ally.Name, gain))
		}
	}
	return out
}

func orDefaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
