package combat

import (
	"fmt"

	"github.com/samdwyer/gachabattle/internal/entity"
	"github.com/samdwyer/gachabattle/internal/gamedata"
)

// baseline is a fighter's state captured before any battle-start effect.
type baseline struct {
	ability *gamedata.AbilityDef
	attack  int
	maxHP   int
}

type side struct {
	own, opp entity.Team
}

// ApplyBattleStart applies every fighter's battle-start effects once.
//
// Ordering:
//  1. both teams are snapshotted;
//  2. ability manipulation (copy, swap, nullify, lock) reads the snapshot;
//  3. passive stat modifiers;
//  4. own-team auras, sized from stats captured after step 3 so two auras
//     never compound;
//  5. enemy-team debuffs;
//  6. individual effects (shields, skips, charges, mirror, equilibrium).
//
// Within each step the player team goes first, then the enemy team.
// Single-target effects aim at the opposing team's first living fighter.
func ApplyBattleStart(player, enemy entity.Team, r Roller) []string {
	sides := []side{{own: player, opp: enemy}, {own: enemy, opp: player}}
	snap := snapshot(player, enemy)
	var out []string

	for _, s := range sides {
		for _, f := range s.own {
			out = append(out, manipulate(f, s.opp, snap)...)
		}
	}
	for _, s := range sides {
		for _, f := range s.own {
			out = append(out, applyPassive(f)...)
		}
	}

	auraBase := snapshot(player, enemy)
	for _, s := range sides {
		for _, f := range s.own {
			out = append(out, applyAura(f, s.own, auraBase)...)
		}
	}
	for _, s := range sides {
		for _, f := range s.own {
			out = append(out, applyDebuff(f, s.opp)...)
		}
	}
	for _, s := range sides {
		for _, f := range s.own {
			out = append(out, applyIndividual(f, s.opp, snap, r)...)
		}
	}
	return out
}

func snapshot(teams ...entity.Team) map[*entity.Fighter]baseline {
	snap := make(map[*entity.Fighter]baseline)
	for _, t := range teams {
		for _, f := range t {
			snap[f] = baseline{ability: f.ActiveAbility(), attack: f.Attack, maxHP: f.MaxHP}
		}
	}
	return snap
}

func manipulate(f *entity.Fighter, opp entity.Team, snap map[*entity.Fighter]baseline) []string {
	own := snap[f].ability
	target, _ := opp.Active()
	if own == nil || target == nil || !f.IsAlive() {
		return nil
	}
	mod := &own.Modifier
	theirs := snap[target].ability
	var out []string

	switch {
	case mod.CopyAbility && theirs != nil:
		f.Ability = theirs
		out = append(out, fmt.Sprintf("%s copies %s's %s!", f.Name, target.Name, theirs.Name))
	case mod.SwapAbilities:
		f.Ability = theirs
		target.Ability = own
		out = append(out, fmt.Sprintf("%s swaps abilities with %s!", f.Name, target.Name))
	case mod.NullifyAbility:
		target.Nullified = true
		out = append(out, fmt.Sprintf("%s nullifies %s's ability!", f.Name, target.Name))
	case mod.MutualLock > 0:
		f.SilencedTurns = max(f.SilencedTurns, mod.MutualLock)
		target.SilencedTurns = max(target.SilencedTurns, mod.MutualLock)
		out = append(out, fmt.Sprintf("%s locks both abilities for %d turns!", f.Name, mod.MutualLock))
	}
	return out
}

func applyPassive(f *entity.Fighter) []string {
	ability := f.ActiveAbility()
	if ability == nil || !ability.Is(gamedata.TriggerPassive) {
		return nil
	}
	mod := &ability.Modifier

	attack := float64(f.Attack)
	hp := float64(f.MaxHP)

	attack += float64(mod.AttackFlat)
	attack *= 1 + mod.AttackPercent + mod.AttackMod + mod.AllStats + mod.StatPenalty
	hp += float64(mod.HPFlat)
	hp *= 1 + mod.HPPercent + mod.HPMod + mod.AllStats + mod.StatPenalty
	f.DodgeBonus += mod.DodgeFlat

	newAttack := max(1, int(attack))
	newHP := max(1, int(hp))
	if newAttack == f.Attack && newHP == f.MaxHP {
		return nil
	}
	f.Attack = newAttack
	f.MaxHP = newHP
	f.HP = newHP
	return []string{fmt.Sprintf("%s's %s: %d HP, %d attack", f.Name, ability.Name, f.MaxHP, f.Attack)}
}

func applyAura(f *entity.Fighter, own entity.Team, base map[*entity.Fighter]baseline) []string {
	mod := f.Modifier()
	if mod == nil || !f.IsAlive() {
		return nil
	}
	var out []string

	if mod.TeamAttackBuff > 0 {
		for _, m := range own {
			m.Attack += mulFloor(base[m].attack, mod.TeamAttackBuff)
		}
		out = append(out, fmt.Sprintf("%s rallies the team! +%.0f%% attack", f.Name, mod.TeamAttackBuff*100))
	}
	if mod.TeamHPBuff > 0 {
		for _, m := range own {
			m.MaxHP += mod.TeamHPBuff
			m.HP += mod.TeamHPBuff
		}
		out = append(out, fmt.Sprintf("%s fortifies the team! +%d HP", f.Name, mod.TeamHPBuff))
	}

	allyAttack := mod.SharedAttack + mod.AllyAttackBuff
	if allyAttack > 0 || mod.AllyShield > 0 {
		for _, m := range own.Allies(f) {
			m.Attack += allyAttack
			m.Shield += mod.AllyShield
		}
		if allyAttack > 0 {
			out = append(out, fmt.Sprintf("%s empowers allies! +%d attack", f.Name, allyAttack))
		}
		if mod.AllyShield > 0 {
			out = append(out, fmt.Sprintf("%s shields allies for %d!", f.Name, mod.AllyShield))
		}
	}
	return out
}

func applyDebuff(f *entity.Fighter, opp entity.Team) []string {
	mod := f.Modifier()
	if mod == nil || !f.IsAlive() {
		return nil
	}
	var out []string

	if mod.EnemyAttackDebuff > 0 {
		for _, e := range opp {
			e.ReduceAttack(mod.EnemyAttackDebuff)
		}
		out = append(out, fmt.Sprintf("%s intimidates the enemy team! -%d attack", f.Name, mod.EnemyAttackDebuff))
	}
	if mod.MassFreeze > 0 {
		for _, e := range opp {
			e.Frozen = max(e.Frozen, mod.MassFreeze)
		}
		out = append(out, fmt.Sprintf("%s freezes the enemy team!", f.Name))
	}
	if mod.SkipEnemyTurn > 0 {
		if target, _ := opp.Active(); target != nil {
			target.SkipTurns += mod.SkipEnemyTurn
			out = append(out, fmt.Sprintf("%s warps time around %s!", f.Name, target.Name))
		}
	}
	return out
}

func applyIndividual(f *entity.Fighter, opp entity.Team, snap map[*entity.Fighter]baseline, r Roller) []string {
	ability := f.ActiveAbility()
	if ability == nil || !f.IsAlive() {
		return nil
	}
	mod := &ability.Modifier
	var out []string

	if shield := mod.Shield + mod.ShieldAmount; shield > 0 {
		f.Shield += shield
		out = append(out, fmt.Sprintf("%s raises a %d HP shield!", f.Name, shield))
	}
	if ability.Is(gamedata.TriggerBattleStart) && mod.HealPercent > 0 {
		f.Heal(max(1, mulFloor(f.MaxHP, mod.HealPercent)))
	}
	if mod.MirrorStats {
		if target, _ := opp.Active(); target != nil {
			f.Attack = snap[target].attack
			f.MaxHP = snap[target].maxHP
			f.HP = f.MaxHP
			out = append(out, fmt.Sprintf("%s mirrors %s's stats!", f.Name, target.Name))
		}
	}
	if mod.Equilibrium {
		avg := max(1, (f.MaxHP+f.Attack)/2)
		f.MaxHP, f.HP, f.Attack = avg, avg, avg
		out = append(out, fmt.Sprintf("%s finds equilibrium at %d!", f.Name, avg))
	}
	if mod.FluxHP {
		f.MaxHP = max(1, mulFloor(f.MaxHP, 0.5+r.Float64()))
		f.HP = f.MaxHP
		out = append(out, fmt.Sprintf("%s's form fluxes to %d HP!", f.Name, f.MaxHP))
	}
	if mod.StatBoost > 0 {
		f.Attack += mulFloor(f.Attack, mod.StatBoost)
		gain := mulFloor(f.MaxHP, mod.StatBoost)
		f.MaxHP += gain
		f.HP += gain
	}

	if skip := mod.SkipTurn + mod.SkipTurns + mod.DelayTurns + mod.BideSkipTurns; skip > 0 {
		f.SkipTurns += skip
		out = append(out, fmt.Sprintf("%s will wait %d turn(s).", f.Name, skip))
	}
	if charge := max(mod.DamageMulti, mod.BideDamageMulti); charge > 0 {
		f.ChargedMulti = charge
	}

	extra := mod.FreeAttacks + mod.ExtraAttacks
	if mod.ExtraTurnFirst {
		extra++
	}
	if extra > 0 {
		f.ExtraAttacks += extra
		out = append(out, fmt.Sprintf("%s readies %d extra attack(s)!", f.Name, extra))
	}
	if mod.ImmortalTurns > 0 {
		f.ImmortalTurns = mod.ImmortalTurns
		out = append(out, fmt.Sprintf("%s is immortal for %d hit(s)!", f.Name, mod.ImmortalTurns))
	}
	if mod.DodgeFirst {
		f.DodgeNext = true
	}
	return out
}
