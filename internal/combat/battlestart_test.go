package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/gachabattle/internal/entity"
	"github.com/samdwyer/gachabattle/internal/gamedata"
)

func TestBattleStartPassives(t *testing.T) {
	fury := fighter("Fury", 30, 10, ability("Fury", gamedata.TriggerPassive, gamedata.Modifier{AttackFlat: 5}))
	glass := fighter("Glass", 40, 10, ability("Glass Cannon", gamedata.TriggerPassive, gamedata.Modifier{HPMod: -0.5, AttackMod: 1.0}))
	evasion := fighter("Evasion", 30, 10, ability("Evasion Master", gamedata.TriggerPassive, gamedata.Modifier{DodgeFlat: 0.1}))

	ApplyBattleStart(entity.Team{fury, glass, evasion}, entity.Team{fighter("Foe", 30, 5, nil)}, alwaysFail)

	assert.Equal(t, 15, fury.Attack)
	assert.Equal(t, 20, glass.MaxHP)
	assert.Equal(t, 20, glass.HP)
	assert.Equal(t, 20, glass.Attack)
	assert.InDelta(t, 0.1, evasion.DodgeBonus, 1e-9)
}

func TestBattleStartCopyReadsSnapshot(t *testing.T) {
	copyAbility := ability("Copycat", gamedata.TriggerBattleStart, gamedata.Modifier{CopyAbility: true})
	p := fighter("P", 30, 10, copyAbility)
	e := fighter("E", 30, 10, copyAbility)

	ApplyBattleStart(entity.Team{p}, entity.Team{e}, alwaysFail)

	assert.Same(t, copyAbility, p.Ability)
	assert.Same(t, copyAbility, e.Ability)
}

func TestBattleStartSwap(t *testing.T) {
	swap := ability("Ability Swap", gamedata.TriggerBattleStart, gamedata.Modifier{SwapAbilities: true})
	crit := ability("Critical Eye", gamedata.TriggerOnAttack, gamedata.Modifier{CritChance: 0.2})
	p := fighter("P", 30, 10, swap)
	e := fighter("E", 30, 10, crit)

	log := ApplyBattleStart(entity.Team{p}, entity.Team{e}, alwaysFail)

	assert.Same(t, crit, p.Ability)
	assert.Same(t, swap, e.Ability)
	assert.Contains(t, log, "P swaps abilities with E!")
}

func TestBattleStartNullifyAndLock(t *testing.T) {
	p := fighter("P", 30, 10, ability("Nullify", gamedata.TriggerBattleStart, gamedata.Modifier{NullifyAbility: true}))
	e := fighter("E", 30, 10, ability("Barrier", gamedata.TriggerBattleStart, gamedata.Modifier{Shield: 20}))

	ApplyBattleStart(entity.Team{p}, entity.Team{e}, alwaysFail)
	assert.Nil(t, e.ActiveAbility())
	assert.Equal(t, 0, e.Shield, "nullified battle-start effects never fire")

	l := fighter("L", 30, 10, ability("Ability Lock", gamedata.TriggerBattleStart, gamedata.Modifier{MutualLock: 3}))
	o := fighter("O", 30, 10, ability("Iron Skin", gamedata.TriggerOnHit, gamedata.Modifier{DamageReduce: 0.15}))
	ApplyBattleStart(entity.Team{l}, entity.Team{o}, alwaysFail)
	assert.Equal(t, 3, l.SilencedTurns)
	assert.Equal(t, 3, o.SilencedTurns)
}

func TestBattleStartAurasDoNotCompound(t *testing.T) {
	rally := ability("Rally Cry", gamedata.TriggerBattleStart, gamedata.Modifier{TeamAttackBuff: 0.15})
	a := fighter("A", 30, 100, rally)
	b := fighter("B", 30, 100, rally)

	ApplyBattleStart(entity.Team{a, b}, entity.Team{fighter("Foe", 30, 5, nil)}, alwaysFail)

	assert.Equal(t, 130, a.Attack)
	assert.Equal(t, 130, b.Attack)
}

func TestBattleStartBothSidesAurasAndDebuffs(t *testing.T) {
	p := fighter("P", 30, 10, ability("Rally Cry", gamedata.TriggerBattleStart, gamedata.Modifier{TeamAttackBuff: 0.5}))
	pAlly := fighter("PAlly", 30, 10, nil)
	e := fighter("E", 30, 10, ability("Intimidate", gamedata.TriggerBattleStart, gamedata.Modifier{EnemyAttackDebuff: 3}))
	eAlly := fighter("EAlly", 30, 10, ability("Shield of Faith", gamedata.TriggerBattleStart, gamedata.Modifier{AllyShield: 20}))

	ApplyBattleStart(entity.Team{p, pAlly}, entity.Team{e, eAlly}, alwaysFail)

	assert.Equal(t, 12, p.Attack)
	assert.Equal(t, 12, pAlly.Attack)
	assert.Equal(t, 20, e.Shield)
	assert.Equal(t, 0, eAlly.Shield, "ally shield skips the caster")
	assert.Equal(t, 10, e.Attack, "own debuff does not touch own team")
}

func TestBattleStartIndividualEffects(t *testing.T) {
	tests := []struct {
		name  string
		mod   gamedata.Modifier
		check func(t *testing.T, f *entity.Fighter)
	}{
		{"shield", gamedata.Modifier{Shield: 20}, func(t *testing.T, f *entity.Fighter) {
			assert.Equal(t, 20, f.Shield)
		}},
		{"slow start", gamedata.Modifier{SkipTurn: 1, StatBoost: 0.5}, func(t *testing.T, f *entity.Fighter) {
			assert.Equal(t, 1, f.SkipTurns)
			assert.Equal(t, 15, f.Attack)
			assert.Equal(t, 60, f.MaxHP)
		}},
		{"bide", gamedata.Modifier{BideSkipTurns: 3, BideDamageMulti: 5}, func(t *testing.T, f *entity.Fighter) {
			assert.Equal(t, 3, f.SkipTurns)
			assert.Equal(t, 5.0, f.ChargedMulti)
		}},
		{"free attacks", gamedata.Modifier{FreeAttacks: 2}, func(t *testing.T, f *entity.Fighter) {
			assert.Equal(t, 2, f.ExtraAttacks)
		}},
		{"immortal", gamedata.Modifier{ImmortalTurns: 2}, func(t *testing.T, f *entity.Fighter) {
			assert.Equal(t, 2, f.ImmortalTurns)
		}},
		{"dodge first", gamedata.Modifier{DodgeFirst: true}, func(t *testing.T, f *entity.Fighter) {
			assert.True(t, f.DodgeNext)
		}},
		{"equilibrium", gamedata.Modifier{Equilibrium: true}, func(t *testing.T, f *entity.Fighter) {
			assert.Equal(t, 25, f.Attack)
			assert.Equal(t, 25, f.MaxHP)
		}},
		{"mirror", gamedata.Modifier{MirrorStats: true}, func(t *testing.T, f *entity.Fighter) {
			assert.Equal(t, 7, f.Attack)
			assert.Equal(t, 80, f.MaxHP)
		}},
		{"flux", gamedata.Modifier{FluxHP: true}, func(t *testing.T, f *entity.Fighter) {
			assert.GreaterOrEqual(t, f.MaxHP, 20)
			assert.LessOrEqual(t, f.MaxHP, 60)
			assert.Equal(t, f.MaxHP, f.HP)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fighter("F", 40, 10, ability(tt.name, gamedata.TriggerBattleStart, tt.mod))
			foe := fighter("Foe", 80, 7, nil)
			ApplyBattleStart(entity.Team{f}, entity.Team{foe}, alwaysFail)
			tt.check(t, f)
		})
	}
}

func TestBattleStartEnemyControl(t *testing.T) {
	p := fighter("P", 30, 10, ability("Absolute Zero", gamedata.TriggerBattleStart, gamedata.Modifier{MassFreeze: 1, SkipEnemyTurn: 1}))
	e1 := fighter("E1", 30, 10, nil)
	e2 := fighter("E2", 30, 10, nil)

	log := ApplyBattleStart(entity.Team{p}, entity.Team{e1, e2}, alwaysFail)
	require.NotEmpty(t, log)

	assert.Equal(t, 1, e1.Frozen)
	assert.Equal(t, 1, e2.Frozen)
	assert.Equal(t, 1, e1.SkipTurns)
	assert.Equal(t, 0, e2.SkipTurns)
}
