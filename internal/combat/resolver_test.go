package combat

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/gachabattle/internal/entity"
	"github.com/samdwyer/gachabattle/internal/gamedata"
)

// fixedRoller returns the same value for every roll.
type fixedRoller struct{ v float64 }

func (r fixedRoller) Float64() float64 { return r.v }
func (r fixedRoller) Intn(n int) int   { return int(r.v * float64(n)) }

var (
	alwaysSucceed = fixedRoller{v: 0}
	alwaysFail    = fixedRoller{v: 0.999999}
)

// seqRoller replays scripted values, then repeats the last one.
type seqRoller struct {
	vals []float64
	i    int
}

func (r *seqRoller) Float64() float64 {
	v := r.vals[min(r.i, len(r.vals)-1)]
	r.i++
	return v
}
func (r *seqRoller) Intn(n int) int { return int(r.Float64() * float64(n)) }

func ability(name string, trigger gamedata.Trigger, mod gamedata.Modifier) *gamedata.AbilityDef {
	return &gamedata.AbilityDef{Name: name, Category: gamedata.CategorySpecial, Trigger: trigger, Modifier: mod}
}

func fighter(name string, hp, attack int, a *gamedata.AbilityDef) *entity.Fighter {
	return entity.NewFighter(strings.ToLower(name), name, hp, attack, a)
}

func TestResolveAttackBaseline(t *testing.T) {
	attacker := fighter("Alpha", 50, 20, nil)
	defender := fighter("Beta", 100, 5, nil)

	base, tags := OutgoingDamage(attacker, defender)
	require.Equal(t, 20, base)
	assert.Empty(t, tags)

	res := NewResolver(alwaysSucceed).ResolveAttack(attacker, defender, base)
	assert.Equal(t, 20, res.Damage)
	assert.False(t, res.Dodged)
	assert.False(t, res.Blocked)
	assert.Empty(t, res.Effects)
}

func TestResolveAttackBlockFirst(t *testing.T) {
	attacker := fighter("Alpha", 50, 10, nil)
	defender := fighter("Beta", 100, 5, ability("First Shield", gamedata.TriggerFirstHit, gamedata.Modifier{BlockFirst: true}))
	resolver := NewResolver(alwaysFail)

	first := resolver.ResolveAttack(attacker, defender, 10)
	assert.True(t, first.Blocked)
	assert.Equal(t, 0, first.Damage)

	second := resolver.ResolveAttack(attacker, defender, 10)
	assert.False(t, second.Blocked)
	assert.Equal(t, 10, second.Damage)
}

func TestResolveAttackForcedCrit(t *testing.T) {
	attacker := fighter("Alpha", 50, 10, ability("Critical Eye", gamedata.TriggerOnAttack, gamedata.Modifier{CritChance: 1.0, CritMulti: 2}))
	defender := fighter("Beta", 100, 5, nil)

	for _, r := range []Roller{alwaysSucceed, alwaysFail} {
		res := NewResolver(r).ResolveAttack(attacker, defender, 10)
		assert.Equal(t, 20, res.Damage)
		assert.Contains(t, res.Effects, "Critical!")
	}
}

func TestResolveAttackAttackerStages(t *testing.T) {
	tests := []struct {
		name        string
		mod         gamedata.Modifier
		defenderHP  int
		succeed     int
		fail        int
		attackerHP  int // after the attack with the succeeding roller
		wantGambled bool
	}{
		{"flat damage", gamedata.Modifier{FlatDamage: 10}, 100, 20, 20, 50, false},
		{"damage bonus", gamedata.Modifier{DamageBonus: 0.25}, 100, 12, 12, 50, false},
		{"critical", gamedata.Modifier{CritChance: 0.2, CritMulti: 2}, 100, 20, 10, 50, false},
		{"critical default multiplier", gamedata.Modifier{CritChance: 0.2}, 100, 20, 10, 50, false},
		{"execute above threshold", gamedata.Modifier{ExecuteThreshold: 0.25, ExecuteMulti: 2}, 100, 10, 10, 50, false},
		{"execute below threshold", gamedata.Modifier{ExecuteThreshold: 0.25, ExecuteMulti: 2}, 20, 20, 20, 50, false},
		{"double strike", gamedata.Modifier{DoubleChance: 0.15}, 100, 20, 10, 50, false},
		{"lucky", gamedata.Modifier{LuckyChance: 0.1, LuckyMulti: 3}, 100, 30, 10, 50, false},
		{"gamble", gamedata.Modifier{GambleChance: 0.5}, 100, 20, 0, 50, false},
		{"life steal", gamedata.Modifier{LifeSteal: 0.5}, 100, 10, 10, 55, false},
		{"vampire heal", gamedata.Modifier{VampireHeal: 0.2}, 100, 10, 10, 52, false},
		{"rage", gamedata.Modifier{SelfDamage: 5, DamageGain: 15}, 100, 25, 25, 45, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, run := range []struct {
				roller Roller
				want   int
			}{{alwaysSucceed, tt.succeed}, {alwaysFail, tt.fail}} {
				attacker := fighter("Alpha", 100, 10, ability("Test", gamedata.TriggerOnAttack, tt.mod))
				attacker.HP = 50
				defender := fighter("Beta", 100, 5, nil)
				defender.HP = tt.defenderHP

				res := NewResolver(run.roller).ResolveAttack(attacker, defender, 10)
				assert.Equal(t, run.want, res.Damage)
				if run.roller == alwaysSucceed {
					assert.Equal(t, tt.attackerHP, attacker.HP)
				}
			}
		})
	}
}

func TestResolveAttackDefenderStages(t *testing.T) {
	tests := []struct {
		name       string
		mod        gamedata.Modifier
		maxHP      int
		succeed    int
		fail       int
		attackerHP int // after the attack with the succeeding roller
	}{
		{"dodge", gamedata.Modifier{DodgeChance: 0.2}, 100, 0, 10, 50},
		{"damage reduce", gamedata.Modifier{DamageReduce: 0.15}, 100, 8, 8, 50},
		{"flat reduction", gamedata.Modifier{FlatReduction: 5}, 100, 5, 5, 50},
		{"flat reduction floors at one", gamedata.Modifier{FlatReduction: 50}, 100, 1, 1, 50},
		{"damage cap", gamedata.Modifier{DamageCap: 0.3}, 20, 6, 6, 50},
		{"parry", gamedata.Modifier{ParryChance: 0.25, ParryReduce: 0.5}, 100, 5, 10, 50},
		{"thorns", gamedata.Modifier{ThornsDamage: 0.2}, 100, 10, 10, 48},
		{"full reduction still deals one", gamedata.Modifier{DamageReduce: 1.0}, 100, 1, 1, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, run := range []struct {
				roller Roller
				want   int
			}{{alwaysSucceed, tt.succeed}, {alwaysFail, tt.fail}} {
				attacker := fighter("Alpha", 100, 10, nil)
				attacker.HP = 50
				defender := fighter("Beta", tt.maxHP, 5, ability("Test", gamedata.TriggerOnHit, tt.mod))

				res := NewResolver(run.roller).ResolveAttack(attacker, defender, 10)
				assert.Equal(t, run.want, res.Damage)
				if run.roller == alwaysSucceed {
					assert.Equal(t, tt.attackerHP, attacker.HP)
				}
			}
		})
	}
}

func TestResolveAttackDodgeShortCircuits(t *testing.T) {
	attacker := fighter("Alpha", 100, 10, nil)
	attacker.HP = 50
	defender := fighter("Beta", 100, 5, ability("Thorny Dodger", gamedata.TriggerOnHit,
		gamedata.Modifier{DodgeChance: 0.5, ThornsDamage: 1.0}))

	res := NewResolver(alwaysSucceed).ResolveAttack(attacker, defender, 10)
	assert.True(t, res.Dodged)
	assert.Equal(t, 0, res.Damage)
	assert.Equal(t, 50, attacker.HP, "thorns do not fire on a dodge")
	assert.Equal(t, []string{"Dodged!"}, res.Effects)
}

func TestResolveAttackDodgeBonus(t *testing.T) {
	attacker := fighter("Alpha", 100, 10, nil)
	defender := fighter("Beta", 100, 5, ability("Acrobat", gamedata.TriggerOnTurn, gamedata.Modifier{AcrobatStack: 0.1}))
	defender.DodgeBonus = 0.3

	res := NewResolver(fixedRoller{v: 0.25}).ResolveAttack(attacker, defender, 10)
	assert.True(t, res.Dodged)
}

func TestResolveAttackDodgeBonusIsCapped(t *testing.T) {
	attacker := fighter("Alpha", 100, 10, nil)
	defender := fighter("Beta", 100, 5, ability("Acrobat", gamedata.TriggerOnTurn, gamedata.Modifier{AcrobatStack: 0.1}))
	defender.DodgeBonus = 2.5

	res := NewResolver(fixedRoller{v: 0.95}).ResolveAttack(attacker, defender, 10)
	assert.False(t, res.Dodged)
	assert.Equal(t, 10, res.Damage)
}

func TestDodgeChance(t *testing.T) {
	tests := []struct {
		name        string
		base, bonus float64
		want        float64
	}{
		{"no bonus", 0.2, 0, 0.2},
		{"bonus stacks", 0.2, 0.3, 0.5},
		{"stack is capped", 0, 3, maxDodgeChance},
		{"high base kept", 1.0, 0.1, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, dodgeChance(tt.base, tt.bonus), 1e-9)
		})
	}
}

func TestResolveAttackGambleZeroSticks(t *testing.T) {
	attacker := fighter("Alpha", 100, 10, ability("Gambler", gamedata.TriggerOnAttack, gamedata.Modifier{GambleChance: 0.5, SelfDamage: 1, DamageGain: 20}))
	defender := fighter("Beta", 100, 5, ability("Thick Hide", gamedata.TriggerOnHit, gamedata.Modifier{FlatReduction: 5}))

	res := NewResolver(alwaysFail).ResolveAttack(attacker, defender, 10)
	assert.True(t, res.Gambled)
	assert.False(t, res.Landed())
	assert.Equal(t, 0, res.Damage)
}

func TestResolveAttackStageOrder(t *testing.T) {
	// flat 10 -> 20, crit x2 -> 40, lifesteal reads 40 -> heal 20
	attacker := fighter("Alpha", 100, 10, ability("Combo", gamedata.TriggerOnAttack,
		gamedata.Modifier{FlatDamage: 10, CritChance: 1, CritMulti: 2, LifeSteal: 0.5}))
	attacker.HP = 10
	// reduce 50% -> 20, cap 15, parry 50% -> 7, thorns 100% of 7
	defender := fighter("Beta", 50, 5, ability("Wall", gamedata.TriggerOnHit,
		gamedata.Modifier{DamageReduce: 0.5, DamageCap: 0.3, ParryChance: 1, ParryReduce: 0.5, ThornsDamage: 1}))

	res := NewResolver(alwaysSucceed).ResolveAttack(attacker, defender, 10)
	assert.Equal(t, 7, res.Damage)
	assert.Equal(t, 23, attacker.HP)
	assert.Equal(t, []string{"Critical!", "Heal 20", "Reduced!", "Capped!", "Parry!", "Thorns 7"}, res.Effects)
}

func TestUsesCapNeverExceeded(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		attacker := fighter("Alpha", 1000, 10, ability("Power Strike", gamedata.TriggerFirstAttack,
			gamedata.Modifier{DamageBonus: 0.25, Uses: 2, CritChance: 0.5}))
		defender := fighter("Beta", 1000, 5, ability("Stone Wall", gamedata.TriggerOnHit,
			gamedata.Modifier{DamageReduce: 0.25, Uses: 3, DodgeChance: 0.3}))
		resolver := NewResolver(rng)

		bonus, reduced := 0, 0
		for i := 0; i < 50; i++ {
			res := resolver.ResolveAttack(attacker, defender, 10)
			for _, e := range res.Effects {
				switch e {
				case "Power Strike!":
					bonus++
				case "Reduced!":
					reduced++
				}
			}
		}
		assert.LessOrEqual(t, bonus, 2, "seed %d", seed)
		assert.LessOrEqual(t, reduced, 3, "seed %d", seed)
		assert.Equal(t, 2, attacker.Uses[useDamageBonus])
	}
}

func TestOutgoingDamage(t *testing.T) {
	t.Run("multiplier floors", func(t *testing.T) {
		a := fighter("Alpha", 50, 10, nil)
		a.DamageMultiplier = 1.55
		got, _ := OutgoingDamage(a, fighter("Beta", 50, 5, nil))
		assert.Equal(t, 15, got)
	})

	t.Run("charge is consumed", func(t *testing.T) {
		a := fighter("Alpha", 50, 10, nil)
		a.ChargedMulti = 5
		d := fighter("Beta", 50, 5, nil)
		first, tags := OutgoingDamage(a, d)
		second, _ := OutgoingDamage(a, d)
		assert.Equal(t, 50, first)
		assert.Contains(t, tags, "Charged!")
		assert.Equal(t, 10, second)
	})

	t.Run("combo stacks per consecutive hit", func(t *testing.T) {
		a := fighter("Alpha", 50, 10, ability("Combo Master", gamedata.TriggerOnAttack, gamedata.Modifier{StackingDamage: 3}))
		a.ConsecutiveHits = 2
		got, _ := OutgoingDamage(a, fighter("Beta", 50, 5, nil))
		assert.Equal(t, 16, got)
	})

	t.Run("one punch then weaker", func(t *testing.T) {
		a := fighter("Alpha", 50, 10, ability("One Punch", gamedata.TriggerFirstAttack, gamedata.Modifier{PunchMulti: 5, AfterMulti: 0.5}))
		d := fighter("Beta", 500, 5, nil)
		first, _ := OutgoingDamage(a, d)
		a.HasAttacked = true
		second, _ := OutgoingDamage(a, d)
		assert.Equal(t, 50, first)
		assert.Equal(t, 5, second)
	})

	t.Run("charge every third attack", func(t *testing.T) {
		a := fighter("Alpha", 50, 10, ability("Charge Up", gamedata.TriggerOnAttack, gamedata.Modifier{ChargeEvery: 3, ChargeMulti: 2}))
		d := fighter("Beta", 500, 5, nil)
		var got []int
		for i := 0; i < 3; i++ {
			dmg, _ := OutgoingDamage(a, d)
			got = append(got, dmg)
			a.AttackCount++
		}
		assert.Equal(t, []int{10, 10, 20}, got)
	})

	t.Run("silenced ability is ignored", func(t *testing.T) {
		a := fighter("Alpha", 50, 10, ability("Overwhelm", gamedata.TriggerOnAttack, gamedata.Modifier{FullHPBonus: 1}))
		a.SilencedTurns = 1
		got, _ := OutgoingDamage(a, fighter("Beta", 50, 5, nil))
		assert.Equal(t, 10, got)
	})
}
