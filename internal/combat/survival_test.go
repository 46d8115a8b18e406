package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samdwyer/gachabattle/internal/gamedata"
)

func TestCheckLethalUndying(t *testing.T) {
	attacker := fighter("Alpha", 100, 50, nil)
	defender := fighter("Beta", 100, 5, ability("Undying Will", gamedata.TriggerOnFatalHit, gamedata.Modifier{Undying: true}))
	defender.HP = 5

	hit := ApplyHit(attacker, defender, AttackResult{Damage: 50})
	out := CheckLethal(defender, hit.Dealt)
	assert.True(t, out.Survives)
	assert.Equal(t, 1, out.NewHP)
	assert.Equal(t, 1, defender.HP)
	assert.True(t, defender.UsedSurvival)
	assert.NotEmpty(t, out.Message)

	hit = ApplyHit(attacker, defender, AttackResult{Damage: 50})
	out = CheckLethal(defender, hit.Dealt)
	assert.False(t, out.Alive())
	assert.False(t, defender.IsAlive())
}

func TestCheckLethalRevive(t *testing.T) {
	f := fighter("Phoenix", 40, 5, ability("Refuse to Die", gamedata.TriggerOnDeath, gamedata.Modifier{RevivePercent: 0.25}))
	f.HP = 0

	out := CheckLethal(f, 10)
	assert.True(t, out.Revives)
	assert.Equal(t, 10, out.RevivedHP)
	assert.Equal(t, 10, f.HP)

	f.HP = 0
	assert.False(t, CheckLethal(f, 10).Alive())
}

func TestCheckLethalSurviveThenRevive(t *testing.T) {
	f := fighter("Both", 100, 5, ability("Both", gamedata.TriggerOnFatalHit, gamedata.Modifier{SurviveOnce: true, RevivePercent: 0.5}))

	f.HP = 0
	first := CheckLethal(f, 20)
	assert.True(t, first.Survives)
	assert.False(t, first.Revives, "only one fires per event")

	f.HP = 0
	second := CheckLethal(f, 20)
	assert.True(t, second.Revives)
	assert.Equal(t, 50, f.HP)

	f.HP = 0
	assert.False(t, CheckLethal(f, 20).Alive())
}

func TestCheckLethalInstinct(t *testing.T) {
	f := fighter("Instinct", 100, 5, ability("Instinct", gamedata.TriggerOnFatalHit, gamedata.Modifier{InstinctDodge: true}))
	f.HP = 30
	dealt := f.TakeDamage(80)

	out := CheckLethal(f, dealt)
	assert.True(t, out.Survives)
	assert.Equal(t, 30, f.HP, "HP restored to its pre-hit value")
}

func TestCheckLethalNoAbility(t *testing.T) {
	f := fighter("Plain", 100, 5, nil)
	f.HP = 0
	out := CheckLethal(f, 10)
	assert.False(t, out.Alive())
	assert.Empty(t, out.Message)

	silenced := fighter("Silenced", 100, 5, ability("Guardian Angel", gamedata.TriggerOnFatalHit, gamedata.Modifier{Guardian: true}))
	silenced.SilencedTurns = 2
	silenced.HP = 0
	assert.False(t, CheckLethal(silenced, 10).Alive())
}

func TestCheckLethalOnLivingFighter(t *testing.T) {
	f := fighter("Alive", 100, 5, ability("Undying Will", gamedata.TriggerOnFatalHit, gamedata.Modifier{Undying: true}))
	out := CheckLethal(f, 10)
	assert.True(t, out.Survives)
	assert.False(t, f.UsedSurvival, "no flag is consumed for a non-lethal event")
}
