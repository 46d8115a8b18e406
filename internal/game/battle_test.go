package game

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/gachabattle/internal/combat"
	"github.com/samdwyer/gachabattle/internal/entity"
	"github.com/samdwyer/gachabattle/internal/gamedata"
	"github.com/samdwyer/gachabattle/internal/telemetry"
)

type fixedRoller struct{ v float64 }

func (r fixedRoller) Float64() float64 { return r.v }
func (r fixedRoller) Intn(n int) int   { return int(r.v * float64(n)) }

var (
	alwaysSucceed = fixedRoller{0}
	alwaysFail    = fixedRoller{0.999999}
	midRange      = fixedRoller{0.5}
)

func testDeps(r fixedRoller) Deps {
	return Deps{
		Rng:    r,
		Tracer: telemetry.NoopTracer(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func ability(name string, trigger gamedata.Trigger, mod gamedata.Modifier) *gamedata.AbilityDef {
	return &gamedata.AbilityDef{Name: name, Category: gamedata.CategorySpecial, Trigger: trigger, Modifier: mod}
}

func newBattle(t *testing.T, r fixedRoller, player, enemy entity.Team) *Battle {
	t.Helper()
	b, err := NewBattle(context.Background(), player, enemy, testDeps(r))
	require.NoError(t, err)
	return b
}

func TestBattleNoModifiersEndsInVictory(t *testing.T) {
	alpha := entity.NewFighter("p1", "Alpha", 50, 15, nil)
	beta := entity.NewFighter("e1", "Beta", 30, 10, nil)
	b := newBattle(t, midRange, entity.Team{alpha}, entity.Team{beta})

	outcome, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseVictory, outcome)

	state := b.Snapshot()
	assert.Equal(t, 2, state.Turn)
	assert.Equal(t, PhaseVictory, state.Outcome)
	assert.Equal(t, []string{
		"Battle begins!",
		"Alpha deals 15 damage to Beta!",
		"Beta deals 10 damage to Alpha!",
		"Alpha deals 15 damage to Beta!",
		"Beta is defeated!",
		"Victory!",
	}, state.Log)
	assert.Equal(t, 40, alpha.HP)
}

func TestBattleStepAfterEnd(t *testing.T) {
	b := newBattle(t, midRange,
		entity.Team{entity.NewFighter("p1", "Alpha", 50, 100, nil)},
		entity.Team{entity.NewFighter("e1", "Beta", 30, 10, nil)})

	done, err := b.Step(context.Background())
	require.NoError(t, err)
	assert.True(t, done)

	done, err = b.Step(context.Background())
	assert.ErrorIs(t, err, ErrBattleOver)
	assert.True(t, done)

	_, err = b.Run(context.Background())
	assert.ErrorIs(t, err, ErrBattleOver)
}

func TestNewBattleRejectsBadTeams(t *testing.T) {
	alive := func() *entity.Fighter { return entity.NewFighter("a", "A", 10, 1, nil) }
	dead := entity.NewFighter("d", "D", 10, 1, nil)
	dead.HP = 0

	tests := []struct {
		name          string
		player, enemy entity.Team
		want          error
	}{
		{"empty player", entity.Team{}, entity.Team{alive()}, ErrEmptyTeam},
		{"empty enemy", entity.Team{alive()}, nil, ErrEmptyTeam},
		{"dead player", entity.Team{dead}, entity.Team{alive()}, ErrNoLivingFighters},
		{"dead enemy", entity.Team{alive()}, entity.Team{dead}, ErrNoLivingFighters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBattle(context.Background(), tt.player, tt.enemy, testDeps(midRange))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBattleRejectsReentry(t *testing.T) {
	b := newBattle(t, midRange,
		entity.Team{entity.NewFighter("p1", "Alpha", 50, 15, nil)},
		entity.Team{entity.NewFighter("e1", "Beta", 30, 10, nil)})

	b.running.Store(true)
	_, err := b.Step(context.Background())
	assert.ErrorIs(t, err, ErrBattleInProgress)
	_, err = b.Run(context.Background())
	assert.ErrorIs(t, err, ErrBattleInProgress)
	assert.Equal(t, 0, b.Snapshot().Turn)

	b.running.Store(false)
	_, err = b.Step(context.Background())
	assert.NoError(t, err)
}

func TestBattleCancellation(t *testing.T) {
	b := newBattle(t, midRange,
		entity.Team{entity.NewFighter("p1", "Alpha", 500, 1, nil)},
		entity.Team{entity.NewFighter("e1", "Beta", 500, 1, nil)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := b.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, PhaseBattle, outcome)
	assert.Equal(t, 0, b.Snapshot().Turn)
}

func TestBattleTurnLimit(t *testing.T) {
	deps := testDeps(midRange)
	deps.MaxTurns = 3
	b, err := NewBattle(context.Background(),
		entity.Team{entity.NewFighter("p1", "Alpha", 500, 1, nil)},
		entity.Team{entity.NewFighter("e1", "Beta", 500, 1, nil)},
		deps)
	require.NoError(t, err)

	outcome, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseDefeat, outcome)

	state := b.Snapshot()
	assert.Equal(t, 3, state.Turn)
	assert.Contains(t, state.Log, "The battle drags on for 3 turns and the team is exhausted.")
}

func TestBattleExtraAttacksAreBounded(t *testing.T) {
	flurry := entity.NewFighter("p1", "Flurry", 100, 1,
		ability("Flurry", gamedata.TriggerTurnManipulation, gamedata.Modifier{ExtraTurnChance: 1}))
	dummy := entity.NewFighter("e1", "Dummy", 1000, 1, nil)
	b := newBattle(t, alwaysSucceed, entity.Team{flurry}, entity.Team{dummy})

	_, err := b.Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1+maxExtraAttacksPerTurn, flurry.AttackCount)
	assert.Equal(t, 1000-(1+maxExtraAttacksPerTurn), dummy.HP)
}

func TestBattleDoubleAttackOncePerTurn(t *testing.T) {
	twin := entity.NewFighter("p1", "Twin", 100, 2,
		ability("Twin Strike", gamedata.TriggerOnAttack, gamedata.Modifier{DoubleAttack: true}))
	dummy := entity.NewFighter("e1", "Dummy", 1000, 1, nil)
	b := newBattle(t, alwaysFail, entity.Team{twin}, entity.Team{dummy})

	for range 3 {
		_, err := b.Step(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 6, twin.AttackCount)
	assert.Contains(t, b.Snapshot().Log, "Twin strikes twice!")
}

func TestBattleDamageOverTimeDeathSkipsAttack(t *testing.T) {
	alpha := entity.NewFighter("p1", "Alpha", 12, 1, nil)
	viper := entity.NewFighter("e1", "Viper", 100, 1,
		ability("Venom", gamedata.TriggerOnAttack, gamedata.Modifier{PoisonDamage: 20, PoisonDuration: 3}))
	b := newBattle(t, alwaysFail, entity.Team{alpha}, entity.Team{viper})

	outcome, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseDefeat, outcome)

	log := b.Snapshot().Log
	require.GreaterOrEqual(t, len(log), 3)
	assert.Equal(t, []string{
		"Alpha takes 11 poison damage!",
		"Alpha is defeated!",
		"Defeat!",
	}, log[len(log)-3:])
	assert.Equal(t, 99, viper.HP, "Alpha never attacks on the turn it dies")
}

func TestBattleSurvivalFiresOnce(t *testing.T) {
	alpha := entity.NewFighter("p1", "Alpha", 100, 100, nil)
	beta := entity.NewFighter("e1", "Beta", 30, 1,
		ability("Undying Will", gamedata.TriggerOnFatalHit, gamedata.Modifier{Undying: true}))
	b := newBattle(t, alwaysFail, entity.Team{alpha}, entity.Team{beta})

	outcome, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseVictory, outcome)

	log := b.Snapshot().Log
	assert.Contains(t, log, "Beta survives with 1 HP!")
	assert.Equal(t, 1, count(log, "Beta is defeated!"))
	assert.Equal(t, 2, b.Snapshot().Turn)
}

func TestBattleAdvancesToNextFighter(t *testing.T) {
	alpha := entity.NewFighter("p1", "Alpha", 100, 20, nil)
	first := entity.NewFighter("e1", "First", 10, 1, nil)
	second := entity.NewFighter("e2", "Second", 50, 1, nil)
	b := newBattle(t, alwaysFail, entity.Team{alpha}, entity.Team{first, second})

	done, err := b.Step(context.Background())
	require.NoError(t, err)
	assert.False(t, done)

	state := b.Snapshot()
	assert.Equal(t, 1, state.EnemyIndex)
	assert.Equal(t, "Second", state.Enemy[state.EnemyIndex].Name)
	assert.Equal(t, 100, alpha.HP, "the fallen enemy does not strike back")
}

func TestBattleMutualDefeatFavoursEnemy(t *testing.T) {
	alpha := entity.NewFighter("p1", "Alpha", 20, 100, nil)
	martyr := entity.NewFighter("e1", "Martyr", 30, 1,
		ability("Last Words", gamedata.TriggerOnDeath, gamedata.Modifier{DeathDamage: 1.0}))
	b := newBattle(t, alwaysFail, entity.Team{alpha}, entity.Team{martyr})

	outcome, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseDefeat, outcome)
	assert.Equal(t, []string{
		"Battle begins!",
		"Alpha deals 30 damage to Martyr!",
		"Martyr is defeated!",
		"Martyr's last words deal 20 damage to Alpha!",
		"Alpha is defeated!",
		"Defeat!",
	}, b.Snapshot().Log)
}

func TestBattleSnapshotIsolation(t *testing.T) {
	alpha := entity.NewFighter("p1", "Alpha", 50, 15, nil)
	b := newBattle(t, midRange, entity.Team{alpha}, entity.Team{entity.NewFighter("e1", "Beta", 30, 10, nil)})

	snap := b.Snapshot()
	snap.Player[0].HP = 1
	snap.Log[0] = "changed"

	assert.Equal(t, 50, alpha.HP)
	assert.Equal(t, "Battle begins!", b.Snapshot().Log[0])
}

func TestBattleStartEffectsAreLogged(t *testing.T) {
	rally := ability("Rally Cry", gamedata.TriggerBattleStart, gamedata.Modifier{TeamAttackBuff: 0.15})
	a := entity.NewFighter("p1", "A", 30, 100, rally)
	c := entity.NewFighter("p2", "C", 30, 100, rally)
	b := newBattle(t, alwaysFail, entity.Team{a, c}, entity.Team{entity.NewFighter("e1", "Foe", 30, 5, nil)})

	log := b.Snapshot().Log
	assert.Equal(t, "Battle begins!", log[0])
	assert.Greater(t, len(log), 1)
	assert.Equal(t, 130, a.Attack)
	assert.Equal(t, 130, c.Attack)
}

func count(lines []string, s string) int {
	n := 0
	for _, l := range lines {
		if l == s {
			n++
		}
	}
	return n
}

// TestBattleHPStaysInBounds plays seeded battles across the whole catalog and
// checks every fighter after every step.
func TestBattleHPStaysInBounds(t *testing.T) {
	catalog := gamedata.MustLoadAbilityRegistry()
	abilities := catalog.All()
	n := len(abilities)
	require.NotZero(t, n)

	checkTeams := func(t *testing.T, turn int, teams ...entity.Team) {
		t.Helper()
		for _, team := range teams {
			for _, f := range team {
				if f.HP < 0 || f.HP > f.MaxHP || f.MaxHP < 1 {
					t.Fatalf("turn %d: %s (%s) has HP %d/%d", turn, f.Name, gamedata.DisplayFor(f.Ability).Name, f.HP, f.MaxHP)
				}
			}
		}
	}

	for i := range n {
		for k := range 5 {
			picks := [4]int{i, (i*37 + k*53 + 1) % n, (i*11 + k*29 + 7) % n, (i*71 + k*13 + 3) % n}
			t.Run(fmt.Sprintf("%d-%d", abilities[i].ID, k), func(t *testing.T) {
				fighters := make([]*entity.Fighter, len(picks))
				for j, idx := range picks {
					a := catalog.GetByID(abilities[idx].ID)
					fighters[j] = entity.NewFighter(fmt.Sprintf("f%d", j), a.Name, 40+10*j, 8+3*j, a)
				}
				player := entity.Team{fighters[0], fighters[1]}
				enemy := entity.Team{fighters[2], fighters[3]}

				deps := testDeps(midRange)
				deps.Rng = combat.NewRoller(int64(i*5 + k + 1))
				b, err := NewBattle(context.Background(), player, enemy, deps)
				require.NoError(t, err)
				checkTeams(t, 0, player, enemy)

				for turn := 1; ; turn++ {
					done, err := b.Step(context.Background())
					require.NoError(t, err)
					checkTeams(t, turn, player, enemy)
					if done {
						break
					}
				}
				assert.True(t, b.Outcome().Terminal())
			})
		}
	}
}
