package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/gachabattle/internal/combat"
	"github.com/samdwyer/gachabattle/internal/entity"
	"github.com/samdwyer/gachabattle/internal/telemetry"
)

// maxExtraAttacksPerTurn bounds the follow-up attacks a fighter may chain
// after its normal attack in one turn.
const maxExtraAttacksPerTurn = 4

var (
	ErrBattleInProgress = errors.New("game: battle already in progress")
	ErrBattleOver       = errors.New("game: battle is over")
	ErrEmptyTeam        = errors.New("game: team has no fighters")
	ErrNoLivingFighters = errors.New("game: team has no living fighters")
)

// Deps are the collaborators a battle needs. Zero values get defaults.
type Deps struct {
	Rng      combat.Roller
	Tracer   trace.Tracer
	Logger   *slog.Logger
	MaxTurns int
}

func (d Deps) withDefaults() Deps {
	if d.Rng == nil {
		d.Rng = combat.NewRoller(0)
	}
	if d.Tracer == nil {
		d.Tracer = telemetry.Tracer("battle")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.MaxTurns <= 0 {
		d.MaxTurns = DefaultMaxTurns
	}
	return d
}

// Battle is one battle between two teams. Each call to Step advances it by
// one turn cycle; the caller owns any pacing between steps.
type Battle struct {
	deps     Deps
	resolver *combat.Resolver
	log      *slog.Logger

	running  atomic.Bool
	mu       sync.RWMutex
	state    BattleState
	defeated map[*entity.Fighter]bool
}

// NewBattle validates both teams, resets their battle state and applies every
// battle-start effect. The battle takes ownership of the fighters.
func NewBattle(ctx context.Context, player, enemy entity.Team, deps Deps) (*Battle, error) {
	for _, t := range []entity.Team{player, enemy} {
		if len(t) == 0 {
			return nil, ErrEmptyTeam
		}
		if t.Exhausted() {
			return nil, ErrNoLivingFighters
		}
	}
	deps = deps.withDefaults()

	id := uuid.NewString()
	b := &Battle{
		deps:     deps,
		resolver: combat.NewResolver(deps.Rng),
		log:      deps.Logger.With("battle_id", id),
		defeated: make(map[*entity.Fighter]bool),
		state: BattleState{
			ID:     id,
			Phase:  PhaseBattle,
			Player: player,
			Enemy:  enemy,
			Log:    []string{"Battle begins!"},
		},
	}

	_, span := deps.Tracer.Start(ctx, "battle.start")
	span.SetAttributes(
		attribute.String("battle.id", id),
		attribute.Int("player_size", len(player)),
		attribute.Int("enemy_size", len(enemy)),
	)
	defer span.End()

	for _, t := range []entity.Team{player, enemy} {
		for _, f := range t {
			if f != nil {
				f.ResetBattleState()
			}
		}
	}
	b.append(combat.ApplyBattleStart(player, enemy, deps.Rng)...)
	b.state.PlayerIndex = activeIndex(player)
	b.state.EnemyIndex = activeIndex(enemy)

	b.log.Info("battle started", "player_size", len(player), "enemy_size", len(enemy))
	return b, nil
}

// ID returns the battle's identifier.
func (b *Battle) ID() string {
	return b.state.ID
}

// Snapshot returns a deep copy of the current state.
func (b *Battle) Snapshot() BattleState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state.Snapshot()
}

// Outcome returns the terminal phase, or PhaseBattle while running.
func (b *Battle) Outcome() Phase {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state.Phase
}

// Step runs one turn cycle and reports whether the battle has ended.
// Stepping a finished battle returns ErrBattleOver; a concurrent Step or Run
// returns ErrBattleInProgress.
func (b *Battle) Step(ctx context.Context) (bool, error) {
	if !b.running.CompareAndSwap(false, true) {
		return false, ErrBattleInProgress
	}
	defer b.running.Store(false)
	return b.step(ctx)
}

// Run steps until the battle ends or ctx is cancelled. Cancellation is seen
// at turn boundaries only.
func (b *Battle) Run(ctx context.Context) (Phase, error) {
	if !b.running.CompareAndSwap(false, true) {
		return PhaseBattle, ErrBattleInProgress
	}
	defer b.running.Store(false)

	for {
		done, err := b.step(ctx)
		if err != nil {
			if !errors.Is(err, ErrBattleOver) {
				b.log.Info("battle abandoned", "err", err)
			}
			return b.Outcome(), err
		}
		if done {
			return b.Outcome(), nil
		}
	}
}

func (b *Battle) step(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &b.state
	if s.Phase.Terminal() {
		return true, ErrBattleOver
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if b.settle(ctx) {
		return true, nil
	}

	if s.Turn >= b.deps.MaxTurns {
		b.append(fmt.Sprintf("The battle drags on for %d turns and the team is exhausted.", s.Turn))
		b.finish(ctx, PhaseDefeat)
		return true, nil
	}
	s.Turn++

	player, _ := s.Player.Active()
	enemy, _ := s.Enemy.Active()

	ctx, span := b.deps.Tracer.Start(ctx, "battle.turn")
	defer span.End()
	span.SetAttributes(
		attribute.Int("turn", s.Turn),
		attribute.String("player", player.Name),
		attribute.String("enemy", enemy.Name),
	)

	playerHP, enemyHP := player.HP, enemy.HP
	b.append(combat.TurnStart(player, b.deps.Rng)...)
	b.append(combat.TurnStart(enemy, b.deps.Rng)...)

	if !player.IsAlive() || !enemy.IsAlive() {
		if !player.IsAlive() {
			b.handleLethal(player, s.Player, s.Enemy, playerHP)
		}
		if !enemy.IsAlive() {
			b.handleLethal(enemy, s.Enemy, s.Player, enemyHP)
		}
		return b.settle(ctx), nil
	}

	b.takeTurn(player, enemy, s.Player, s.Enemy)
	if player.IsAlive() && enemy.IsAlive() {
		b.takeTurn(enemy, player, s.Enemy, s.Player)
	}

	span.SetAttributes(
		attribute.Int("player_hp", player.HP),
		attribute.Int("enemy_hp", enemy.HP),
	)
	return b.settle(ctx), nil
}

// settle advances both active indices and ends the battle once a team is
// exhausted. The player side is checked first.
func (b *Battle) settle(ctx context.Context) bool {
	s := &b.state
	s.PlayerIndex = activeIndex(s.Player)
	s.EnemyIndex = activeIndex(s.Enemy)

	switch {
	case s.Player.Exhausted():
		b.finish(ctx, PhaseDefeat)
	case s.Enemy.Exhausted():
		b.finish(ctx, PhaseVictory)
	default:
		return false
	}
	return true
}

// takeTurn consumes actor's turn: a pending skip, stun or freeze uses it up,
// otherwise actor attacks and may chain a bounded number of extra attacks.
func (b *Battle) takeTurn(actor, target *entity.Fighter, own, opp entity.Team) {
	actor.TurnsTaken++
	actor.DoubleAttackUsed = false

	switch {
	case actor.SkipTurns > 0:
		actor.SkipTurns--
		b.append(fmt.Sprintf("%s is preparing...", actor.Name))
		return
	case actor.Stunned:
		actor.Stunned = false
		b.append(fmt.Sprintf("%s is stunned!", actor.Name))
		return
	case actor.Frozen > 0:
		actor.Frozen--
		b.append(fmt.Sprintf("%s is frozen!", actor.Name))
		return
	}
	if mod := actor.Modifier(); mod != nil && mod.AttackEveryNTurns > 1 && (actor.TurnsTaken-1)%mod.AttackEveryNTurns != 0 {
		b.append(fmt.Sprintf("%s is winding up...", actor.Name))
		return
	}

	b.attack(actor, target, own, opp)
	for range maxExtraAttacksPerTurn {
		if !actor.IsAlive() || !target.IsAlive() {
			return
		}
		msg, ok := b.extraAttack(actor)
		if !ok {
			return
		}
		b.append(msg)
		b.attack(actor, target, own, opp)
	}
}

// extraAttack reports whether actor earns another attack right now, and
// consumes whatever granted it.
func (b *Battle) extraAttack(actor *entity.Fighter) (string, bool) {
	if actor.ExtraAttacks > 0 {
		actor.ExtraAttacks--
		return fmt.Sprintf("%s attacks again!", actor.Name), true
	}
	mod := actor.Modifier()
	if mod == nil {
		return "", false
	}
	switch {
	case mod.DoubleAttack && !actor.DoubleAttackUsed:
		actor.DoubleAttackUsed = true
		return fmt.Sprintf("%s strikes twice!", actor.Name), true
	case combat.Chance(b.deps.Rng, mod.ExtraTurnChance):
		return fmt.Sprintf("%s takes an extra turn!", actor.Name), true
	case combat.Chance(b.deps.Rng, mod.InstantReattackChance):
		return fmt.Sprintf("%s attacks again instantly!", actor.Name), true
	case combat.Chance(b.deps.Rng, mod.ChainAttackChance):
		return fmt.Sprintf("%s chains another attack!", actor.Name), true
	}
	return "", false
}

// attack resolves one full attack from attacker on defender, including kill
// and survival checks on both sides.
func (b *Battle) attack(attacker, defender *entity.Fighter, own, opp entity.Team) {
	attackerHP, defenderHP := attacker.HP, defender.HP

	base, tags := combat.OutgoingDamage(attacker, defender)
	result := b.resolver.ResolveAttack(attacker, defender, base)
	hit := combat.ApplyHit(attacker, defender, result)

	attacker.HasAttacked = true
	attacker.AttackCount++
	if hit.Landed() {
		attacker.ConsecutiveHits++
	} else {
		attacker.ConsecutiveHits = 0
	}

	if tags = append(tags, result.Effects...); len(tags) > 0 {
		b.append(fmt.Sprintf("%s: %s", attacker.Name, strings.Join(tags, " ")))
	}
	b.append(hit.Messages...)

	if hit.Landed() {
		b.append(combat.ApplyOnHit(attacker, defender, b.deps.Rng)...)
		b.append(combat.ApplyAfterHit(defender, attacker, b.deps.Rng)...)
	}

	if !defender.IsAlive() && !b.handleLethal(defender, opp, own, defenderHP) && attacker.IsAlive() {
		b.append(combat.ApplyOnKill(attacker, defender, own.Allies(attacker), hit.Overkill)...)
	}
	if !attacker.IsAlive() {
		b.handleLethal(attacker, own, opp, attackerHP)
	}
}

// handleLethal runs the survival and revival checks for a fighter whose HP
// just reached zero and, if neither fires, finalises the death. before is the
// fighter's HP prior to the lethal event. It reports whether f is alive.
func (b *Battle) handleLethal(f *entity.Fighter, own, opp entity.Team, before int) bool {
	if f.IsAlive() {
		return true
	}
	if b.defeated[f] {
		return false
	}

	out := combat.CheckLethal(f, max(0, before-f.HP))
	if out.Message != "" {
		b.append(out.Message)
	}
	if out.Alive() {
		return true
	}

	b.defeated[f] = true
	b.append(fmt.Sprintf("%s is defeated!", f.Name))

	allies := own.Allies(f)
	opponent, _ := opp.Active()
	opponentHP := 0
	if opponent != nil {
		opponentHP = opponent.HP
	}
	b.append(combat.ApplyOnDeath(f, allies, opponent)...)
	b.append(combat.ApplyAllyDeath(allies)...)

	if opponent != nil && !opponent.IsAlive() {
		b.handleLethal(opponent, opp, own, opponentHP)
	}
	return false
}

func (b *Battle) finish(ctx context.Context, outcome Phase) {
	s := &b.state
	s.Phase = outcome
	s.Outcome = outcome
	if outcome == PhaseVictory {
		b.append("Victory!")
	} else {
		b.append("Defeat!")
	}

	_, span := b.deps.Tracer.Start(ctx, "battle.end")
	span.SetAttributes(
		attribute.String("outcome", outcome.String()),
		attribute.Int("turns_taken", s.Turn),
		attribute.Int("player_hp_remaining", TotalHP(s.Player)),
		attribute.Int("enemy_hp_remaining", TotalHP(s.Enemy)),
	)
	span.End()

	b.log.Info("battle finished", "outcome", outcome, "turns", s.Turn)
}

func (b *Battle) append(lines ...string) {
	b.state.Log = append(b.state.Log, lines...)
}

func activeIndex(t entity.Team) int {
	_, i := t.Active()
	return i
}
