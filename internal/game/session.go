package game

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/samdwyer/gachabattle/internal/collection"
	"github.com/samdwyer/gachabattle/internal/combat"
	"github.com/samdwyer/gachabattle/internal/entity"
	"github.com/samdwyer/gachabattle/internal/gamedata"
	"github.com/samdwyer/gachabattle/internal/stats"
)

// maxEnemies caps the enemy team regardless of the player's team size.
const maxEnemies = 4

var (
	ErrTeamTooLarge     = errors.New("game: team too large")
	ErrDuplicateFighter = errors.New("game: fighter picked twice")
	ErrInvalidPhase     = errors.New("game: action not allowed in this phase")
)

// Session walks a player through idle, team selection, one battle and its
// result. It allows at most one active battle at a time.
type Session struct {
	mu     sync.Mutex
	cfg    Config
	deps   Deps
	store  *collection.Store
	gen    *stats.Generator
	phase  Phase
	team   []string
	battle *Battle
}

// NewSession creates a session over a collection. Fighter stats are generated
// from catalog the first time an item fights and are stored on the item.
func NewSession(store *collection.Store, catalog *gamedata.AbilityRegistry, cfg Config, deps Deps) *Session {
	cfg = cfg.withDefaults()
	if deps.Rng == nil {
		deps.Rng = combat.NewRoller(cfg.Seed)
	}
	if deps.MaxTurns <= 0 {
		deps.MaxTurns = cfg.MaxTurns
	}
	deps = deps.withDefaults()

	return &Session{
		cfg:   cfg,
		deps:  deps,
		store: store,
		gen:   stats.NewGenerator(catalog, deps.Rng),
		phase: PhaseIdle,
	}
}

// Phase returns the current session phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Team returns the selected inventory IDs.
func (s *Session) Team() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.team)
}

// Battle returns the current or last battle, or nil.
func (s *Session) Battle() *Battle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battle
}

// Begin moves from idle to team selection.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseIdle {
		return fmt.Errorf("%w: begin from %s", ErrInvalidPhase, s.phase)
	}
	s.phase = PhaseTeamSelect
	s.team = nil
	return nil
}

// SelectTeam sets the player's team from distinct inventory IDs.
func (s *Session) SelectTeam(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseTeamSelect {
		return fmt.Errorf("%w: select team in %s", ErrInvalidPhase, s.phase)
	}
	switch {
	case len(ids) == 0:
		return ErrEmptyTeam
	case len(ids) > s.cfg.MaxTeamSize:
		return fmt.Errorf("%w: %d > %d", ErrTeamTooLarge, len(ids), s.cfg.MaxTeamSize)
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicateFighter, id)
		}
		seen[id] = true
		if _, err := s.store.Item(id); err != nil {
			return err
		}
	}
	s.team = slices.Clone(ids)
	s.deps.Logger.Debug("team selected", "size", len(ids))
	return nil
}

// Start builds both teams and begins the battle. Player stats come from the
// inventory, generated and stored on first use.
func (s *Session) Start(ctx context.Context) (*Battle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseBattle {
		return nil, ErrBattleInProgress
	}
	if s.phase != PhaseTeamSelect {
		return nil, fmt.Errorf("%w: start from %s", ErrInvalidPhase, s.phase)
	}
	if len(s.team) == 0 {
		return nil, ErrEmptyTeam
	}

	player, err := s.playerTeam()
	if err != nil {
		return nil, err
	}
	b, err := NewBattle(ctx, player, s.enemyTeam(len(player)), s.deps)
	if err != nil {
		return nil, err
	}
	s.battle = b
	s.phase = PhaseBattle
	return b, nil
}

// Finish records the outcome of a finished battle.
func (s *Session) Finish() (Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseBattle || s.battle == nil {
		return s.phase, fmt.Errorf("%w: finish from %s", ErrInvalidPhase, s.phase)
	}
	outcome := s.battle.Outcome()
	if !outcome.Terminal() {
		return s.phase, ErrBattleInProgress
	}
	s.phase = outcome
	return outcome, nil
}

// Reset abandons any battle and returns to idle.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseIdle
	s.team = nil
	s.battle = nil
}

// Play runs a whole battle for the given team and returns its final state.
func (s *Session) Play(ctx context.Context, ids []string) (BattleState, error) {
	if s.Phase() == PhaseIdle {
		if err := s.Begin(); err != nil {
			return BattleState{}, err
		}
	}
	if err := s.SelectTeam(ids); err != nil {
		return BattleState{}, err
	}
	b, err := s.Start(ctx)
	if err != nil {
		return BattleState{}, err
	}
	if _, err := b.Run(ctx); err != nil {
		return b.Snapshot(), err
	}
	if _, err := s.Finish(); err != nil {
		return b.Snapshot(), err
	}
	return b.Snapshot(), nil
}

func (s *Session) playerTeam() (entity.Team, error) {
	team := make(entity.Team, 0, len(s.team))
	for _, id := range s.team {
		rec, err := s.store.EnsureStats(id, s.gen.Record)
		if err != nil {
			return nil, err
		}
		item, err := s.store.Item(id)
		if err != nil {
			return nil, err
		}
		st := s.gen.Rehydrate(rec)
		team = append(team, newFighter(item.ID, item, st))
	}
	return team, nil
}

// enemyTeam rolls count enemies (clamped to [1, 4]) from every item in the
// eligible groups, or from the player's inventory when no group qualifies.
func (s *Session) enemyTeam(count int) entity.Team {
	count = min(max(count, 1), maxEnemies)
	groups := s.store.Groups()

	var pool []collection.CollectedItem
	for _, g := range groups {
		if !g.Eligible() {
			continue
		}
		for _, it := range g.Items {
			pool = append(pool, collection.CollectedItem{
				ID:          it.ID,
				Title:       it.Title,
				GroupName:   g.Name,
				GroupRarity: g.Rarity,
				ImageRef:    it.ImageRef,
			})
		}
	}
	if len(pool) == 0 {
		pool = s.store.Inventory()
		s.deps.Logger.Debug("no eligible groups, drawing enemies from inventory", "pool", len(pool))
	}
	if len(pool) == 0 {
		return nil
	}

	team := make(entity.Team, 0, count)
	for range count {
		pick := pool[s.deps.Rng.Intn(len(pool))]
		team = append(team, newFighter(uuid.NewString(), pick, s.gen.Generate(pick, groups)))
	}
	return team
}

func newFighter(id string, item collection.CollectedItem, st stats.Stats) *entity.Fighter {
	f := entity.NewFighter(id, item.Title, st.MaxHP, st.Attack, st.Ability)
	f.ImageRef = item.ImageRef
	f.GroupName = item.GroupName
	return f
}
