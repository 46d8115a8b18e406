// Package game runs battles between two teams and the session flow around
// them: team selection, the battle itself and its result.
package game

import (
	"slices"

	"github.com/samdwyer/gachabattle/internal/entity"
)

// Phase is a session or battle state.
type Phase int

const (
	// PhaseIdle - no team chosen yet
	PhaseIdle Phase = iota
	// PhaseTeamSelect - the player is picking fighters
	PhaseTeamSelect
	// PhaseBattle - a battle is running
	PhaseBattle
	// PhaseVictory - the enemy team has been defeated
	PhaseVictory
	// PhaseDefeat - the player team has been defeated
	PhaseDefeat
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTeamSelect:
		return "team_select"
	case PhaseBattle:
		return "battle"
	case PhaseVictory:
		return "victory"
	case PhaseDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase ends a battle.
func (p Phase) Terminal() bool {
	return p == PhaseVictory || p == PhaseDefeat
}

// BattleState holds everything the UI needs to draw a battle.
type BattleState struct {
	ID          string
	Phase       Phase
	Player      entity.Team
	Enemy       entity.Team
	PlayerIndex int // Index of the player's active fighter
	EnemyIndex  int // Index of the enemy's active fighter
	Turn        int
	Log         []string // Append-only
	Outcome     Phase    // PhaseVictory or PhaseDefeat once terminal
}

// Snapshot returns a deep copy that shares nothing with the live battle.
func (s *BattleState) Snapshot() BattleState {
	c := *s
	c.Player = s.Player.Clone()
	c.Enemy = s.Enemy.Clone()
	c.Log = slices.Clone(s.Log)
	return c
}

// TotalHP sums the current HP of a team.
func TotalHP(t entity.Team) int {
	total := 0
	for _, f := range t {
		if f != nil && f.HP > 0 {
			total += f.HP
		}
	}
	return total
}
