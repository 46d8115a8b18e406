package combat

import (
	"fmt"

	"github.com/samdwyer/gachabattle/internal/entity"
)

// LethalOutcome reports how a lethal event was resolved.
type LethalOutcome struct {
	Survives  bool
	NewHP     int
	Revives   bool
	RevivedHP int
	Message   string
}

// Alive reports whether the fighter is still standing after the check.
func (o LethalOutcome) Alive() bool {
	return o.Survives || o.Revives
}

// CheckLethal intercepts a fighter whose HP was just driven to zero. incoming
// is the HP the lethal event removed. Survival effects are tried before
// revival; at most one fires, and each is consumed for the rest of the battle.
func CheckLethal(f *entity.Fighter, incoming int) LethalOutcome {
	if f.IsAlive() {
		return LethalOutcome{Survives: true, NewHP: f.HP}
	}
	mod := f.Modifier()
	if mod == nil {
		return LethalOutcome{}
	}

	if !f.UsedSurvival && mod.CanSurvive() {
		switch {
		case mod.InstinctDodge:
			f.UsedSurvival = true
			f.HP = min(f.MaxHP, max(1, f.HP+incoming))
			return LethalOutcome{
				Survives: true,
				NewHP:    f.HP,
				Message:  fmt.Sprintf("%s instinctively dodges the fatal blow!", f.Name),
			}
		case mod.Undying, mod.SurviveOnce, mod.Guardian:
			f.UsedSurvival = true
			f.HP = 1
			return LethalOutcome{
				Survives: true,
				NewHP:    1,
				Message:  fmt.Sprintf("%s survives with 1 HP!", f.Name),
			}
		}
	}

	if mod.RevivePercent > 0 && !f.UsedRevival {
		f.UsedRevival = true
		f.HP = max(1, mulFloor(f.MaxHP, mod.RevivePercent))
		return LethalOutcome{
			Revives:   true,
			RevivedHP: f.HP,
			Message:   fmt.Sprintf("%s revives with %d HP!", f.Name, f.HP),
		}
	}

	return LethalOutcome{}
}
