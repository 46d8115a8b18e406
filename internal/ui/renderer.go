package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/gachabattle/internal/entity"
	"github.com/samdwyer/gachabattle/internal/game"
	"github.com/samdwyer/gachabattle/internal/gamedata"
)

const (
	hpBarWidth  = 20
	teamColumn  = 42
	headerLines = 2
	footerLines = 1
)

var (
	styleText    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleHeader  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHPFull  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleHPMid   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleHPLow   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleShield  = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleVictory = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleDefeat  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Renderer handles drawing the game to the screen.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// RenderBattle draws both teams and the tail of the battle log.
func (r *Renderer) RenderBattle(state game.BattleState) {
	r.screen.Clear()
	width, height := r.screen.Size()

	r.screen.Print(0, 0, fmt.Sprintf("Turn %d", state.Turn), styleHeader)
	switch state.Phase {
	case game.PhaseVictory:
		r.screen.Print(12, 0, "VICTORY", styleVictory)
	case game.PhaseDefeat:
		r.screen.Print(12, 0, "DEFEAT", styleDefeat)
	}

	r.screen.Print(0, headerLines, "Your team", styleHeader)
	r.screen.Print(teamColumn, headerLines, "Enemies", styleHeader)
	bottom := max(
		r.drawTeam(0, headerLines+1, state.Player, state.PlayerIndex),
		r.drawTeam(teamColumn, headerLines+1, state.Enemy, state.EnemyIndex),
	)

	r.screen.Print(0, bottom, strings.Repeat("-", max(0, width)), styleDim)
	r.drawLog(bottom+1, height-footerLines, state.Log)
	r.screen.Print(0, height-1, "q/Esc: leave battle", styleDim)

	r.screen.Show()
}

// drawTeam draws one team from row y and returns the first free row.
func (r *Renderer) drawTeam(x, y int, team entity.Team, active int) int {
	for i, f := range team {
		if f == nil {
			continue
		}
		marker := "  "
		if i == active && f.IsAlive() {
			marker = "> "
		}
		nameStyle := styleText
		if !f.IsAlive() {
			nameStyle = styleDim
		}
		col := r.screen.Print(x, y, marker+f.Name, nameStyle)

		ability := gamedata.DisplayFor(f.Ability)
		r.screen.Print(col+1, y, "["+ability.Name+"]", tcell.StyleDefault.Foreground(ability.Color()))

		col = r.screen.Print(x+2, y+1, hpBar(f), hpStyle(f))
		col = r.screen.Print(col+1, y+1, fmt.Sprintf("%d/%d ATK %d", f.HP, f.MaxHP, f.Attack), styleText)
		if f.Shield > 0 {
			col = r.screen.Print(col+1, y+1, fmt.Sprintf("+%d", f.Shield), styleShield)
		}
		if tags := statusTags(f); tags != "" {
			r.screen.Print(col+1, y+1, tags, styleStatus)
		}
		y += 2
	}
	return y + 1
}

// drawLog fills rows [top, bottom) with the newest log lines.
func (r *Renderer) drawLog(top, bottom int, lines []string) {
	rows := bottom - top
	if rows <= 0 {
		return
	}
	start := max(0, len(lines)-rows)
	for i, line := range lines[start:] {
		r.screen.Print(0, top+i, line, styleText)
	}
}

func hpBar(f *entity.Fighter) string {
	filled := int(f.HPRatio() * hpBarWidth)
	if f.IsAlive() && filled == 0 {
		filled = 1
	}
	filled = min(filled, hpBarWidth)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", hpBarWidth-filled) + "]"
}

func hpStyle(f *entity.Fighter) tcell.Style {
	switch ratio := f.HPRatio(); {
	case ratio > 0.5:
		return styleHPFull
	case ratio > 0.25:
		return styleHPMid
	default:
		return styleHPLow
	}
}

// statusTags summarises the fighter's visible conditions.
func statusTags(f *entity.Fighter) string {
	var tags []string
	for _, kind := range []entity.StatusKind{entity.StatusPoison, entity.StatusBurn, entity.StatusBleed} {
		if n := f.StatusTotal(kind); n > 0 {
			tags = append(tags, fmt.Sprintf("%s:%d", kind, n))
		}
	}
	if f.Stunned {
		tags = append(tags, "stunned")
	}
	if f.Frozen > 0 {
		tags = append(tags, "frozen")
	}
	if f.SilencedTurns > 0 {
		tags = append(tags, "silenced")
	}
	if f.ImmortalTurns > 0 {
		tags = append(tags, "immortal")
	}
	return strings.Join(tags, " ")
}
