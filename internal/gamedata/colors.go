package gamedata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Display colour tags for abilities.
const (
	colorNone     = "#666666"
	colorFallback = "#888888"
	iconFallback  = "❓"
)

var categoryColors = map[Category]string{
	CategoryOffensive: "#ff6b6b",
	CategoryDefensive: "#4ecdc4",
	CategoryUtility:   "#ffe66d",
	CategoryDebuff:    "#a855f7",
	CategorySpecial:   "#f97316",
}

var categoryIcons = map[Category]string{
	CategoryOffensive: "⚔️",
	CategoryDefensive: "🛡️",
	CategoryUtility:   "⚡",
	CategoryDebuff:    "💀",
	CategorySpecial:   "✨",
}

// Display is presentation metadata for an ability.
type Display struct {
	Name        string
	Description string
	ColorTag    string
	IconTag     string
}

// Color returns the colour tag as a tcell.Color, or the default colour when
// the tag does not parse.
func (d Display) Color() tcell.Color {
	c, err := ParseHexColor(d.ColorTag)
	if err != nil {
		return tcell.ColorDefault
	}
	return c
}

// DisplayFor returns display metadata for an ability. A nil ability renders as
// "None" and an unknown category falls back to a neutral colour and icon.
func DisplayFor(a *AbilityDef) Display {
	if a == nil {
		return Display{
			Name:        "None",
			Description: "No ability",
			ColorTag:    colorNone,
			IconTag:     "",
		}
	}
	color, ok := categoryColors[a.Category]
	if !ok {
		color = colorFallback
	}
	icon, ok := categoryIcons[a.Category]
	if !ok {
		icon = iconFallback
	}
	return Display{
		Name:        a.Name,
		Description: a.Description,
		ColorTag:    color,
		IconTag:     icon,
	}
}

// ParseHexColor converts a hex color string (e.g., "#FF0000" or "FF0000") to a tcell.Color.
func ParseHexColor(hex string) (tcell.Color, error) {
	hex = strings.TrimPrefix(hex, "#")

	if len(hex) != 6 {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color length: %s", hex)
	}

	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color %s: %w", hex, err)
	}

	return tcell.NewHexColor(int32(rgb)), nil
}

// MustParseHexColor converts a hex color string to tcell.Color, panicking on error.
func MustParseHexColor(hex string) tcell.Color {
	color, err := ParseHexColor(hex)
	if err != nil {
		panic(err)
	}
	return color
}
