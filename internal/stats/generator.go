// Package stats derives a fighter's battle stats from the rarity of the
// group its item was rolled from.
package stats

import (
	"math"

	"github.com/samdwyer/gachabattle/internal/collection"
	"github.com/samdwyer/gachabattle/internal/gamedata"
)

const (
	baseHPMin      = 20
	baseHPSpan     = 15 // [20, 34]
	baseAttackMin  = 5
	baseAttackSpan = 5 // [5, 9]

	// Used when the rarity ratio cannot be computed or is degenerate.
	fallbackMultiplier = 0.5
	maxMultiplier      = 10
	minRarity          = 0.1
)

// Roller is the random source for stat rolls.
type Roller interface {
	Intn(n int) int
}

// Stats is a generated stat line.
type Stats struct {
	MaxHP   int
	Attack  int
	Ability *gamedata.AbilityDef
}

// Record converts the stat line into the form stored on an inventory item.
func (s Stats) Record() collection.Stats {
	rec := collection.Stats{MaxHP: s.MaxHP, Attack: s.Attack}
	if s.Ability != nil {
		rec.AbilityID = s.Ability.ID
	}
	return rec
}

// Generator rolls stats for collected items.
type Generator struct {
	catalog *gamedata.AbilityRegistry
	rng     Roller
}

// NewGenerator creates a generator drawing abilities from catalog.
func NewGenerator(catalog *gamedata.AbilityRegistry, rng Roller) *Generator {
	return &Generator{catalog: catalog, rng: rng}
}

// Generate rolls a fresh stat line for item. Stronger stats go to items from
// rarer groups.
func (g *Generator) Generate(item collection.CollectedItem, groups []collection.Group) Stats {
	mult := RarityMultiplier(item.GroupName, groups)

	baseHP := baseHPMin + g.rng.Intn(baseHPSpan)
	baseAttack := baseAttackMin + g.rng.Intn(baseAttackSpan)

	return Stats{
		MaxHP:   scale(baseHP, 0.8+mult*0.3),
		Attack:  scale(baseAttack, 0.8+mult*0.25),
		Ability: g.catalog.Random(g.rng),
	}
}

// Record generates a stat line and returns its stored form. It matches
// collection.StatsFunc so it can be handed to Store.EnsureStats.
func (g *Generator) Record(item collection.CollectedItem, groups []collection.Group) collection.Stats {
	return g.Generate(item, groups).Record()
}

// Rehydrate rebuilds a stat line from a stored record. An unknown ability ID
// yields no ability.
func (g *Generator) Rehydrate(rec collection.Stats) Stats {
	return Stats{
		MaxHP:   max(1, rec.MaxHP),
		Attack:  max(1, rec.Attack),
		Ability: g.catalog.GetByID(rec.AbilityID),
	}
}

// RarityMultiplier returns the stat multiplier for an item from groupName.
// It is the total eligible rarity over the group's rarity, capped at 10. The
// only eligible group, an unknown group or a non-positive total all give the
// flat fallback of 0.5.
func RarityMultiplier(groupName string, groups []collection.Group) float64 {
	total := 0.0
	eligible := 0
	rarity := -1.0
	for _, grp := range groups {
		if !grp.Eligible() {
			continue
		}
		eligible++
		total += grp.Rarity
		if grp.Name == groupName {
			rarity = grp.Rarity
		}
	}

	if rarity < 0 || total <= 0 || eligible == 1 {
		return fallbackMultiplier
	}
	return math.Min(total/math.Max(rarity, minRarity), maxMultiplier)
}

func scale(base int, mult float64) int {
	v := math.Floor(float64(base) * mult)
	if math.IsNaN(v) || v < 1 {
		return 1
	}
	return int(v)
}
