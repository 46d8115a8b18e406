package gamedata

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
)

var (
	ErrEmptyCatalog   = errors.New("gamedata: catalog has no abilities")
	ErrInvalidAbility = errors.New("gamedata: invalid ability")
)

// Intner is the slice of a random source the registry needs. *rand.Rand
// satisfies it.
type Intner interface {
	Intn(n int) int
}

// AbilityRegistry holds loaded ability definitions and provides lookup utilities.
type AbilityRegistry struct {
	abilities map[int]*AbilityDef
	all       []AbilityDef
}

// NewAbilityRegistry creates a registry from loaded ability definitions. The
// registry keeps its own copy, so later writes to abilities do not reach it.
func NewAbilityRegistry(abilities []AbilityDef) *AbilityRegistry {
	registry := &AbilityRegistry{
		abilities: make(map[int]*AbilityDef, len(abilities)),
		all:       slices.Clone(abilities),
	}
	for i := range registry.all {
		registry.abilities[registry.all[i].ID] = &registry.all[i]
	}
	return registry
}

// LoadAbilityRegistry loads the embedded catalog.
func LoadAbilityRegistry() (*AbilityRegistry, error) {
	return LoadAbilityRegistryFS(dataFS, abilitiesFile)
}

// LoadAbilityRegistryFS loads and validates a catalog file from fsys.
func LoadAbilityRegistryFS(fsys fs.FS, filename string) (*AbilityRegistry, error) {
	file, err := LoadFS[AbilitiesFile](fsys, filename)
	if err != nil {
		return nil, err
	}
	if err := validate(file.Abilities); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return NewAbilityRegistry(file.Abilities), nil
}

// MustLoadAbilityRegistry loads a registry, panicking on error.
func MustLoadAbilityRegistry() *AbilityRegistry {
	registry, err := LoadAbilityRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// validate rejects catalogs the engine cannot look up reliably. Unknown
// categories and triggers are allowed; they only affect display and are
// never fired.
func validate(abilities []AbilityDef) error {
	if len(abilities) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[int]bool, len(abilities))
	for _, a := range abilities {
		switch {
		case a.ID <= 0:
			return fmt.Errorf("%w: %q has id %d", ErrInvalidAbility, a.Name, a.ID)
		case seen[a.ID]:
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidAbility, a.ID)
		case a.Name == "":
			return fmt.Errorf("%w: id %d has no name", ErrInvalidAbility, a.ID)
		case a.Trigger == "":
			return fmt.Errorf("%w: id %d has no trigger", ErrInvalidAbility, a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

// GetByID returns the ability definition with the given ID, or nil if not found.
func (r *AbilityRegistry) GetByID(id int) *AbilityDef {
	if r == nil {
		return nil
	}
	return r.abilities[id]
}

// Random picks an ability uniformly from the catalog.
func (r *AbilityRegistry) Random(rng Intner) *AbilityDef {
	if r == nil || len(r.all) == 0 {
		return nil
	}
	return &r.all[rng.Intn(len(r.all))]
}

// All returns a copy of every ability definition in catalog order.
func (r *AbilityRegistry) All() []AbilityDef {
	if r == nil {
		return nil
	}
	return slices.Clone(r.all)
}

// Count returns the number of abilities in the registry.
func (r *AbilityRegistry) Count() int {
	return len(r.all)
}
