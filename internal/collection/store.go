// Package collection holds the weighted item groups a player rolls against
// and the inventory of items they have collected.
package collection

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrItemNotFound     = errors.New("collection: item not found")
	ErrGroupNotFound    = errors.New("collection: group not found")
	ErrDuplicateGroup   = errors.New("collection: duplicate group")
	ErrNoEligibleGroups = errors.New("collection: no eligible groups to roll")
)

// Roller is the random source used for rolls.
type Roller interface {
	Float64() float64
	Intn(n int) int
}

// Item is one collectible entry inside a group.
type Item struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	ImageRef string `yaml:"imageRef,omitempty" json:"imageRef,omitempty"`
}

// Group is a weighted pool of items. Rarity is the roll weight.
type Group struct {
	ID     string  `yaml:"id" json:"id"`
	Name   string  `yaml:"name" json:"name"`
	Rarity float64 `yaml:"rarity" json:"rarity"`
	Items  []Item  `yaml:"items" json:"items"`
}

// Eligible reports whether the group can be rolled or used for stat scaling.
func (g Group) Eligible() bool {
	return g.Rarity > 0 && len(g.Items) > 0
}

func (g Group) clone() Group {
	g.Items = slices.Clone(g.Items)
	return g
}

// Stats is the battle record fixed on an inventory item the first time it
// fights. AbilityID 0 means no ability.
type Stats struct {
	MaxHP     int `yaml:"maxHp" json:"maxHp"`
	Attack    int `yaml:"attack" json:"attack"`
	AbilityID int `yaml:"abilityId,omitempty" json:"abilityId,omitempty"`
}

// CollectedItem is an inventory record.
type CollectedItem struct {
	ID          string  `yaml:"id" json:"id"`
	Title       string  `yaml:"title" json:"title"`
	GroupName   string  `yaml:"groupName" json:"groupName"`
	GroupRarity float64 `yaml:"groupRarity" json:"groupRarity"`
	ImageRef    string  `yaml:"imageRef,omitempty" json:"imageRef,omitempty"`
	Count       int     `yaml:"count" json:"count"`
	Stats       *Stats  `yaml:"stats,omitempty" json:"stats,omitempty"`
}

func (c CollectedItem) clone() CollectedItem {
	if c.Stats != nil {
		s := *c.Stats
		c.Stats = &s
	}
	return c
}

// StatsFunc derives a battle record for an item from the current groups.
type StatsFunc func(item CollectedItem, groups []Group) Stats

// Store is an in-memory collection. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	groups    []Group
	inventory map[string]*CollectedItem
	order     []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{inventory: make(map[string]*CollectedItem)}
}

// AddGroup registers a group. A group without an ID is given a random one.
func (s *Store) AddGroup(g Group) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addGroupLocked(g)
}

func (s *Store) addGroupLocked(g Group) (string, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if s.groupIndex(g.ID) >= 0 {
		return "", fmt.Errorf("%w: %s", ErrDuplicateGroup, g.ID)
	}
	g = g.clone()
	for i := range g.Items {
		if g.Items[i].ID == "" {
			g.Items[i].ID = uuid.NewString()
		}
	}
	s.groups = append(s.groups, g)
	return g.ID, nil
}

// AddItem appends an item to an existing group and returns its ID.
func (s *Store) AddItem(groupID string, item Item) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.groupIndex(groupID)
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	s.groups[idx].Items = append(s.groups[idx].Items, item)
	return item.ID, nil
}

// Groups returns a copy of every group in insertion order.
func (s *Store) Groups() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = g.clone()
	}
	return out
}

// Inventory returns a copy of the collected items in the order they were
// first collected.
func (s *Store) Inventory() []CollectedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CollectedItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.inventory[id].clone())
	}
	return out
}

// Item returns one inventory record.
func (s *Store) Item(id string) (CollectedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.inventory[id]
	if !ok {
		return CollectedItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return c.clone(), nil
}

// Roll picks an eligible group with probability proportional to its rarity,
// then an item from it uniformly, and adds it to the inventory.
func (s *Store) Roll(r Roller) (CollectedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group := s.pickGroup(r)
	if group == nil {
		return CollectedItem{}, ErrNoEligibleGroups
	}
	item := group.Items[r.Intn(len(group.Items))]
	return s.collectLocked(group, item).clone(), nil
}

// RollMany rolls n times and stops at the first error.
func (s *Store) RollMany(r Roller, n int) ([]CollectedItem, error) {
	out := make([]CollectedItem, 0, n)
	for range n {
		c, err := s.Roll(r)
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) pickGroup(r Roller) *Group {
	total := 0.0
	for _, g := range s.groups {
		if g.Eligible() {
			total += g.Rarity
		}
	}
	if total <= 0 {
		return nil
	}

	roll := r.Float64() * total
	cumulative := 0.0
	var last *Group
	for i := range s.groups {
		g := &s.groups[i]
		if !g.Eligible() {
			continue
		}
		last = g
		cumulative += g.Rarity
		if roll < cumulative {
			return g
		}
	}
	return last
}

func (s *Store) collectLocked(group *Group, item Item) *CollectedItem {
	if c, ok := s.inventory[item.ID]; ok {
		c.Count++
		return c
	}
	c := &CollectedItem{
		ID:          item.ID,
		Title:       item.Title,
		GroupName:   group.Name,
		GroupRarity: group.Rarity,
		ImageRef:    item.ImageRef,
		Count:       1,
	}
	s.inventory[item.ID] = c
	s.order = append(s.order, item.ID)
	return c
}

// EnsureStats returns the item's battle record, generating and storing it on
// first use so later battles reuse the same stats and ability.
func (s *Store) EnsureStats(id string, gen StatsFunc) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.inventory[id]
	if !ok {
		return Stats{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if c.Stats == nil {
		groups := make([]Group, len(s.groups))
		for i, g := range s.groups {
			groups[i] = g.clone()
		}
		st := gen(c.clone(), groups)
		c.Stats = &st
	}
	return *c.Stats, nil
}

func (s *Store) groupIndex(id string) int {
	return slices.IndexFunc(s.groups, func(g Group) bool { return g.ID == id })
}
