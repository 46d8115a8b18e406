package collection

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// File is the on-disk collection format. YAML is the primary format; JSON
// documents decode through the same path since JSON is valid YAML.
type File struct {
	Groups    []Group         `yaml:"groups" json:"groups"`
	Inventory []CollectedItem `yaml:"inventory,omitempty" json:"inventory,omitempty"`
}

// Import decodes a collection file and merges it into the store. Groups whose
// ID already exists are rejected; inventory records replace existing ones.
// The merge is all or nothing: on error the store is left unchanged.
func (s *Store) Import(r io.Reader) error {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode collection: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Records are replaced, never written through, so a shallow map copy stages safely.
	next := &Store{
		groups:    slices.Clone(s.groups),
		inventory: maps.Clone(s.inventory),
		order:     slices.Clone(s.order),
	}
	for _, g := range f.Groups {
		if _, err := next.addGroupLocked(g); err != nil {
			return err
		}
	}
	for _, c := range f.Inventory {
		if c.ID == "" {
			return fmt.Errorf("%w: inventory record without id", ErrItemNotFound)
		}
		if c.Count < 1 {
			c.Count = 1
		}
		rec := c.clone()
		if _, ok := next.inventory[c.ID]; !ok {
			next.order = append(next.order, c.ID)
		}
		next.inventory[c.ID] = &rec
	}

	s.groups, s.inventory, s.order = next.groups, next.inventory, next.order
	return nil
}

// Export writes the store as a YAML collection file.
func (s *Store) Export(w io.Writer) error {
	f := File{Groups: s.Groups(), Inventory: s.Inventory()}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	return enc.Close()
}
