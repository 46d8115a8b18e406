package entity

// Team is an ordered list of fighters. Battles never reorder a team; they
// only advance past fighters that have fallen.
type Team []*Fighter

// Active returns the first living fighter and its index, or nil and len(t).
func (t Team) Active() (*Fighter, int) {
	for i, f := range t {
		if f != nil && f.IsAlive() {
			return f, i
		}
	}
	return nil, len(t)
}

// AliveCount returns the number of living fighters.
func (t Team) AliveCount() int {
	n := 0
	for _, f := range t {
		if f != nil && f.IsAlive() {
			n++
		}
	}
	return n
}

// Exhausted reports whether no fighter is left standing.
func (t Team) Exhausted() bool {
	return t.AliveCount() == 0
}

// Allies returns the living fighters of the team other than f.
func (t Team) Allies(f *Fighter) []*Fighter {
	var out []*Fighter
	for _, m := range t {
		if m != nil && m != f && m.IsAlive() {
			out = append(out, m)
		}
	}
	return out
}

// Clone deep-copies every fighter.
func (t Team) Clone() Team {
	out := make(Team, len(t))
	for i, f := range t {
		if f != nil {
			out[i] = f.Clone()
		}
	}
	return out
}
