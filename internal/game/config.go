package game

const (
	// DefaultMaxTeamSize is the most fighters a player may bring.
	DefaultMaxTeamSize = 4
	// DefaultMaxTurns ends a stalemate as a defeat.
	DefaultMaxTurns = 200
)

// Config holds engine options.
type Config struct {
	// Seed for random number generation. Used for reproducible battles.
	// A seed of 0 means a random seed will be generated.
	Seed int64

	MaxTeamSize int
	MaxTurns    int
}

func (c Config) withDefaults() Config {
	if c.MaxTeamSize <= 0 {
		c.MaxTeamSize = DefaultMaxTeamSize
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = DefaultMaxTurns
	}
	return c
}
