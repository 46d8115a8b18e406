// Package config loads gachabattle settings from a YAML file, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samdwyer/gachabattle/internal/game"
)

// Config holds all settings for the CLI.
type Config struct {
	// Seed for random number generation. 0 picks a seed from the clock.
	Seed        int64 `yaml:"seed" env:"GACHABATTLE_SEED"`
	MaxTeamSize int   `yaml:"max_team_size" env:"GACHABATTLE_MAX_TEAM_SIZE"`
	MaxTurns    int   `yaml:"max_turns" env:"GACHABATTLE_MAX_TURNS"`

	// Pulls made from the collection before the team is picked.
	Rolls int `yaml:"rolls" env:"GACHABATTLE_ROLLS"`

	// UI pacing only; the engine never sleeps.
	TurnDelay time.Duration `yaml:"turn_delay" env:"GACHABATTLE_TURN_DELAY"`
	Headless  bool          `yaml:"headless" env:"GACHABATTLE_HEADLESS"`
	// Independent battles to simulate in headless mode.
	Battles   int           `yaml:"battles" env:"GACHABATTLE_BATTLES"`

	LogLevel string `yaml:"log_level" env:"GACHABATTLE_LOG_LEVEL"`
	// The terminal UI owns stdout and stderr, so logs go here while it runs.
	LogFile string `yaml:"log_file" env:"GACHABATTLE_LOG_FILE"`

	// Optional YAML or JSON collection file. Empty uses the embedded sample.
	CollectionPath string `yaml:"collection_path" env:"GACHABATTLE_COLLECTION"`
	// Where the collection is written after the battle. Empty skips saving.
	ExportPath     string `yaml:"export_path" env:"GACHABATTLE_EXPORT"`
	// Optional JSON ability catalog replacing the embedded one.
	AbilitiesPath  string `yaml:"abilities_path" env:"GACHABATTLE_ABILITIES"`

	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// TelemetryConfig controls trace export to Honeycomb.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled" env:"GACHABATTLE_TELEMETRY"`
	Endpoint string `yaml:"endpoint" env:"GACHABATTLE_OTLP_ENDPOINT"`
	APIKey   string `yaml:"-" env:"HONEYCOMB_GACHABATTLE_API_KEY"`
	Dataset  string `yaml:"dataset" env:"HONEYCOMB_GACHABATTLE_DATASET"`
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		MaxTeamSize: game.DefaultMaxTeamSize,
		MaxTurns:    game.DefaultMaxTurns,
		Rolls:       10,
		TurnDelay:   400 * time.Millisecond,
		Battles:     1,
		LogLevel:    "info",
		Telemetry: TelemetryConfig{
			Enabled:  true,
			Endpoint: "https://api.honeycomb.io",
			Dataset:  "gachabattle",
		},
	}
}

// Load reads config from a YAML file on top of the defaults.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// ParseFlags overlays command-line flags on cfg. Flags default to the values
// already in cfg, so an unset flag leaves the file and environment alone.
func ParseFlags(fs *flag.FlagSet, args []string, cfg Config) (Config, error) {
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for reproducibility (0 = random)")
	fs.IntVar(&cfg.MaxTeamSize, "team-size", cfg.MaxTeamSize, "most fighters in the player team")
	fs.IntVar(&cfg.MaxTurns, "max-turns", cfg.MaxTurns, "turn limit before a stalemate counts as defeat")
	fs.IntVar(&cfg.Rolls, "rolls", cfg.Rolls, "pulls to make before picking the team")
	fs.DurationVar(&cfg.TurnDelay, "delay", cfg.TurnDelay, "pause between turns in the terminal UI")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "print the battle log instead of opening the terminal UI")
	fs.IntVar(&cfg.Battles, "battles", cfg.Battles, "battles to simulate in headless mode")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log destination while the terminal UI runs")
	fs.StringVar(&cfg.CollectionPath, "collection", cfg.CollectionPath, "YAML or JSON collection file")
	fs.StringVar(&cfg.ExportPath, "export", cfg.ExportPath, "write the collection here after the battle")
	fs.StringVar(&cfg.AbilitiesPath, "abilities", cfg.AbilitiesPath, "JSON ability catalog to use instead of the built-in one")
	fs.BoolVar(&cfg.Telemetry.Enabled, "telemetry", cfg.Telemetry.Enabled, "export traces over OTLP")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks ranges that the engine cannot default on its own.
func (c Config) Validate() error {
	var errs []error
	if c.MaxTeamSize < 1 {
		errs = append(errs, fmt.Errorf("max_team_size must be at least 1, got %d", c.MaxTeamSize))
	}
	if c.MaxTurns < 1 {
		errs = append(errs, fmt.Errorf("max_turns must be at least 1, got %d", c.MaxTurns))
	}
	if c.Rolls < 0 {
		errs = append(errs, fmt.Errorf("rolls must not be negative, got %d", c.Rolls))
	}
	if c.Battles < 1 {
		errs = append(errs, fmt.Errorf("battles must be at least 1, got %d", c.Battles))
	}
	if c.TurnDelay < 0 {
		errs = append(errs, fmt.Errorf("turn_delay must not be negative, got %s", c.TurnDelay))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Game returns the engine settings.
func (c Config) Game() game.Config {
	return game.Config{
		Seed:        c.Seed,
		MaxTeamSize: c.MaxTeamSize,
		MaxTurns:    c.MaxTurns,
	}
}
