// Package main is the entry point for gachabattle.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/samdwyer/gachabattle/internal/config"
	"github.com/samdwyer/gachabattle/internal/telemetry"
	"github.com/samdwyer/gachabattle/internal/ui"
)

const defaultConfigPath = "gachabattle.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, ui.ErrAbandoned) || errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "gachabattle: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	// Load .env file for local development
	// This makes HONEYCOMB_GACHABATTLE_API_KEY available
	envErr := godotenv.Load()

	fs := flag.NewFlagSet("gachabattle", flag.ContinueOnError)
	var teamFlag string
	fs.StringVar(&teamFlag, "team", "", "comma-separated inventory ids (default: rarest pulls)")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	if envErr != nil {
		// Not fatal - env vars might be set directly
		slog.Debug(".env file not loaded", "err", envErr)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.APIKey != "" {
		shutdown, err := telemetry.Setup(ctx, telemetry.Options{
			Endpoint: cfg.Telemetry.Endpoint,
			APIKey:   cfg.Telemetry.APIKey,
			Dataset:  cfg.Telemetry.Dataset,
		})
		if err != nil {
			slog.Warn("telemetry setup failed, running without traces", "err", err)
		} else {
			defer func() {
				// ctx may already be cancelled; give the exporter its own deadline
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(sctx); err != nil {
					slog.Warn("telemetry shutdown failed", "err", err)
				}
			}()
		}
	}

	return play(ctx, cfg, teamFlag, os.Stdout)
}

// loadConfig layers the YAML file, the environment and flags, then validates.
func loadConfig(fs *flag.FlagSet, args []string) (config.Config, error) {
	path := os.Getenv("GACHABATTLE_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := config.ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg, err = config.ParseFlags(fs, args, cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// setupLogging installs the default slog logger. The terminal UI owns the
// screen, so unless headless, logs go to LogFile or nowhere.
func setupLogging(cfg config.Config) (func(), error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stderr
	closeFn := func() {}
	if !cfg.Headless {
		out = io.Discard
		if cfg.LogFile != "" {
			f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("opening log file %s: %w", cfg.LogFile, err)
			}
			out = f
			closeFn = func() { _ = f.Close() }
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return closeFn, nil
}
