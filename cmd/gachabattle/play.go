package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/samdwyer/gachabattle/data"
	"github.com/samdwyer/gachabattle/internal/collection"
	"github.com/samdwyer/gachabattle/internal/combat"
	"github.com/samdwyer/gachabattle/internal/config"
	"github.com/samdwyer/gachabattle/internal/game"
	"github.com/samdwyer/gachabattle/internal/gamedata"
	"github.com/samdwyer/gachabattle/internal/stats"
	"github.com/samdwyer/gachabattle/internal/ui"
)

var errNoFighters = errors.New("inventory is empty, nothing to fight with")

// play pulls from the collection, picks a team and fights: headless battles
// print to out, otherwise one battle plays in the terminal UI.
func play(ctx context.Context, cfg config.Config, teamFlag string, out io.Writer) error {
	catalog, err := loadCatalog(cfg.AbilitiesPath)
	if err != nil {
		return fmt.Errorf("loading abilities: %w", err)
	}
	store, err := openCollection(cfg.CollectionPath)
	if err != nil {
		return err
	}

	rng := combat.NewRoller(cfg.Seed)
	if cfg.Rolls > 0 {
		pulls, err := store.RollMany(rng, cfg.Rolls)
		if err != nil && !errors.Is(err, collection.ErrNoEligibleGroups) {
			return err
		}
		slog.Info("pulled from collection", "count", len(pulls))
		if cfg.Headless {
			for _, p := range pulls {
				fmt.Fprintf(out, "Pulled %s (%s)\n", p.Title, p.GroupName)
			}
		}
	}

	ids := parseTeam(teamFlag)
	if len(ids) == 0 {
		ids = pickTeam(store.Inventory(), cfg.MaxTeamSize)
	}
	if len(ids) == 0 {
		return errNoFighters
	}

	// Fix stats up front so concurrent battles agree on them.
	gen := stats.NewGenerator(catalog, rng)
	for _, id := range ids {
		if _, err := store.EnsureStats(id, gen.Record); err != nil {
			return err
		}
	}

	if cfg.Headless {
		err = simulate(ctx, cfg, store, catalog, ids, out)
	} else {
		err = watch(ctx, cfg, store, catalog, ids)
	}
	if err != nil && !errors.Is(err, ui.ErrAbandoned) {
		return err
	}

	if cfg.ExportPath != "" {
		if xerr := exportCollection(cfg.ExportPath, store); xerr != nil {
			return xerr
		}
	}
	return err
}

// simulate runs cfg.Battles independent battles, each in its own session.
func simulate(ctx context.Context, cfg config.Config, store *collection.Store, catalog *gamedata.AbilityRegistry, ids []string, out io.Writer) error {
	results := make([]game.BattleState, cfg.Battles)
	seeds := runSeeds(cfg.Seed, cfg.Battles)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range cfg.Battles {
		g.Go(func() error {
			gcfg := cfg.Game()
			gcfg.Seed = seeds[i]
			s := game.NewSession(store, catalog, gcfg, game.Deps{Logger: slog.Default().With("run", i)})
			st, err := s.Play(gctx, ids)
			if err != nil {
				return fmt.Errorf("battle %d: %w", i+1, err)
			}
			results[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(results) == 1 {
		for _, line := range results[0].Log {
			fmt.Fprintln(out, line)
		}
		return nil
	}

	wins, turns := 0, 0
	for _, st := range results {
		if st.Outcome == game.PhaseVictory {
			wins++
		}
		turns += st.Turn
	}
	fmt.Fprintf(out, "%d/%d victories (%.0f%%), %.1f turns on average\n",
		wins, len(results), 100*float64(wins)/float64(len(results)), float64(turns)/float64(len(results)))
	return nil
}

// runSeeds gives each of n battles its own nonzero seed. A fixed seed
// numbers them consecutively; seed 0 draws them from one clock-seeded roller.
func runSeeds(seed int64, n int) []int64 {
	seeds := make([]int64, n)
	if seed != 0 {
		for i := range seeds {
			seeds[i] = seed + int64(i)
		}
		return seeds
	}
	master := combat.NewRoller(0)
	for i := range seeds {
		for seeds[i] == 0 {
			seeds[i] = master.Int63()
		}
	}
	return seeds
}

// watch plays one battle in the terminal UI.
func watch(ctx context.Context, cfg config.Config, store *collection.Store, catalog *gamedata.AbilityRegistry, ids []string) error {
	session := game.NewSession(store, catalog, cfg.Game(), game.Deps{})
	if err := session.Begin(); err != nil {
		return err
	}
	if err := session.SelectTeam(ids); err != nil {
		return err
	}
	b, err := session.Start(ctx)
	if err != nil {
		return err
	}

	screen, err := ui.NewScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	defer screen.Close()

	outcome, err := ui.NewPlayback(screen, cfg.TurnDelay, slog.Default()).Play(ctx, b)
	if err != nil {
		return err
	}
	if _, err := session.Finish(); err != nil {
		return err
	}
	slog.Info("battle over", "outcome", outcome, "turns", b.Snapshot().Turn)
	return nil
}

// pickTeam takes up to n fighters, rarest group first.
func pickTeam(inv []collection.CollectedItem, n int) []string {
	slices.SortStableFunc(inv, func(a, b collection.CollectedItem) int {
		switch {
		case a.GroupRarity < b.GroupRarity:
			return -1
		case a.GroupRarity > b.GroupRarity:
			return 1
		}
		return 0
	})

	ids := make([]string, 0, n)
	for _, it := range inv {
		if len(ids) == n {
			break
		}
		ids = append(ids, it.ID)
	}
	return ids
}

func parseTeam(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func loadCatalog(path string) (*gamedata.AbilityRegistry, error) {
	if path == "" {
		return gamedata.LoadAbilityRegistry()
	}
	return gamedata.LoadAbilityRegistryFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// openCollection imports path, or the embedded sample when path is empty.
func openCollection(path string) (*collection.Store, error) {
	var r io.ReadCloser
	var err error
	if path == "" {
		path = data.SampleCollectionFile
		r, err = data.SampleCollection()
	} else {
		r, err = os.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening collection %s: %w", path, err)
	}
	defer r.Close()

	store := collection.NewStore()
	if err := store.Import(r); err != nil {
		return nil, fmt.Errorf("importing collection %s: %w", path, err)
	}
	return store, nil
}

func exportCollection(path string, store *collection.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := store.Export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
