package ui

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/gachabattle/internal/game"
	"github.com/samdwyer/gachabattle/internal/telemetry"
)

// ErrAbandoned is returned when the player leaves a battle before it ends.
var ErrAbandoned = errors.New("ui: battle abandoned")

// Playback steps a battle on a timer and redraws it after every turn.
type Playback struct {
	screen   *Screen
	renderer *Renderer
	delay    time.Duration
	log      *slog.Logger

	pollOnce sync.Once
	events   chan tcell.Event
}

// NewPlayback creates a playback that waits delay between turns.
func NewPlayback(screen *Screen, delay time.Duration, logger *slog.Logger) *Playback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Playback{
		screen:   screen,
		renderer: NewRenderer(screen),
		delay:    max(delay, time.Millisecond),
		log:      logger,
		events:   make(chan tcell.Event, 8),
	}
}

// Play runs b to completion, then waits for a key press before returning the
// outcome. Pressing q or Esc mid-battle returns ErrAbandoned.
func (p *Playback) Play(ctx context.Context, b *game.Battle) (game.Phase, error) {
	ctx, span := telemetry.Tracer("ui").Start(ctx, "ui.playback")
	defer span.End()
	span.SetAttributes(attribute.String("battle.id", b.ID()))

	p.pollOnce.Do(func() { go p.pollEvents(p.events) })

	ticker := time.NewTicker(p.delay)
	defer ticker.Stop()

	finished := b.Outcome().Terminal()
	p.renderer.RenderBattle(b.Snapshot())

	for {
		select {
		case <-ctx.Done():
			return b.Outcome(), ctx.Err()

		case ev, ok := <-p.events:
			if !ok {
				return b.Outcome(), ErrAbandoned
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				p.screen.Sync()
				p.renderer.RenderBattle(b.Snapshot())
			case *tcell.EventKey:
				if finished {
					return b.Outcome(), nil
				}
				if isQuit(ev) {
					span.SetAttributes(attribute.Bool("abandoned", true))
					p.log.Info("battle abandoned by player", "battle_id", b.ID())
					return b.Outcome(), ErrAbandoned
				}
			}

		case <-ticker.C:
			if finished {
				continue
			}
			done, err := b.Step(ctx)
			if err != nil {
				return b.Outcome(), err
			}
			p.renderer.RenderBattle(b.Snapshot())
			finished = done
		}
	}
}

// pollEvents forwards terminal events until the screen is closed. It runs
// once per playback so consecutive battles share one reader.
func (p *Playback) pollEvents(out chan<- tcell.Event) {
	defer close(out)
	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return
		}
		out <- ev
	}
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}
