// Package platformer assembles a playable session: a level's scene, a
// character driven by held keys, and the fixed-rate scheduler that ticks it.
// It knows nothing about terminals; the TUI and the headless simulator both
// drive it through the same API.
package platformer

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/loop"
	"github.com/vovakirdan/tui-platformer/internal/motion"
	"github.com/vovakirdan/tui-platformer/internal/scene"
	"github.com/vovakirdan/tui-platformer/internal/script"
)

// Debug selects per-tick debug output.
type Debug struct {
	Velocity bool
	Keys     bool
}

// Options carries optional collaborators for a session.
type Options struct {
	Sink   motion.RenderSink
	Logger *log.Logger
	Script *script.Script // replayed from tick 0 when set
	Debug  Debug
}

// Session is one character on one level.
type Session struct {
	level       scene.Level
	scene       *scene.Scene
	keys        *core.KeySet
	char        *motion.Character
	sched       *loop.Scheduler
	player      *script.Player
	tickRate    int
	obstacleTag string
	logger      *log.Logger
}

// NewSession builds a stopped session. Ticks run BeginTick, UpdateX,
// UpdateY and Present in that order, preceded by the script step when one
// is given, so both axes see the same held keys.
func NewSession(cfg config.Config, level scene.Level, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.With("level", level.ID)

	sc := level.NewScene()
	layout, err := sc.PlayerLayout()
	if err != nil {
		return nil, fmt.Errorf("platformer: level %s: %w", level.ID, err)
	}

	keys := core.NewKeySet()
	char, err := motion.NewCharacter(
		motion.Spec{
			Constants: cfg.Constants(),
			Bindings:  cfg.Bindings(),
			Layout:    layout,
		},
		keys,
		sc.Source(cfg.ObstacleTag),
		motion.Options{Sink: opts.Sink, Logger: logger},
	)
	if err != nil {
		return nil, fmt.Errorf("platformer: level %s: %w", level.ID, err)
	}

	s := &Session{
		level:       level,
		scene:       sc,
		keys:        keys,
		char:        char,
		sched:       loop.New(logger),
		tickRate:    cfg.TickRate,
		obstacleTag: cfg.ObstacleTag,
		logger:      logger,
	}

	if opts.Script != nil {
		s.player = script.NewPlayer(*opts.Script, keys)
		s.sched.Add(s.player.Step)
	}
	s.sched.Add(char.BeginTick)
	s.sched.Add(char.UpdateX)
	s.sched.Add(char.UpdateY)
	s.sched.Add(char.Present)
	if opts.Debug.Velocity || opts.Debug.Keys {
		d := opts.Debug
		s.sched.Add(func() { char.DebugLog(d.Velocity, d.Keys) })
	}

	logger.Debug("session ready", "obstacles", len(sc.Tagged(cfg.ObstacleTag)), "tick_rate", cfg.TickRate)
	return s, nil
}

// Start begins ticking at the configured rate. Starting a paused session
// resumes it from where it stopped.
func (s *Session) Start() error {
	return s.sched.Start(s.tickRate)
}

// Stop pauses ticking. The body keeps its state.
func (s *Session) Stop() {
	s.sched.Stop()
}

// Close stops ticking and waits for the tick goroutine to exit.
// It must not be called from inside a tick.
func (s *Session) Close() {
	s.sched.Stop()
	if done := s.sched.Done(); done != nil {
		<-done
	}
}

// Running reports whether the session is ticking.
func (s *Session) Running() bool {
	return s.sched.Running()
}

// Step runs one tick synchronously.
func (s *Session) Step() {
	s.sched.Fire()
}

// Restart returns the character to its starting box and releases every key.
// Run statistics are kept.
func (s *Session) Restart() {
	s.keys.ReleaseAll()
	s.char.Reset()
	s.logger.Debug("restarted")
}

// Keys returns the held-key set the input layer writes to.
func (s *Session) Keys() *core.KeySet {
	return s.keys
}

// Character returns the simulated character.
func (s *Session) Character() *motion.Character {
	return s.char
}

// Level returns the level definition.
func (s *Session) Level() scene.Level {
	return s.level
}

// Scene returns the live scene.
func (s *Session) Scene() *scene.Scene {
	return s.scene
}

// ScriptDone reports whether a replayed script has applied every event.
// It is true when the session has no script.
func (s *Session) ScriptDone() bool {
	return s.player == nil || s.player.Done()
}
