package motion

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

// ErrMissingBinding is returned when a movement action has no key bound.
var ErrMissingBinding = errors.New("motion: missing key binding")

// KeySource supplies the held keys. Each call must return a consistent
// snapshot.
type KeySource interface {
	Snapshot() core.HeldKeys
}

// ObstacleSource supplies the obstacle boxes for one resolution pass.
// The returned slice must not be mutated while the pass runs.
type ObstacleSource interface {
	Obstacles() []core.Rect
}

// RenderSink receives the character's position after each tick.
type RenderSink interface {
	Present(Frame)
}

// SinkFunc adapts a function to RenderSink.
type SinkFunc func(Frame)

// Present calls f(fr).
func (f SinkFunc) Present(fr Frame) { f(fr) }

// Spec is everything needed to build a Character.
type Spec struct {
	Constants Constants
	Bindings  core.Bindings
	Layout    core.Rect // starting box, read once from the scene
}

// Options carries optional collaborators.
type Options struct {
	Sink   RenderSink
	Logger *log.Logger
}

// Character advances one body through fixed ticks.
// BeginTick, UpdateX, UpdateY and Present are meant to be registered, in
// that order, with a fixed-step scheduler.
type Character struct {
	consts   Constants
	bindings core.Bindings
	layout   core.Rect

	input     KeySource
	obstacles ObstacleSource
	sink      RenderSink
	logger    *log.Logger

	mu      sync.Mutex
	body    Body
	stats   Stats
	latched *core.HeldKeys // set by BeginTick, cleared when UpdateY ends the tick
}

// NewCharacter validates the spec and creates a character at rest.
func NewCharacter(spec Spec, input KeySource, obstacles ObstacleSource, opts Options) (*Character, error) {
	if err := spec.Constants.Validate(); err != nil {
		return nil, err
	}
	for _, a := range []core.Action{core.ActionUp, core.ActionLeft, core.ActionRight} {
		if spec.Bindings.Key(a) == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingBinding, a)
		}
	}
	body, err := NewBody(spec.Layout)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Character{
		consts:    spec.Constants,
		bindings:  spec.Bindings,
		layout:    spec.Layout,
		input:     input,
		obstacles: obstacles,
		sink:      opts.Sink,
		logger:    logger,
		body:      body,
		stats:     Stats{MaxLeft: body.Left},
	}, nil
}

// BeginTick takes the held-key snapshot that UpdateX and UpdateY of the
// coming tick both read. Without it each update takes its own snapshot.
func (c *Character) BeginTick() {
	held := c.input.Snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.latched = &held
}

// heldKeys returns the latched snapshot of the tick, if any.
// Caller holds c.mu.
func (c *Character) heldKeys() core.HeldKeys {
	if c.latched != nil {
		return *c.latched
	}
	return c.input.Snapshot()
}

// UpdateX advances horizontal motion by one tick and resolves horizontal
// collisions.
func (c *Character) UpdateX() {
	obstacles := c.obstacles.Obstacles()

	c.mu.Lock()
	defer c.mu.Unlock()
	held := c.heldKeys()

	right := held.Holds(c.bindings, core.ActionRight)
	left := held.Holds(c.bindings, core.ActionLeft)

	switch {
	case right && !left:
		c.accelerate(1)
	case left && !right:
		c.accelerate(-1)
	case c.body.VX != 0:
		c.decelerate()
	}

	res := c.resolve(obstacles)
	if res.HasLeft {
		c.body.Left = res.Left
		c.body.VX = 0
	}
	if c.body.Left > c.stats.MaxLeft {
		c.stats.MaxLeft = c.body.Left
	}
}

// accelerate pushes VX toward dir*XMax.
func (c *Character) accelerate(dir float64) {
	k := c.consts
	b := &c.body

	if math.Abs(b.VX) < k.XMax {
		b.Left += b.VX*k.DT + dir*k.Accel*math.Pow(k.DT, 3)/6
		b.VX += dir * 0.5 * k.Accel * k.DT * k.DT
		b.VX = core.ClampF(b.VX, -k.XMax, k.XMax)
		return
	}

	b.VX = dir * k.XMax
	if k.ScaleCruiseByDT {
		b.Left += b.VX * k.DT
	} else {
		b.Left += b.VX
	}
}

// decelerate pulls VX toward zero, stopping one step early rather than
// crossing it.
func (c *Character) decelerate() {
	k := c.consts
	b := &c.body
	step := 0.5 * k.Decel * k.DT * k.DT

	if b.VX > 0 {
		b.Left += b.VX*k.DT - k.Decel*math.Pow(k.DT, 3)/6
		if b.VX-k.Decel <= 0 || b.VX-step <= 0 {
			b.VX = 0
		} else {
			b.VX -= step
		}
		return
	}

	b.Left += b.VX*k.DT + k.Decel*math.Pow(k.DT, 3)/6
	if b.VX+k.Decel >= 0 || b.VX+step >= 0 {
		b.VX = 0
	} else {
		b.VX += step
	}
}

// UpdateY handles jumping, gravity and vertical collisions for one tick.
func (c *Character) UpdateY() {
	obstacles := c.obstacles.Obstacles()

	c.mu.Lock()
	defer c.mu.Unlock()
	held := c.heldKeys()
	c.latched = nil

	k := c.consts
	b := &c.body
	wasGrounded := b.Flags.TouchingGround

	if held.Holds(c.bindings, core.ActionUp) && b.Flags.TouchingGround {
		b.VY -= k.JumpImpulse
		b.Flags.TouchingGround = false
		c.stats.Jumps++
	}

	b.Top += b.VY*k.DT + 0.5*k.Gravity*k.DT*k.DT
	b.VY = math.Min(b.VY+k.Gravity, k.YMax)

	if b.VY > 0 {
		b.Flags.TouchingGround = false
	}

	res := c.resolve(obstacles)
	if res.HasTop {
		b.Top = res.Top
		b.VY = 0
		if !b.Flags.TouchingCeiling {
			b.Flags.TouchingGround = true
		}
	}

	if b.Flags.TouchingGround && !wasGrounded {
		c.stats.Landings++
	}
	c.stats.Ticks++
}

// resolve runs the broad pass and applies its ceiling verdict.
// Caller holds c.mu.
func (c *Character) resolve(obstacles []core.Rect) Resolution {
	res := Broad(c.body.Box(), obstacles)
	if res.Skipped > 0 {
		c.logger.Debug("skipped malformed obstacles", "count", res.Skipped)
	}
	switch res.Ceiling {
	case CeilingSet:
		c.body.Flags.TouchingCeiling = true
	case CeilingClear:
		c.body.Flags.TouchingCeiling = false
	}
	return res
}

// Present hands the current floored position to the render sink.
func (c *Character) Present() {
	if c.sink == nil {
		return
	}
	c.sink.Present(c.Frame())
}

// Frame returns the current render frame.
func (c *Character) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	left, top := c.body.Box().Floor()
	return Frame{
		Tick:  c.stats.Ticks,
		Left:  left,
		Top:   top,
		VX:    c.body.VX,
		VY:    c.body.VY,
		Flags: c.body.Flags,
	}
}

// Body returns a copy of the kinematic state.
func (c *Character) Body() Body {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.body
}

// Stats returns a copy of the event counters.
func (c *Character) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Constants returns the physical constants.
func (c *Character) Constants() Constants {
	return c.consts
}

// Reset puts the body back at its starting layout, at rest.
// Stats are kept.
func (c *Character) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// layout was validated in NewCharacter
	c.body, _ = NewBody(c.layout)
	c.latched = nil
}

// DebugLog writes velocity and/or held keys to the logger at debug level.
func (c *Character) DebugLog(vel, keys bool) {
	if vel {
		b := c.Body()
		c.logger.Debug("velocity", "vx", b.VX, "vy", b.VY,
			"ground", b.Flags.TouchingGround, "ceiling", b.Flags.TouchingCeiling)
	}
	if keys {
		codes := c.input.Snapshot().Codes()
		names := make([]string, len(codes))
		for i, code := range codes {
			names[i] = string(code)
		}
		c.logger.Debug("keys pressed", "keys", strings.Join(names, ","))
	}
}
