// Package motion implements the character motion core: per-tick
// integration of horizontal and vertical velocity, the jump/landing state
// machine, and collision resolution against static obstacles.
//
// Units follow the scene: positions in scene units (pixels), velocities in
// units per second, one tick of DT seconds per update.
package motion

import (
	"fmt"
	"math"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

// Constants are the immutable physical parameters of a character.
type Constants struct {
	Gravity     float64 // added to VY every tick
	YMax        float64 // terminal fall speed; upper clamp on VY
	XMax        float64 // horizontal speed cap
	Accel       float64 // horizontal acceleration while a direction is held
	Decel       float64 // horizontal deceleration while coasting
	JumpImpulse float64 // subtracted from VY on jump
	DT          float64 // seconds per tick

	// ScaleCruiseByDT makes the at-max-speed branch advance by XMax*DT
	// instead of the raw XMax. Off by default for parity with the classic
	// motion feel.
	ScaleCruiseByDT bool
}

// Validate checks that every constant is finite and DT is positive.
func (c Constants) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"gravity", c.Gravity},
		{"y_max", c.YMax},
		{"x_max", c.XMax},
		{"accel", c.Accel},
		{"decel", c.Decel},
		{"jump_impulse", c.JumpImpulse},
		{"dt", c.DT},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("motion: %s must be finite, got %v", f.name, f.v)
		}
	}
	if c.DT <= 0 {
		return fmt.Errorf("motion: dt must be positive, got %v", c.DT)
	}
	if c.XMax < 0 {
		return fmt.Errorf("motion: x_max must not be negative, got %v", c.XMax)
	}
	if c.Accel < 0 || c.Decel < 0 {
		return fmt.Errorf("motion: accel and decel must not be negative, got %v and %v", c.Accel, c.Decel)
	}
	return nil
}

// Flags are derived from collision outcomes each tick.
type Flags struct {
	TouchingGround  bool
	TouchingCeiling bool
	Climbing        bool // reserved
	DashAllowed     bool // reserved
}

// Body is the kinematic state of the character.
type Body struct {
	Left, Top     float64
	Width, Height float64
	VX, VY        float64
	Flags         Flags
}

// NewBody creates a body at rest from a layout snapshot.
func NewBody(layout core.Rect) (Body, error) {
	if !layout.Valid() {
		return Body{}, fmt.Errorf("motion: invalid body layout %+v", layout)
	}
	return Body{
		Left:   layout.X,
		Top:    layout.Y,
		Width:  layout.W,
		Height: layout.H,
		Flags:  Flags{DashAllowed: true},
	}, nil
}

// Box returns the body's current bounding box.
func (b Body) Box() core.Rect {
	return core.NewRect(b.Left, b.Top, b.Width, b.Height)
}

// Frame is what the render sink receives after each tick.
type Frame struct {
	Tick      uint64
	Left, Top int // floored scene coordinates
	VX, VY    float64
	Flags     Flags
}

// Stats counts notable events over the lifetime of a character.
type Stats struct {
	Ticks    uint64
	Jumps    int
	Landings int
	MaxLeft  float64 // farthest right the body's left edge reached
}
