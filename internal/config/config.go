// Package config provides YAML-based configuration loading and validation
// for the platformer.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/motion"
)

var (
	// ErrMissingOption is returned when a required option is absent.
	ErrMissingOption = errors.New("config: missing required option")
	// ErrInvalidOption is returned when an option has an unusable value.
	ErrInvalidOption = errors.New("config: invalid option")
)

// Config is the complete platformer configuration.
type Config struct {
	Physics     Physics `yaml:"physics"`
	Keys        Keys    `yaml:"keys"`
	ObstacleTag string  `yaml:"obstacle_tag"`
	TickRate    int     `yaml:"tick_rate"` // scheduler Hz, independent of dt
	Input       Input   `yaml:"input"`
}

// Physics holds the motion constants. Pointers distinguish an absent key
// from an explicit zero.
type Physics struct {
	Gravity         *float64 `yaml:"gravity"`
	YMax            *float64 `yaml:"y_max"`
	XMax            *float64 `yaml:"x_max"`
	Accel           *float64 `yaml:"accel"`
	Decel           *float64 `yaml:"decel"`
	JumpImpulse     *float64 `yaml:"jump_impulse"`
	DT              *float64 `yaml:"dt"`
	ScaleCruiseByDT bool     `yaml:"scale_cruise_by_dt"`
}

// Keys binds logical actions to key codes such as "KeyW" or "ArrowUp".
type Keys struct {
	Up    string `yaml:"up"`
	Down  string `yaml:"down"`
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
	Dash  string `yaml:"dash"`
	Climb string `yaml:"climb"`
}

// Input tunes terminal key-release emulation. Zero values use defaults.
type Input struct {
	HoldMS   int `yaml:"hold_ms"`   // release after this long without a first repeat
	RepeatMS int `yaml:"repeat_ms"` // release after this long between repeats
}

const (
	defaultHoldMS   = 550
	defaultRepeatMS = 120
)

// Hold returns the initial hold window.
func (in Input) Hold() time.Duration {
	if in.HoldMS <= 0 {
		return defaultHoldMS * time.Millisecond
	}
	return time.Duration(in.HoldMS) * time.Millisecond
}

// Repeat returns the hold window once a key is auto-repeating.
func (in Input) Repeat() time.Duration {
	if in.RepeatMS <= 0 {
		return defaultRepeatMS * time.Millisecond
	}
	return time.Duration(in.RepeatMS) * time.Millisecond
}

// Parse decodes YAML and validates the result. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: yaml decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every missing or invalid option at once.
func (c Config) Validate() error {
	var errs []error

	required := []struct {
		name string
		v    *float64
	}{
		{"physics.gravity", c.Physics.Gravity},
		{"physics.y_max", c.Physics.YMax},
		{"physics.x_max", c.Physics.XMax},
		{"physics.accel", c.Physics.Accel},
		{"physics.decel", c.Physics.Decel},
		{"physics.jump_impulse", c.Physics.JumpImpulse},
		{"physics.dt", c.Physics.DT},
	}
	physicsComplete := true
	for _, r := range required {
		if r.v == nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingOption, r.name))
			physicsComplete = false
		}
	}

	bindings := c.Bindings()
	for _, a := range bindings.Missing() {
		errs = append(errs, fmt.Errorf("%w: keys.%s", ErrMissingOption, a))
	}

	if c.ObstacleTag == "" {
		errs = append(errs, fmt.Errorf("%w: obstacle_tag", ErrMissingOption))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("%w: tick_rate must be positive, got %d", ErrInvalidOption, c.TickRate))
	}

	if physicsComplete {
		if err := c.Constants().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidOption, err))
		}
	}

	return errors.Join(errs...)
}

// Constants converts the physics section. Call only on a validated config.
func (c Config) Constants() motion.Constants {
	p := c.Physics
	return motion.Constants{
		Gravity:         deref(p.Gravity),
		YMax:            deref(p.YMax),
		XMax:            deref(p.XMax),
		Accel:           deref(p.Accel),
		Decel:           deref(p.Decel),
		JumpImpulse:     deref(p.JumpImpulse),
		DT:              deref(p.DT),
		ScaleCruiseByDT: p.ScaleCruiseByDT,
	}
}

// Bindings converts the keys section.
func (c Config) Bindings() core.Bindings {
	b := core.Bindings{}
	set := func(a core.Action, code string) {
		if code != "" {
			b[a] = core.KeyCode(code)
		}
	}
	set(core.ActionUp, c.Keys.Up)
	set(core.ActionDown, c.Keys.Down)
	set(core.ActionLeft, c.Keys.Left)
	set(core.ActionRight, c.Keys.Right)
	set(core.ActionDash, c.Keys.Dash)
	set(core.ActionClimb, c.Keys.Climb)
	return b
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
