// Package script replays timed key presses and releases, so a run can be
// reproduced without a keyboard.
package script

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

// ErrBadEvent is returned for an event that does not name exactly one of
// press or release.
var ErrBadEvent = errors.New("script: event must set exactly one of press or release")

// Event changes one key's state at a tick.
type Event struct {
	Tick    uint64 `yaml:"tick"`
	Press   string `yaml:"press,omitempty"`
	Release string `yaml:"release,omitempty"`
}

// Script is an ordered list of events.
type Script struct {
	Events []Event `yaml:"events"`
}

// Parse decodes a YAML script and sorts its events by tick. Events on the
// same tick keep their file order.
func Parse(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("script: yaml unmarshal: %w", err)
	}
	for i, e := range s.Events {
		if (e.Press == "") == (e.Release == "") {
			return Script{}, fmt.Errorf("%w (event %d at tick %d)", ErrBadEvent, i, e.Tick)
		}
	}
	sort.SliceStable(s.Events, func(i, j int) bool {
		return s.Events[i].Tick < s.Events[j].Tick
	})
	return s, nil
}

// LoadFile reads and parses a script file.
func LoadFile(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("script: read %s: %w", path, err)
	}
	return Parse(data)
}

// Last returns the tick of the final event, or 0 for an empty script.
func (s Script) Last() uint64 {
	if len(s.Events) == 0 {
		return 0
	}
	return s.Events[len(s.Events)-1].Tick
}

// Player feeds a script into a key set one tick at a time.
type Player struct {
	mu     sync.Mutex
	script Script
	keys   *core.KeySet
	next   int
	tick   uint64
}

// NewPlayer creates a player positioned before tick 0.
func NewPlayer(s Script, keys *core.KeySet) *Player {
	return &Player{script: s, keys: keys}
}

// Step applies every event due on the current tick, then advances.
// It is meant to run as the first op of each scheduler tick.
func (p *Player) Step() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.next < len(p.script.Events) && p.script.Events[p.next].Tick <= p.tick {
		e := p.script.Events[p.next]
		if e.Press != "" {
			p.keys.Press(core.KeyCode(e.Press))
		} else {
			p.keys.Release(core.KeyCode(e.Release))
		}
		p.next++
	}
	p.tick++
}

// Done reports whether every event has been applied.
func (p *Player) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next >= len(p.script.Events)
}
