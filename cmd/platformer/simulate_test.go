package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/games/platformer"
	"github.com/vovakirdan/tui-platformer/internal/registry"
	"github.com/vovakirdan/tui-platformer/internal/script"
)

func newSimulation(t *testing.T, src string, every uint64) (*simulation, *platformer.Session, *bytes.Buffer) {
	t.Helper()
	level, err := registry.Create("first-steps")
	require.NoError(t, err)

	var out bytes.Buffer
	sim := &simulation{out: &out, every: every}
	opts := platformer.Options{Sink: sim}
	if src != "" {
		sc, err := script.Parse([]byte(src))
		require.NoError(t, err)
		opts.Script = &sc
	}

	s, err := platformer.NewSession(config.Default(), level, opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return sim, s, &out
}

func TestSimulationStopsAfterScript(t *testing.T) {
	sim, s, _ := newSimulation(t, "events:\n  - {tick: 0, press: KeyD}\n  - {tick: 9, release: KeyD}\n", 0)

	ran := sim.run(s, 0, true, 5)

	assert.Equal(t, uint64(15), ran)
	assert.True(t, s.ScriptDone())
	assert.Equal(t, uint64(15), sim.last.Tick)
	assert.False(t, s.Keys().IsHeld("KeyD"))
}

func TestSimulationTicksOverrideScript(t *testing.T) {
	sim, s, _ := newSimulation(t, "events:\n  - {tick: 50, press: KeyD}\n", 0)

	ran := sim.run(s, 20, true, 5)

	assert.Equal(t, uint64(20), ran)
	assert.False(t, s.ScriptDone())
}

func TestSimulationDefaultLength(t *testing.T) {
	sim, s, _ := newSimulation(t, "", 0)

	assert.Equal(t, uint64(defaultTicks), sim.run(s, 0, false, 5))
}

func TestSimulationPrintsFrames(t *testing.T) {
	tests := []struct {
		name  string
		every uint64
		ticks uint64
		lines int
	}{
		{"every tick", 1, 4, 4},
		{"every other", 2, 5, 3}, // 2, 4 and the last
		{"last only", 0, 7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, s, out := newSimulation(t, "", tt.every)
			sim.run(s, tt.ticks, false, 0)

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			assert.Len(t, lines, tt.lines)
			assert.Equal(t, fmt.Sprint(tt.ticks), strings.Fields(lines[len(lines)-1])[0])
		})
	}
}
