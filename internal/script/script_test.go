package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

const runRight = `
events:
  - {tick: 10, release: KeyD}
  - {tick: 0, press: KeyD}
  - {tick: 4, press: KeyW}
  - {tick: 5, release: KeyW}
`

func TestParseSortsByTick(t *testing.T) {
	s, err := Parse([]byte(runRight))
	require.NoError(t, err)

	ticks := make([]uint64, len(s.Events))
	for i, e := range s.Events {
		ticks[i] = e.Tick
	}
	assert.Equal(t, []uint64{0, 4, 5, 10}, ticks)
	assert.Equal(t, uint64(10), s.Last())
}

func TestParseRejectsBadEvents(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"neither", "events:\n  - {tick: 1}\n"},
		{"both", "events:\n  - {tick: 1, press: KeyA, release: KeyA}\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			assert.ErrorIs(t, err, ErrBadEvent)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	s, err := Parse([]byte("events: []\n"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), s.Last())
	assert.True(t, NewPlayer(s, core.NewKeySet()).Done())
}

func TestPlayerAppliesEventsOnTheirTick(t *testing.T) {
	s, err := Parse([]byte(runRight))
	require.NoError(t, err)
	keys := core.NewKeySet()
	p := NewPlayer(s, keys)

	p.Step() // tick 0
	assert.True(t, keys.IsHeld("KeyD"))
	assert.False(t, keys.IsHeld("KeyW"))

	for i := 1; i <= 4; i++ {
		p.Step()
	}
	assert.True(t, keys.IsHeld("KeyW"))

	p.Step() // tick 5
	assert.False(t, keys.IsHeld("KeyW"))
	assert.True(t, keys.IsHeld("KeyD"))
	assert.False(t, p.Done())

	for i := 6; i <= 10; i++ {
		p.Step()
	}
	assert.False(t, keys.IsHeld("KeyD"))
	assert.True(t, p.Done())
}

func TestPlayerSameTickOrder(t *testing.T) {
	s, err := Parse([]byte("events:\n  - {tick: 2, press: KeyA}\n  - {tick: 2, release: KeyA}\n"))
	require.NoError(t, err)
	keys := core.NewKeySet()
	p := NewPlayer(s, keys)

	for i := 0; i < 3; i++ {
		p.Step()
	}
	assert.False(t, keys.IsHeld("KeyA"))
	assert.True(t, p.Done())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(runRight), 0o600))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, s.Events, 4)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
