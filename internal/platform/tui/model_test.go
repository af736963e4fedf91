package tui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/motion"
	"github.com/vovakirdan/tui-platformer/internal/scene"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

func testLevel() scene.Level {
	return scene.Level{
		ID:    "yard",
		Title: "Yard",
		CellW: 8,
		CellH: 16,
		Elements: []scene.Element{
			{ID: scene.PlayerID, Box: core.NewRect(32, 320, 16, 32)},
			{ID: "floor", Tags: []string{"ground"}, Box: core.NewRect(0, 352, 640, 48)},
		},
	}
}

func newTestModel(t *testing.T, store *storage.Store) PlayModel {
	t.Helper()
	m, err := NewPlayModel(config.Default(), testLevel(), store, core.DefaultConfig(), "tester", nil)
	require.NoError(t, err)
	t.Cleanup(func() { m.session.Close() })
	return m
}

func update(t *testing.T, m PlayModel, msg tea.Msg) PlayModel {
	t.Helper()
	next, _ := m.Update(msg)
	pm, ok := next.(PlayModel)
	require.True(t, ok)
	return pm
}

func TestPlayModelForwardsMovementKeys(t *testing.T) {
	m := newTestModel(t, nil)

	m = update(t, m, runeKey('d'))

	assert.True(t, m.session.Keys().IsHeld("KeyD"))
	assert.True(t, m.holds.Held("KeyD"))
}

func TestPlayModelReleasesQuietKeys(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, runeKey('d'))

	m = update(t, m, PollMsg(time.Now().Add(5*time.Second)))

	assert.False(t, m.session.Keys().IsHeld("KeyD"))
}

func TestPlayModelPause(t *testing.T) {
	m := newTestModel(t, nil)
	m.Init()
	require.True(t, m.session.Running())
	m = update(t, m, runeKey('d'))

	m = update(t, m, runeKey('p'))
	assert.True(t, m.Paused())
	assert.False(t, m.session.Running())
	assert.False(t, m.session.Keys().IsHeld("KeyD"))

	// Movement is ignored while paused.
	m = update(t, m, runeKey('a'))
	assert.False(t, m.session.Keys().IsHeld("KeyA"))

	m = update(t, m, runeKey('p'))
	assert.False(t, m.Paused())
	assert.True(t, m.session.Running())
}

func TestPlayModelBackOnlyWhenPaused(t *testing.T) {
	m := newTestModel(t, nil)

	m = update(t, m, runeKey('b'))
	assert.False(t, m.BackToMenu())

	m = update(t, m, runeKey('p'))
	m = update(t, m, runeKey('b'))
	assert.True(t, m.BackToMenu())
	assert.Empty(t, m.View())
}

func TestPlayModelFrameMsg(t *testing.T) {
	m := newTestModel(t, nil)

	m = update(t, m, FrameMsg(motion.Frame{Tick: 7, Left: 40, Top: 320}))

	assert.Equal(t, uint64(7), m.Frame().Tick)
	assert.Contains(t, m.View(), "Yard")
}

func TestPlayModelQuitSavesRun(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	m := newTestModel(t, store)
	m.Init()
	require.Eventually(t, func() bool {
		return m.session.Character().Stats().Ticks > 0
	}, 2*time.Second, 5*time.Millisecond)

	m = update(t, m, runeKey('q'))
	assert.True(t, m.IsQuitting())

	runs, err := store.RecentRuns("yard", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "tester", runs[0].Player)
	assert.Positive(t, runs[0].Ticks)

	// A second quit does not record the run again.
	m = update(t, m, runeKey('q'))
	runs, err = store.RecentRuns("yard", 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestPlayModelRestart(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, runeKey('d'))
	for range 5 {
		m.session.Step()
	}
	require.Greater(t, m.session.Character().Body().Left, 32.0)

	m = update(t, m, runeKey('r'))

	assert.Equal(t, 32, m.Frame().Left)
	assert.False(t, m.session.Keys().IsHeld("KeyD"))
	assert.False(t, m.holds.Held("KeyD"))
}

func TestFrameSinkKeepsNewest(t *testing.T) {
	s := newFrameSink()
	s.Present(motion.Frame{Tick: 1})
	s.Present(motion.Frame{Tick: 2})

	msg := s.waitForFrame()()
	assert.Equal(t, FrameMsg(motion.Frame{Tick: 2}), msg)

	s.Close()
	assert.Nil(t, s.waitForFrame()())
}
