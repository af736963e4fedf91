package motion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

func TestNarrowNoOverlap(t *testing.T) {
	tests := []struct {
		name string
		body core.Rect
		ob   core.Rect
	}{
		{"left of obstacle", core.NewRect(0, 0, 10, 10), core.NewRect(20, 0, 10, 10)},
		{"touching right edge", core.NewRect(30, 0, 10, 10), core.NewRect(20, 0, 10, 10)},
		{"touching left edge", core.NewRect(10, 0, 10, 10), core.NewRect(20, 0, 10, 10)},
		{"standing on top", core.NewRect(0, 0, 10, 10), core.NewRect(0, 10, 100, 5)},
		{"touching bottom", core.NewRect(0, 15, 10, 10), core.NewRect(0, 10, 100, 5)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Narrow(tc.body, tc.ob)
			assert.False(t, c.HasLeft)
			assert.False(t, c.HasTop)
			assert.Equal(t, CeilingUnchanged, c.Ceiling)
		})
	}
}

func TestNarrowFromAboveAndLeft(t *testing.T) {
	// Body sinking into the left part of a floor slab
	c := Narrow(core.NewRect(0, 4, 10, 10), core.NewRect(0, 10, 100, 5))

	assert.True(t, c.HasTop)
	assert.Equal(t, 0.0, c.Top)
	assert.Equal(t, CeilingClear, c.Ceiling)

	// body.left <= ob.left, so the horizontal candidate is the left side
	assert.True(t, c.HasLeft)
	assert.Equal(t, -10.0, c.Left)
}

func TestNarrowFromBelowAndRight(t *testing.T) {
	// Body poking up into the right part of a ceiling slab
	c := Narrow(core.NewRect(50, 12, 10, 10), core.NewRect(0, 0, 100, 15))

	assert.True(t, c.HasTop)
	assert.Equal(t, 15.0, c.Top)
	assert.Equal(t, CeilingSet, c.Ceiling)

	assert.True(t, c.HasLeft)
	assert.Equal(t, 100.0, c.Left)
}

func TestNarrowWallFromLeft(t *testing.T) {
	// Walking right into a tall wall whose top is above the body
	c := Narrow(core.NewRect(13, 20, 10, 10), core.NewRect(20, 0, 10, 100))

	assert.Equal(t, 10.0, c.Left)
	// Wall top is above the body top, so vertical resolution treats it as
	// approached from below
	assert.Equal(t, 100.0, c.Top)
	assert.Equal(t, CeilingSet, c.Ceiling)
}

func TestBroadLastObstacleWins(t *testing.T) {
	body := core.NewRect(5, 5, 10, 10)
	obstacles := []core.Rect{
		core.NewRect(0, 12, 50, 5), // floor: top -> 2
		core.NewRect(0, 0, 50, 8),  // ceiling: top -> 8
	}

	res := Broad(body, obstacles)
	assert.True(t, res.HasTop)
	assert.Equal(t, 8.0, res.Top)
	assert.Equal(t, CeilingSet, res.Ceiling)

	// Reverse order flips the winner
	res = Broad(body, []core.Rect{obstacles[1], obstacles[0]})
	assert.Equal(t, 2.0, res.Top)
	assert.Equal(t, CeilingClear, res.Ceiling)
}

func TestBroadKeepsEarlierAxisWhenLaterMisses(t *testing.T) {
	body := core.NewRect(0, 4, 10, 10)
	obstacles := []core.Rect{
		core.NewRect(0, 10, 100, 5),
		core.NewRect(500, 500, 5, 5), // far away
	}

	res := Broad(body, obstacles)
	assert.True(t, res.HasTop)
	assert.Equal(t, 0.0, res.Top)
	assert.Equal(t, CeilingClear, res.Ceiling)
}

func TestBroadSkipsMalformed(t *testing.T) {
	body := core.NewRect(0, 4, 10, 10)
	obstacles := []core.Rect{
		core.NewRect(0, 10, 100, 5),
		core.NewRect(math.NaN(), 0, 10, 10),
		core.NewRect(0, 0, -5, 10),
		core.NewRect(0, 0, 10, math.Inf(1)),
	}

	res := Broad(body, obstacles)
	assert.Equal(t, 3, res.Skipped)
	assert.True(t, res.HasTop)
	assert.Equal(t, 0.0, res.Top)
}

func TestBroadEmpty(t *testing.T) {
	res := Broad(core.NewRect(0, 0, 10, 10), nil)
	assert.False(t, res.HasLeft)
	assert.False(t, res.HasTop)
	assert.Zero(t, res.Skipped)
}

func TestBroadNegativeCoordinateIsACorrection(t *testing.T) {
	// A correction of -1 is a real coordinate, not a "no hit" marker
	body := core.NewRect(0.5, -1, 2, 2)
	res := Broad(body, []core.Rect{core.NewRect(1, 0, 10, 10)})

	assert.True(t, res.HasLeft)
	assert.Equal(t, -1.0, res.Left)
	assert.True(t, res.HasTop)
	assert.Equal(t, -2.0, res.Top)
}
