package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

const eps = 1e-9

type staticObstacles []core.Rect

func (s staticObstacles) Obstacles() []core.Rect { return s }

func testConstants() Constants {
	return Constants{
		Gravity:     1,
		YMax:        100,
		XMax:        8,
		Accel:       4,
		Decel:       6,
		JumpImpulse: 22,
		DT:          0.75,
	}
}

func testBindings() core.Bindings {
	return core.Bindings{
		core.ActionUp:    "KeyW",
		core.ActionDown:  "KeyS",
		core.ActionLeft:  "KeyA",
		core.ActionRight: "KeyD",
		core.ActionDash:  "ShiftLeft",
		core.ActionClimb: "KeyK",
	}
}

func newTestCharacter(t *testing.T, layout core.Rect, obstacles ...core.Rect) (*Character, *core.KeySet) {
	t.Helper()
	return newTestCharacterWith(t, testConstants(), layout, obstacles...)
}

func newTestCharacterWith(t *testing.T, k Constants, layout core.Rect, obstacles ...core.Rect) (*Character, *core.KeySet) {
	t.Helper()
	keys := core.NewKeySet()
	c, err := NewCharacter(Spec{
		Constants: k,
		Bindings:  testBindings(),
		Layout:    layout,
	}, keys, staticObstacles(obstacles), Options{})
	require.NoError(t, err)
	return c, keys
}

func TestUpdateXIdleStaysPut(t *testing.T) {
	c, _ := newTestCharacter(t, core.NewRect(40, 0, 10, 10))

	for i := 0; i < 10; i++ {
		c.UpdateX()
	}

	b := c.Body()
	assert.Equal(t, 0.0, b.VX)
	assert.Equal(t, 40.0, b.Left)
}

func TestUpdateXAccelerateFromRest(t *testing.T) {
	c, keys := newTestCharacter(t, core.NewRect(0, 0, 10, 10))
	keys.Press("KeyD")

	c.UpdateX()

	b := c.Body()
	// v += 0.5*a*dt^2, x += v*dt + a*dt^3/6
	assert.InDelta(t, 0.5*4*0.75*0.75, b.VX, eps)
	assert.InDelta(t, 0.28125, b.Left, eps)
}

func TestUpdateXAccelerateLeft(t *testing.T) {
	c, keys := newTestCharacter(t, core.NewRect(100, 0, 10, 10))
	keys.Press("KeyA")

	c.UpdateX()

	b := c.Body()
	assert.InDelta(t, -1.125, b.VX, eps)
	assert.InDelta(t, 100-0.28125, b.Left, eps)
}

func TestUpdateXSpeedNeverExceedsMax(t *testing.T) {
	c, keys := newTestCharacter(t, core.NewRect(0, 0, 10, 10))
	keys.Press("KeyD")

	for i := 0; i < 50; i++ {
		c.UpdateX()
		assert.LessOrEqual(t, c.Body().VX, 8.0, "tick %d", i)
	}
	assert.Equal(t, 8.0, c.Body().VX)
}

func TestUpdateXCruiseAdvancesByRawVelocity(t *testing.T) {
	c, keys := newTestCharacter(t, core.NewRect(0, 0, 10, 10))
	c.body.VX = 8
	keys.Press("KeyD")

	c.UpdateX()

	b := c.Body()
	assert.Equal(t, 8.0, b.VX)
	assert.Equal(t, 8.0, b.Left)
}

func TestUpdateXCruiseScaledByDT(t *testing.T) {
	k := testConstants()
	k.ScaleCruiseByDT = true
	c, keys := newTestCharacterWith(t, k, core.NewRect(0, 0, 10, 10))
	c.body.VX = 8
	keys.Press("KeyD")

	c.UpdateX()

	assert.InDelta(t, 6.0, c.Body().Left, eps)
}

func TestUpdateXDecelerationSequence(t *testing.T) {
	c, _ := newTestCharacter(t, core.NewRect(0, 0, 10, 10))
	c.body.VX = 8

	expected := []float64{6.3125, 4.625, 0}
	for i, want := range expected {
		c.UpdateX()
		assert.InDelta(t, want, c.Body().VX, eps, "tick %d", i)
	}

	// Stays at rest afterwards
	left := c.Body().Left
	c.UpdateX()
	assert.Equal(t, 0.0, c.Body().VX)
	assert.Equal(t, left, c.Body().Left)
}

func TestUpdateXDecelerationSnapsBeforeCrossing(t *testing.T) {
	c, _ := newTestCharacter(t, core.NewRect(0, 0, 10, 10))
	c.body.VX = 3

	c.UpdateX()

	b := c.Body()
	assert.Equal(t, 0.0, b.VX)
	assert.InDelta(t, 3*0.75-6*0.75*0.75*0.75/6, b.Left, eps)
}

func TestUpdateXDecelerationLeftward(t *testing.T) {
	c, _ := newTestCharacter(t, core.NewRect(100, 0, 10, 10))
	c.body.VX = -8

	for i := 0; i < 10; i++ {
		c.UpdateX()
		assert.LessOrEqual(t, c.Body().VX, 0.0, "tick %d", i)
	}
	assert.Equal(t, 0.0, c.Body().VX)
}

func TestUpdateXBothHeldDecays(t *testing.T) {
	c, keys := newTestCharacter(t, core.NewRect(0, 0, 10, 10))
	c.body.VX = 8
	keys.Press("KeyD")
	keys.Press("KeyA")

	c.UpdateX()
	assert.InDelta(t, 6.3125, c.Body().VX, eps)

	c.UpdateX()
	assert.InDelta(t, 4.625, c.Body().VX, eps)
}

func TestUpdateXRepeatedPressIsIdempotent(t *testing.T) {
	once, onceKeys := newTestCharacter(t, core.NewRect(0, 0, 10, 10))
	many, manyKeys := newTestCharacter(t, core.NewRect(0, 0, 10, 10))

	onceKeys.Press("KeyD")
	for i := 0; i < 5; i++ {
		manyKeys.Press("KeyD")
	}

	once.UpdateX()
	many.UpdateX()
	assert.Equal(t, once.Body(), many.Body())
}

func TestUpdateXStopsAtWall(t *testing.T) {
	wall := core.NewRect(20, -50, 10, 100)
	c, keys := newTestCharacter(t, core.NewRect(9.5, 0, 10, 10), wall)
	c.body.VX = 8
	keys.Press("KeyD")

	c.UpdateX()

	b := c.Body()
	assert.Equal(t, 10.0, b.Left)
	assert.Equal(t, 0.0, b.VX)
}

func TestUpdateYGravityFall(t *testing.T) {
	k := testConstants()
	k.YMax = 5
	c, _ := newTestCharacterWith(t, k, core.NewRect(0, 0, 10, 10))

	prevTop := c.Body().Top
	prevVY := c.Body().VY
	for i := 0; i < 10; i++ {
		c.UpdateY()
		b := c.Body()
		assert.Greater(t, b.Top, prevTop, "tick %d", i)
		if prevVY < k.YMax {
			assert.Greater(t, b.VY, prevVY, "tick %d", i)
		}
		assert.LessOrEqual(t, b.VY, k.YMax, "tick %d", i)
		assert.False(t, b.Flags.TouchingGround)
		prevTop, prevVY = b.Top, b.VY
	}
	assert.Equal(t, 5.0, c.Body().VY)
}

func TestUpdateYLandsOnFloor(t *testing.T) {
	floor := core.NewRect(0, 10, 100, 5)
	c, _ := newTestCharacter(t, core.NewRect(0, 0, 10, 10), floor)
	c.body.VY = 5

	c.UpdateX()
	c.UpdateY()

	b := c.Body()
	assert.Equal(t, 0.0, b.Top)
	assert.Equal(t, 0.0, b.VY)
	assert.True(t, b.Flags.TouchingGround)
	assert.False(t, b.Flags.TouchingCeiling)
	assert.Equal(t, 1, c.Stats().Landings)
}

func TestUpdateYRestingCountsOneLanding(t *testing.T) {
	floor := core.NewRect(0, 10, 100, 5)
	c, _ := newTestCharacter(t, core.NewRect(0, 0, 10, 10), floor)

	for i := 0; i < 20; i++ {
		c.UpdateX()
		c.UpdateY()
		assert.Equal(t, 0.0, c.Body().Top, "tick %d", i)
	}
	assert.True(t, c.Body().Flags.TouchingGround)
	assert.Equal(t, 1, c.Stats().Landings)
	assert.Equal(t, uint64(20), c.Stats().Ticks)
}

func TestUpdateYJumpFromGround(t *testing.T) {
	floor := core.NewRect(0, 10, 100, 5)
	c, keys := newTestCharacter(t, core.NewRect(0, 0, 10, 10), floor)
	c.UpdateY() // settle
	require.True(t, c.Body().Flags.TouchingGround)

	keys.Press("KeyW")
	c.UpdateY()

	b := c.Body()
	assert.False(t, b.Flags.TouchingGround)
	// Gravity is still added on the jump tick
	assert.InDelta(t, -22+1, b.VY, eps)
	assert.InDelta(t, -22*0.75+0.5*0.75*0.75, b.Top, eps)
	assert.Equal(t, 1, c.Stats().Jumps)
}

func TestUpdateYNoJumpInAir(t *testing.T) {
	c, keys := newTestCharacter(t, core.NewRect(0, 0, 10, 10))
	keys.Press("KeyW")

	c.UpdateY()

	assert.InDelta(t, 1.0, c.Body().VY, eps)
	assert.Zero(t, c.Stats().Jumps)
}

func TestUpdateYHoldingJumpRepeatsOnlyAfterLanding(t *testing.T) {
	// Body taller than the fastest per-tick fall so landings never tunnel
	floor := core.NewRect(0, 100, 100, 50)
	c, keys := newTestCharacter(t, core.NewRect(0, 60, 10, 40), floor)
	c.UpdateY()
	keys.Press("KeyW")

	jumps := 0
	for i := 0; i < 200; i++ {
		before := c.Stats().Jumps
		wasGrounded := c.Body().Flags.TouchingGround
		c.UpdateY()
		if c.Stats().Jumps > before {
			assert.True(t, wasGrounded, "jumped while airborne at tick %d", i)
			jumps++
		}
	}
	assert.Greater(t, jumps, 1)
}

func TestUpdateYCeilingSuppressesGrounding(t *testing.T) {
	ceiling := core.NewRect(0, 0, 100, 18)
	c, _ := newTestCharacter(t, core.NewRect(0, 20, 10, 10), ceiling)
	c.body.VY = -10

	c.UpdateY()

	b := c.Body()
	assert.Equal(t, 18.0, b.Top)
	assert.Equal(t, 0.0, b.VY)
	assert.True(t, b.Flags.TouchingCeiling)
	assert.False(t, b.Flags.TouchingGround)
}

func TestUpdateYFallingClearsGround(t *testing.T) {
	c, _ := newTestCharacter(t, core.NewRect(0, 0, 10, 10))
	c.body.Flags.TouchingGround = true

	c.UpdateY()

	assert.Greater(t, c.Body().VY, 0.0)
	assert.False(t, c.Body().Flags.TouchingGround)
}

func TestPresentFloorsPosition(t *testing.T) {
	keys := core.NewKeySet()
	var got []Frame
	c, err := NewCharacter(Spec{
		Constants: testConstants(),
		Bindings:  testBindings(),
		Layout:    core.NewRect(3.7, -0.5, 10, 10),
	}, keys, staticObstacles(nil), Options{
		Sink: SinkFunc(func(f Frame) { got = append(got, f) }),
	})
	require.NoError(t, err)

	c.Present()

	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Left)
	assert.Equal(t, -1, got[0].Top)
}

func TestNewCharacterMissingBinding(t *testing.T) {
	b := testBindings()
	delete(b, core.ActionLeft)

	_, err := NewCharacter(Spec{
		Constants: testConstants(),
		Bindings:  b,
		Layout:    core.NewRect(0, 0, 10, 10),
	}, core.NewKeySet(), staticObstacles(nil), Options{})

	require.ErrorIs(t, err, ErrMissingBinding)
	assert.Contains(t, err.Error(), "left")
}

func TestNewCharacterInvalidConstants(t *testing.T) {
	k := testConstants()
	k.DT = 0

	_, err := NewCharacter(Spec{
		Constants: k,
		Bindings:  testBindings(),
		Layout:    core.NewRect(0, 0, 10, 10),
	}, core.NewKeySet(), staticObstacles(nil), Options{})
	assert.Error(t, err)
}

func TestNewCharacterInvalidLayout(t *testing.T) {
	_, err := NewCharacter(Spec{
		Constants: testConstants(),
		Bindings:  testBindings(),
		Layout:    core.NewRect(0, 0, -10, 10),
	}, core.NewKeySet(), staticObstacles(nil), Options{})
	assert.Error(t, err)
}

func TestResetRestoresLayout(t *testing.T) {
	c, keys := newTestCharacter(t, core.NewRect(5, 5, 10, 10))
	keys.Press("KeyD")
	for i := 0; i < 5; i++ {
		c.UpdateX()
		c.UpdateY()
	}

	c.Reset()

	b := c.Body()
	assert.Equal(t, 5.0, b.Left)
	assert.Equal(t, 5.0, b.Top)
	assert.Zero(t, b.VX)
	assert.Zero(t, b.VY)
	assert.True(t, b.Flags.DashAllowed)
	assert.Equal(t, uint64(5), c.Stats().Ticks)
}

func TestSpeedInvariantUnderMixedInput(t *testing.T) {
	floor := core.NewRect(-1000, 100, 3000, 10)
	c, keys := newTestCharacter(t, core.NewRect(0, 90, 10, 10), floor)

	pattern := []core.KeyCode{"KeyD", "KeyA", "KeyW"}
	for i := 0; i < 300; i++ {
		code := pattern[i%len(pattern)]
		if i%7 < 4 {
			keys.Press(code)
		} else {
			keys.Release(code)
		}
		c.UpdateX()
		c.UpdateY()

		b := c.Body()
		assert.LessOrEqual(t, b.VX, 8.0, "tick %d", i)
		assert.GreaterOrEqual(t, b.VX, -8.0, "tick %d", i)
		assert.LessOrEqual(t, b.VY, 100.0, "tick %d", i)
		if b.VY > 0 {
			assert.False(t, b.Flags.TouchingGround, "tick %d", i)
		}
	}
}

func TestBeginTickSharesOneSnapshot(t *testing.T) {
	floor := core.NewRect(0, 10, 100, 5)
	c, keys := newTestCharacter(t, core.NewRect(0, 0, 10, 10), floor)
	c.UpdateY() // settle
	require.True(t, c.Body().Flags.TouchingGround)

	c.BeginTick()
	keys.Press("KeyD")
	keys.Press("KeyW")
	c.UpdateX()
	c.UpdateY()

	b := c.Body()
	assert.Equal(t, 0.0, b.VX, "press after the snapshot is not seen by UpdateX")
	assert.True(t, b.Flags.TouchingGround, "press after the snapshot is not seen by UpdateY")
	assert.Equal(t, 0, c.Stats().Jumps)

	c.BeginTick()
	c.UpdateX()
	c.UpdateY()

	b = c.Body()
	assert.Greater(t, b.VX, 0.0)
	assert.False(t, b.Flags.TouchingGround)
	assert.Equal(t, 1, c.Stats().Jumps)
}

func TestLatchEndsWithUpdateY(t *testing.T) {
	c, keys := newTestCharacter(t, core.NewRect(0, 0, 10, 10))

	c.BeginTick()
	c.UpdateX()
	c.UpdateY()

	// no BeginTick: the update reads live keys again
	keys.Press("KeyD")
	c.UpdateX()
	assert.Greater(t, c.Body().VX, 0.0)
}
