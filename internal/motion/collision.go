package motion

import "github.com/vovakirdan/tui-platformer/internal/core"

// CeilingVerdict says how a resolution pass affects TouchingCeiling.
type CeilingVerdict int

const (
	CeilingUnchanged CeilingVerdict = iota // no overlap, flag keeps its value
	CeilingClear                           // overlap approached from above
	CeilingSet                             // overlap approached from below
)

// Contact is the outcome of testing the body against one obstacle.
// HasLeft/HasTop are false when there is no overlap.
type Contact struct {
	Left, Top       float64
	HasLeft, HasTop bool
	Ceiling         CeilingVerdict
}

// Narrow tests the body box against one obstacle and, on overlap, returns
// the corrected left and top that put the body flush against the side it
// came from. Both axes are always resolved together; the caller picks the
// axis it cares about.
func Narrow(body, ob core.Rect) Contact {
	right := ob.Right()
	bottom := ob.Bottom()

	horizontal := !(body.X >= right || body.Right() <= ob.X)
	vertical := body.Y < bottom && body.Bottom() > ob.Y
	if !horizontal || !vertical {
		return Contact{}
	}

	c := Contact{HasLeft: true, HasTop: true}

	if body.Y <= bottom && body.Y <= ob.Y {
		c.Top = ob.Y - body.H
		c.Ceiling = CeilingClear
	} else {
		c.Top = bottom
		c.Ceiling = CeilingSet
	}

	if body.X <= right && body.X <= ob.X {
		c.Left = ob.X - body.W
	} else {
		c.Left = right
	}

	return c
}

// Resolution aggregates contacts over every obstacle of a snapshot.
type Resolution struct {
	Contact
	Skipped int // malformed obstacles ignored this pass
}

// Broad folds Narrow over the obstacles in order. A later obstacle's
// correction overwrites an earlier one on the same axis, and the last
// ceiling verdict wins. This is only correct while the body touches at
// most one obstacle per axis.
func Broad(body core.Rect, obstacles []core.Rect) Resolution {
	var res Resolution
	for _, ob := range obstacles {
		if !ob.Valid() {
			res.Skipped++
			continue
		}
		c := Narrow(body, ob)
		if c.HasLeft {
			res.Left, res.HasLeft = c.Left, true
		}
		if c.HasTop {
			res.Top, res.HasTop = c.Top, true
		}
		if c.Ceiling != CeilingUnchanged {
			res.Ceiling = c.Ceiling
		}
	}
	return res
}
