package platformer

import (
	"fmt"
	"math"

	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/motion"
	"github.com/vovakirdan/tui-platformer/internal/scene"
)

// HUDHeight is the number of status rows above the play area.
const HUDHeight = 1

const (
	minWidth  = 20
	minHeight = 6
)

// Glyphs for scene elements.
const (
	glyphSolid  = '█'
	glyphDecor  = '▒'
	glyphPlayer = '▓'
)

// Render draws the scene and the character at frame into dst.
// The camera follows the character and stays inside the scene bounds.
func (s *Session) Render(dst *core.Screen, frame motion.Frame, paused bool) {
	dst.Clear()

	if dst.Width() < minWidth || dst.Height() < minHeight {
		dst.DrawTextCentered(dst.Height()/2, "Terminal too small")
		return
	}

	cw, ch := s.level.CellW, s.level.CellH
	body := s.char.Body()
	player := core.NewRect(float64(frame.Left), float64(frame.Top), body.Width, body.Height)
	pcell := toCells(player, cw, ch)

	viewW, viewH := dst.Width(), dst.Height()-HUDHeight
	bounds := toCells(s.scene.Bounds(), cw, ch)
	camX := camera(pcell.X+pcell.W/2, bounds.X, bounds.Right(), viewW)
	camY := camera(pcell.Y+pcell.H/2, bounds.Y, bounds.Bottom(), viewH)

	offset := func(r core.CellRect) core.CellRect {
		return core.NewCellRect(r.X-camX, r.Y-camY+HUDHeight, r.W, r.H)
	}

	for _, e := range s.scene.Elements() {
		if e.ID == scene.PlayerID {
			continue
		}
		glyph := glyphDecor
		if e.HasTag(s.obstacleTag) {
			glyph = glyphSolid
		}
		r := clip(offset(toCells(e.Box, cw, ch)), viewW, dst.Height())
		dst.DrawRect(r, glyph, e.Color)
	}

	color := core.ColorBrightCyan
	if e, ok := s.scene.Element(scene.PlayerID); ok && e.Color != core.ColorDefault {
		color = e.Color
	}
	dst.DrawRect(clip(offset(pcell), viewW, dst.Height()), glyphPlayer, color)

	s.drawHUD(dst, frame, paused)
	if paused {
		drawPauseOverlay(dst)
	}
}

// drawPauseOverlay draws a framed notice in the middle of the play area.
func drawPauseOverlay(dst *core.Screen) {
	const (
		title    = "PAUSED"
		subtitle = "p resume  b menu"
	)
	boxW := core.Max(len(title), len(subtitle)) + 4
	boxH := 5
	boxX := (dst.Width() - boxW) / 2
	boxY := HUDHeight + (dst.Height()-HUDHeight-boxH)/2

	box := core.NewCellRect(boxX, boxY, boxW, boxH)
	dst.DrawRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box)

	dst.DrawText(boxX+(boxW-len(title))/2, boxY+1, title)
	dst.DrawText(boxX+(boxW-len(subtitle))/2, boxY+3, subtitle)
}

func (s *Session) drawHUD(dst *core.Screen, frame motion.Frame, paused bool) {
	state := "air"
	switch {
	case frame.Flags.TouchingGround:
		state = "ground"
	case frame.Flags.TouchingCeiling:
		state = "ceiling"
	}

	hud := fmt.Sprintf(" %s | t %d | x %d y %d | vx %+.2f vy %+.2f | %s",
		s.level.Title, frame.Tick, frame.Left, frame.Top, frame.VX, frame.VY, state)
	dst.DrawText(0, 0, hud)

	if paused {
		label := " PAUSED "
		dst.DrawText(dst.Width()-len(label), 0, label)
	}
}

// toCells converts a box in scene units to the cells it touches.
func toCells(r core.Rect, cw, ch float64) core.CellRect {
	x0 := int(math.Floor(r.X / cw))
	y0 := int(math.Floor(r.Y / ch))
	x1 := int(math.Ceil(r.Right() / cw))
	y1 := int(math.Ceil(r.Bottom() / ch))
	return core.NewCellRect(x0, y0, x1-x0, y1-y0)
}

// camera returns the first visible cell on one axis. A scene narrower than
// the view is centered.
func camera(focus, lo, hi, view int) int {
	span := hi - lo
	if span <= view {
		return lo - (view-span)/2
	}
	return core.Clamp(focus-view/2, lo, hi-view)
}

// clip limits r to the visible area so huge elements cost nothing offscreen.
func clip(r core.CellRect, w, h int) core.CellRect {
	x0 := core.Max(r.X, 0)
	y0 := core.Max(r.Y, HUDHeight)
	x1 := core.Min(r.Right(), w)
	y1 := core.Min(r.Bottom(), h)
	if x1 <= x0 || y1 <= y0 {
		return core.CellRect{}
	}
	return core.NewCellRect(x0, y0, x1-x0, y1-y0)
}
