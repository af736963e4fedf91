// Package tui provides the Bubble Tea integration for the platformer.
// It maps terminal keys onto held key codes, runs the session's scheduler
// beside the UI loop, and draws the frames it presents.
package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-platformer/internal/motion"
)

// pollRate is how often the UI checks for keys that went quiet.
const pollRate = 30

// PollMsg is sent to expire keys whose release was never reported.
type PollMsg time.Time

// pollCmd returns a Bubble Tea command that sends a poll message at the
// specified rate.
func pollCmd(rate int) tea.Cmd {
	interval := time.Second / time.Duration(rate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return PollMsg(t)
	})
}

// FrameMsg carries a frame presented by the simulation.
type FrameMsg motion.Frame

// frameSink is a render sink that hands frames to the UI loop. It keeps
// only the newest frame so a slow terminal never stalls the simulation.
type frameSink struct {
	ch     chan motion.Frame
	closed chan struct{}
	once   sync.Once
}

func newFrameSink() *frameSink {
	return &frameSink{
		ch:     make(chan motion.Frame, 1),
		closed: make(chan struct{}),
	}
}

// Close releases any pending waitForFrame.
func (s *frameSink) Close() {
	s.once.Do(func() { close(s.closed) })
}

// Present replaces any frame the UI has not picked up yet.
func (s *frameSink) Present(f motion.Frame) {
	select {
	case s.ch <- f:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- f:
	default:
	}
}

// waitForFrame blocks until the next frame is available or the sink is
// closed.
func (s *frameSink) waitForFrame() tea.Cmd {
	return func() tea.Msg {
		select {
		case f := <-s.ch:
			return FrameMsg(f)
		case <-s.closed:
			return nil
		}
	}
}
