package tui

import (
	"sort"
	"sync"
	"time"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

// HoldTracker turns terminal key presses into held/released state.
// Terminals report presses and auto-repeats but never releases, so a key
// counts as released once it goes quiet: for hold after the first press,
// or for repeat once auto-repeat has started.
type HoldTracker struct {
	hold   time.Duration
	repeat time.Duration

	mu   sync.Mutex
	keys map[core.KeyCode]holdState
}

type holdState struct {
	lastSeen  time.Time
	repeating bool
}

// NewHoldTracker creates a tracker with the given quiet windows.
func NewHoldTracker(hold, repeat time.Duration) *HoldTracker {
	return &HoldTracker{
		hold:   hold,
		repeat: repeat,
		keys:   make(map[core.KeyCode]holdState),
	}
}

// Touch records a press or repeat at now. It returns true on the first
// press of a key that was not already held.
func (h *HoldTracker) Touch(code core.KeyCode, now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	st, held := h.keys[code]
	if held {
		st.repeating = true
	}
	st.lastSeen = now
	h.keys[code] = st
	return !held
}

// Expire forgets keys that have been quiet too long and returns them,
// sorted, so the caller can release them.
func (h *HoldTracker) Expire(now time.Time) []core.KeyCode {
	h.mu.Lock()
	defer h.mu.Unlock()

	var released []core.KeyCode
	for code, st := range h.keys {
		window := h.hold
		if st.repeating {
			window = h.repeat
		}
		if now.Sub(st.lastSeen) > window {
			released = append(released, code)
			delete(h.keys, code)
		}
	}
	sort.Slice(released, func(i, j int) bool { return released[i] < released[j] })
	return released
}

// Reset forgets every key.
func (h *HoldTracker) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.keys)
}

// Held reports whether the tracker considers code held.
func (h *HoldTracker) Held(code core.KeyCode) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.keys[code]
	return ok
}
