package core

import (
	"sort"
	"sync"
)

// KeyCode identifies a physical key by its layout-independent code name,
// e.g. "KeyA", "ArrowUp", "Space".
type KeyCode string

// Action is a logical movement action bound to a KeyCode by configuration.
type Action int

const (
	ActionUp Action = iota
	ActionDown
	ActionLeft
	ActionRight
	ActionDash  // bound but unused by motion
	ActionClimb // bound but unused by motion
)

// Actions lists every bindable action in declaration order.
var Actions = []Action{ActionUp, ActionDown, ActionLeft, ActionRight, ActionDash, ActionClimb}

// String returns the configuration name of the action.
func (a Action) String() string {
	switch a {
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionDash:
		return "dash"
	case ActionClimb:
		return "climb"
	default:
		return "unknown"
	}
}

// Bindings maps logical actions to key codes.
type Bindings map[Action]KeyCode

// Key returns the key bound to an action, or "" if unbound.
func (b Bindings) Key(a Action) KeyCode {
	return b[a]
}

// Missing returns the actions that have no key bound, in declaration order.
func (b Bindings) Missing() []Action {
	var missing []Action
	for _, a := range Actions {
		if b[a] == "" {
			missing = append(missing, a)
		}
	}
	return missing
}

// HeldKeys is an immutable snapshot of the held key set.
type HeldKeys struct {
	keys map[KeyCode]struct{}
}

// IsHeld reports whether the key was held when the snapshot was taken.
func (h HeldKeys) IsHeld(code KeyCode) bool {
	_, ok := h.keys[code]
	return ok
}

// Holds reports whether the key bound to the action is held.
// An unbound action is never held.
func (h HeldKeys) Holds(b Bindings, a Action) bool {
	code := b.Key(a)
	return code != "" && h.IsHeld(code)
}

// Len returns the number of held keys.
func (h HeldKeys) Len() int {
	return len(h.keys)
}

// Codes returns the held keys sorted by name.
func (h HeldKeys) Codes() []KeyCode {
	codes := make([]KeyCode, 0, len(h.keys))
	for k := range h.keys {
		codes = append(codes, k)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// KeySet tracks which keys are currently held.
// Press and Release may be called from any goroutine; Snapshot gives a
// consistent view that is never half-updated.
type KeySet struct {
	mu   sync.RWMutex
	held map[KeyCode]struct{}
}

// NewKeySet creates an empty key set.
func NewKeySet() *KeySet {
	return &KeySet{held: make(map[KeyCode]struct{})}
}

// Press marks a key as held. Pressing a held key is a no-op.
func (k *KeySet) Press(code KeyCode) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.held[code] = struct{}{}
}

// Release marks a key as no longer held. Releasing an unheld key is a no-op.
func (k *KeySet) Release(code KeyCode) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.held, code)
}

// ReleaseAll clears the set.
func (k *KeySet) ReleaseAll() {
	k.mu.Lock()
	defer k.mu.Unlock()
	clear(k.held)
}

// IsHeld reports whether the key is currently held.
func (k *KeySet) IsHeld(code KeyCode) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.held[code]
	return ok
}

// Snapshot returns a copy of the held set.
func (k *KeySet) Snapshot() HeldKeys {
	k.mu.RLock()
	defer k.mu.RUnlock()

	keys := make(map[KeyCode]struct{}, len(k.held))
	for code := range k.held {
		keys[code] = struct{}{}
	}
	return HeldKeys{keys: keys}
}
