package tui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

// namedKeys maps Bubble Tea key names to key codes.
var namedKeys = map[string]core.KeyCode{
	"up":        "ArrowUp",
	"down":      "ArrowDown",
	"left":      "ArrowLeft",
	"right":     "ArrowRight",
	" ":         "Space",
	"space":     "Space",
	"enter":     "Enter",
	"tab":       "Tab",
	"backspace": "Backspace",
}

// KeyCodeFor translates a key message to the physical key code bindings
// refer to, such as "KeyD" or "ArrowUp". Shifted letters map to the same
// code as unshifted ones. Returns "" for keys with no code.
func KeyCodeFor(msg tea.KeyMsg) core.KeyCode {
	s := msg.String()
	if code, ok := namedKeys[s]; ok {
		return code
	}

	runes := []rune(s)
	if len(runes) != 1 {
		return ""
	}
	r := runes[0]
	switch {
	case r < unicode.MaxASCII && unicode.IsLetter(r):
		return core.KeyCode("Key" + strings.ToUpper(string(r)))
	case r >= '0' && r <= '9':
		return core.KeyCode("Digit" + string(r))
	}
	return ""
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionRuns
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionRuns
	}

	return MenuActionNone
}

// PlayKeyMap defines the non-movement keys of the play screen.
// Movement keys come from the configured bindings and reach the
// simulation as key codes.
type PlayKeyMap struct {
	Move    key.Binding
	Pause   key.Binding
	Restart key.Binding
	Back    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k PlayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Pause, k.Restart, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k PlayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Move},
		{k.Pause, k.Restart, k.Back},
		{k.Help, k.Quit},
	}
}

// NewPlayKeyMap builds the play key map, describing movement with the
// configured bindings.
func NewPlayKeyMap(b core.Bindings) PlayKeyMap {
	move := fmt.Sprintf("%s/%s/%s",
		shortCode(b.Key(core.ActionLeft)),
		shortCode(b.Key(core.ActionRight)),
		shortCode(b.Key(core.ActionUp)))

	var moveKeys []string
	for _, a := range []core.Action{core.ActionLeft, core.ActionRight, core.ActionUp} {
		if k := teaKey(b.Key(a)); k != "" {
			moveKeys = append(moveKeys, k)
		}
	}

	return PlayKeyMap{
		Move: key.NewBinding(
			key.WithKeys(moveKeys...),
			key.WithHelp(move, "left/right/jump"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "esc"),
			key.WithHelp("p", "pause"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Back: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "menu (paused)"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// teaKey is the inverse of KeyCodeFor for letters, digits and named keys.
func teaKey(code core.KeyCode) string {
	s := string(code)
	switch {
	case strings.HasPrefix(s, "Key"):
		return strings.ToLower(strings.TrimPrefix(s, "Key"))
	case strings.HasPrefix(s, "Digit"):
		return strings.TrimPrefix(s, "Digit")
	case code == "Space":
		return " "
	}
	for name, c := range namedKeys {
		if c == code {
			return name
		}
	}
	return ""
}

// shortCode renders "KeyD" as "d" and "ArrowUp" as "↑" for help text.
func shortCode(code core.KeyCode) string {
	s := string(code)
	switch {
	case strings.HasPrefix(s, "Key"):
		return strings.ToLower(strings.TrimPrefix(s, "Key"))
	case strings.HasPrefix(s, "Digit"):
		return strings.TrimPrefix(s, "Digit")
	}
	switch s {
	case "ArrowUp":
		return "↑"
	case "ArrowDown":
		return "↓"
	case "ArrowLeft":
		return "←"
	case "ArrowRight":
		return "→"
	case "Space":
		return "space"
	}
	return s
}
