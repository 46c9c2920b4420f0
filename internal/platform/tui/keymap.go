package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-cave/internal/core"
)

// KeyMapper translates Bubble Tea key messages to logical game keys.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to a game key.
// Returns KeyNone for unbound keys and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (k core.Key, isQuit bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return core.KeyNone, true
	case "left", "a", "h":
		return core.KeyLeft, false
	case "right", "d", "l":
		return core.KeyRight, false
	case "up", "w", "k":
		return core.KeyUp, false
	case "down", "s", "j":
		return core.KeyDown, false
	case "z", " ":
		return core.KeyJump, false
	case "x", "enter":
		return core.KeyFire, false
	case "m":
		return core.KeyMap, false
	case ".":
		return core.KeyWeaponNext, false
	case ",":
		return core.KeyWeaponPrev, false
	}
	return core.KeyNone, false
}

// HeldKeys turns key presses into a held set. Terminals report presses and
// autorepeat but no releases, so a key counts as held for a number of
// frames after its last press.
type HeldKeys struct {
	hold   int
	frames [core.KeyCount]int
}

// NewHeldKeys creates a held set that keeps keys for hold frames.
func NewHeldKeys(hold int) *HeldKeys {
	return &HeldKeys{hold: core.Max(hold, 1)}
}

// Press marks k held from the next frame on.
func (h *HeldKeys) Press(k core.Key) {
	for i := range h.frames {
		if k.Has(core.KeyFromIndex(i)) {
			h.frames[i] = h.hold
		}
	}
}

// Frame returns the keys held this frame and ages every key by one frame.
func (h *HeldKeys) Frame() core.Key {
	var held core.Key
	for i := range h.frames {
		if h.frames[i] > 0 {
			held |= core.KeyFromIndex(i)
			h.frames[i]--
		}
	}
	return held
}

// Release drops every held key.
func (h *HeldKeys) Release() {
	h.frames = [core.KeyCount]int{}
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
	MenuActionSaves
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	key := msg.String()

	switch key {
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
		return MenuActionSaves
	}

	return MenuActionNone
}
