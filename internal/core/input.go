package core

import "strings"

// Key is a bitfield of logical game keys, abstracted from physical key presses.
// The frontend maps whatever the terminal reports onto these bits.
type Key uint16

const (
	KeyLeft       Key = 1 << iota // Left arrow, A
	KeyRight                      // Right arrow, D
	KeyUp                         // Up arrow, W
	KeyDown                       // Down arrow, S - also "interact"
	KeyMap                        // M - map screen
	KeyJump                       // Z, Space - jump / confirm text
	KeyFire                       // X, Enter - fire / confirm text
	KeyWeaponNext                 // Next weapon, '.'
	KeyWeaponPrev                 // Previous weapon, ','
)

// KeyNone is the empty key set.
const KeyNone Key = 0

// KeyConfirm is the set of keys that advance dialogue.
const KeyConfirm = KeyJump | KeyFire

// keyNames lists keys in bit order for String and ParseKey.
var keyNames = []struct {
	key  Key
	name string
}{
	{KeyLeft, "left"},
	{KeyRight, "right"},
	{KeyUp, "up"},
	{KeyDown, "down"},
	{KeyMap, "map"},
	{KeyJump, "jump"},
	{KeyFire, "fire"},
	{KeyWeaponNext, "weapon_next"},
	{KeyWeaponPrev, "weapon_prev"},
}

// KeyCount is the number of defined key bits.
const KeyCount = 9

// Has returns true if all keys in other are set in k.
func (k Key) Has(other Key) bool {
	return other != 0 && k&other == other
}

// Any returns true if any key in other is set in k.
func (k Key) Any(other Key) bool {
	return k&other != 0
}

// String returns a human-readable, "+"-joined list of key names.
func (k Key) String() string {
	if k == KeyNone {
		return "none"
	}
	var parts []string
	for _, kn := range keyNames {
		if k&kn.key != 0 {
			parts = append(parts, kn.name)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "+")
}

// KeyFromIndex returns the key for a bit index (0 = left).
// Returns KeyNone for out-of-range indices.
func KeyFromIndex(i int) Key {
	if i < 0 || i >= KeyCount {
		return KeyNone
	}
	return Key(1) << uint(i)
}

// ParseKey parses a key name as produced by String for a single key.
func ParseKey(name string) (Key, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, kn := range keyNames {
		if kn.name == name {
			return kn.key, true
		}
	}
	return KeyNone, false
}

// KeyState holds the keys currently held and the keys newly pressed this frame.
// Held is written by the input backend; Trigger is derived once per frame.
type KeyState struct {
	Held    Key
	Trigger Key
	old     Key
}

// UpdateTrigger derives the rising-edge trigger set from the held set.
// Must be called exactly once per frame, after input is applied.
func (s *KeyState) UpdateTrigger() {
	s.Trigger = (s.Held ^ s.old) & s.Held
	s.old = s.Held
}

// Reset clears all key state, including edge history.
func (s *KeyState) Reset() {
	s.Held = KeyNone
	s.Trigger = KeyNone
	s.old = KeyNone
}
