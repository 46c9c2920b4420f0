package game

// ControlFlags gate what the player and the world may do this frame.
type ControlFlags uint16

const (
	ControlTickWorld   ControlFlags = 1 << iota // World simulation runs
	ControlEnabled                              // Player input moves the player
	ControlInteraction                          // Player may trigger stage events
)

// ControlDefault is the state of a freshly entered stage.
const ControlDefault = ControlTickWorld | ControlEnabled | ControlInteraction

// Has reports whether every bit in f is set.
func (c ControlFlags) Has(f ControlFlags) bool {
	return c&f == f
}

// Set turns the bits in f on or off.
func (c *ControlFlags) Set(f ControlFlags, on bool) {
	if on {
		*c |= f
	} else {
		*c &^= f
	}
}
