package core

// RuntimeConfig contains configuration passed to the engine at initialization.
// The scene layer uses this to size the screen and seed the game RNG.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Frames per second (default 50)
	Seed     int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 50,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// Direction is a facing or emission direction shared by carets, fades and the player.
type Direction int

const (
	DirLeft Direction = iota
	DirUp
	DirRight
	DirBottom
	DirCenter
)

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirUp:
		return "up"
	case DirRight:
		return "right"
	case DirBottom:
		return "bottom"
	case DirCenter:
		return "center"
	default:
		return "unknown"
	}
}

// DirectionFrom converts a script operand to a Direction, clamping unknown values to center.
func DirectionFrom(v int) Direction {
	if v < int(DirLeft) || v > int(DirCenter) {
		return DirCenter
	}
	return Direction(v)
}
