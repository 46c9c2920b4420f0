package game

import "github.com/vovakirdan/tui-cave/internal/core"

// Camera decides which part of the stage is on screen.
type Camera struct {
	Locked bool       // Focus on Target instead of the player
	Target core.Point // Lock point
	Quake  int        // Remaining shake frames
}

// Lock fixes the camera on p.
func (c *Camera) Lock(p core.Point) {
	c.Locked = true
	c.Target = p
}

// Follow releases the lock so the camera tracks the player.
func (c *Camera) Follow() {
	c.Locked = false
}

// StartQuake shakes the camera for n frames. A longer quake is never shortened.
func (c *Camera) StartQuake(n int) {
	if n > c.Quake {
		c.Quake = n
	}
}

// Tick decays the quake.
func (c *Camera) Tick() {
	if c.Quake > 0 {
		c.Quake--
	}
}

// Focus returns the point the camera centres on.
func (c *Camera) Focus(player core.Point) core.Point {
	if c.Locked {
		return c.Target
	}
	return player
}

// Shake returns the screen offset for this frame.
func (c *Camera) Shake(rng *RNG) core.Point {
	if c.Quake == 0 {
		return core.Point{}
	}
	return core.Point{X: rng.Range(-1, 1), Y: rng.Range(-1, 1)}
}
