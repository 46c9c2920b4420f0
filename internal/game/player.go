package game

import "github.com/vovakirdan/tui-cave/internal/core"

// playerStepFrames is how many frames a held direction takes to move one cell.
const playerStepFrames = 3

// Player is the minimal stand-in for the player entity: a position and a facing.
type Player struct {
	Pos    core.Point
	Facing core.Direction

	stepWait int
}

// MoveTo places the player, clamped into bounds.
func (p *Player) MoveTo(x, y int, bounds core.Rect) {
	p.Pos = clampInto(core.Point{X: x, Y: y}, bounds)
}

// Nudge moves the player one cell in the held direction every few frames.
func (p *Player) Nudge(held core.Key, bounds core.Rect) {
	var d core.Point
	switch {
	case held.Has(core.KeyLeft):
		d.X = -1
		p.Facing = core.DirLeft
	case held.Has(core.KeyRight):
		d.X = 1
		p.Facing = core.DirRight
	}
	switch {
	case held.Has(core.KeyUp):
		d.Y = -1
	case held.Has(core.KeyDown):
		d.Y = 1
	}
	if d == (core.Point{}) {
		p.stepWait = 0
		return
	}
	if p.stepWait > 0 {
		p.stepWait--
		return
	}
	p.stepWait = playerStepFrames - 1
	p.Pos = clampInto(p.Pos.Add(d), bounds)
}

func clampInto(pt core.Point, r core.Rect) core.Point {
	if r.W <= 0 || r.H <= 0 {
		return pt
	}
	return core.Point{
		X: core.Clamp(pt.X, r.X, r.Right()-1),
		Y: core.Clamp(pt.Y, r.Y, r.Bottom()-1),
	}
}
