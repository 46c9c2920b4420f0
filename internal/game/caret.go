package game

import (
	"math"

	"github.com/vovakirdan/tui-cave/internal/config"
	"github.com/vovakirdan/tui-cave/internal/core"
)

// CaretType identifies a short-lived visual effect.
// Values match the numeric operand of the CAR script command.
type CaretType int

const (
	CaretNone CaretType = iota
	CaretBubble
	CaretProjectileDissipation
	CaretShoot
	CaretSnakeAfterImage
	CaretZzz
	CaretSnakeAfterImage2
	CaretExhaust
	CaretDrownedQuote
	CaretQuestionMark
	CaretLevelUp
	CaretHurtParticles
	CaretExplosion
	CaretLittleParticles
	CaretUnknown
	CaretSmallProjectileDissipation
	CaretEmpty
	CaretPushJumpKey
)

var caretNames = [...]string{
	CaretNone:                       "none",
	CaretBubble:                     "bubble",
	CaretProjectileDissipation:      "projectile_dissipation",
	CaretShoot:                      "shoot",
	CaretSnakeAfterImage:            "snake_afterimage",
	CaretZzz:                        "zzz",
	CaretSnakeAfterImage2:           "snake_afterimage2",
	CaretExhaust:                    "exhaust",
	CaretDrownedQuote:               "drowned_quote",
	CaretQuestionMark:               "question_mark",
	CaretLevelUp:                    "level_up",
	CaretHurtParticles:              "hurt_particles",
	CaretExplosion:                  "explosion",
	CaretLittleParticles:            "little_particles",
	CaretUnknown:                    "unknown",
	CaretSmallProjectileDissipation: "small_projectile_dissipation",
	CaretEmpty:                      "empty",
	CaretPushJumpKey:                "push_jump_key",
}

// String returns the caret type's name, which is also its key in the caret table.
func (t CaretType) String() string {
	if t < 0 || int(t) >= len(caretNames) {
		return "unknown"
	}
	return caretNames[t]
}

// CaretTypeFrom converts a script operand to a caret type.
// Out-of-range values become CaretUnknown.
func CaretTypeFrom(v int) CaretType {
	if v < 0 || v >= len(caretNames) {
		return CaretUnknown
	}
	return CaretType(v)
}

// Caret is a short-lived visual effect that animates and then dies.
type Caret struct {
	X, Y   float64
	VX, VY float64
	Type   CaretType
	Dir    core.Direction
	Frame  int // Current animation frame
	Age    int // Frames lived

	animWait int
	cons     config.CaretConstants
}

// NewCaret creates a caret at (x, y) using the constants for its type.
func NewCaret(x, y int, t CaretType, dir core.Direction, consts *config.EngineConstants) Caret {
	return Caret{
		X:    float64(x),
		Y:    float64(y),
		Type: t,
		Dir:  dir,
		cons: consts.Caret(t.String()),
	}
}

// Tick advances the caret by one frame.
// Drifting carets pick their velocity from rng on the first tick.
func (c *Caret) Tick(rng *RNG) {
	if c.Age == 0 && c.cons.Drift {
		c.VX = float64(rng.Range(-4, 4)) / 16
		c.VY = -float64(rng.Range(1, 4)) / 16
	}
	if c.Age == 0 && !c.cons.Drift {
		switch c.Dir {
		case core.DirLeft:
			c.VX = -0.25
		case core.DirRight:
			c.VX = 0.25
		case core.DirUp:
			c.VY = -0.25
		case core.DirBottom:
			c.VY = 0.25
		}
	}

	c.Age++
	c.X += c.VX
	c.Y += c.VY

	c.animWait++
	if c.animWait >= c.cons.AnimWait {
		c.animWait = 0
		if c.Frame < c.cons.Frames-1 {
			c.Frame++
		}
	}
}

// Dead reports whether the caret has outlived its type's lifetime.
func (c *Caret) Dead() bool {
	return c.Age >= c.cons.Lifetime
}

// Glyph returns the rune for the current animation frame.
func (c *Caret) Glyph() rune {
	glyphs := []rune(c.cons.Glyphs)
	if len(glyphs) == 0 {
		return '*'
	}
	return glyphs[core.Clamp(c.Frame, 0, len(glyphs)-1)]
}

// Cell returns the caret's position rounded to the screen grid.
func (c *Caret) Cell() core.Point {
	return core.Point{X: int(math.Round(c.X)), Y: int(math.Round(c.Y))}
}
