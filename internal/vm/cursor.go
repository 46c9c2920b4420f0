package vm

import (
	"maps"

	"github.com/vovakirdan/tui-cave/internal/tsc"
)

// Status is the interpreter state.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusWaitingFrames
	StatusWaitingForInput
	StatusWaitingForText
	StatusTerminated
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusWaitingFrames:
		return "waiting_frames"
	case StatusWaitingForInput:
		return "waiting_input"
	case StatusWaitingForText:
		return "waiting_text"
	case StatusTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Blocked reports whether the status suspends execution until a condition holds.
func (s Status) Blocked() bool {
	return s == StatusWaitingFrames || s == StatusWaitingForInput || s == StatusWaitingForText
}

// Frame is a saved return point on the call stack.
type Frame struct {
	Script tsc.ScriptID
	Offset int
	Loops  map[int]int // LOP counters of the caller, keyed by LOP offset
}

// Cursor is the interpreter position: the active script and offset,
// the call stack and the loop counters of the active frame.
type Cursor struct {
	Script tsc.ScriptID
	Offset int
	Loops  map[int]int
	Stack  []Frame
}

// Depth returns the number of saved return frames.
func (c Cursor) Depth() int {
	return len(c.Stack)
}

func (c *Cursor) push(target tsc.ScriptID) {
	c.Stack = append(c.Stack, Frame{Script: c.Script, Offset: c.Offset, Loops: c.Loops})
	c.Script = target
	c.Offset = 0
	c.Loops = nil
}

func (c *Cursor) pop() bool {
	if len(c.Stack) == 0 {
		return false
	}
	top := c.Stack[len(c.Stack)-1]
	c.Stack = c.Stack[:len(c.Stack)-1]
	c.Script = top.Script
	c.Offset = top.Offset
	c.Loops = top.Loops
	return true
}

// clone returns a deep copy so callers cannot alias interpreter state.
func (c Cursor) clone() Cursor {
	out := Cursor{Script: c.Script, Offset: c.Offset, Loops: maps.Clone(c.Loops)}
	if len(c.Stack) > 0 {
		out.Stack = make([]Frame, len(c.Stack))
		for i, f := range c.Stack {
			out.Stack[i] = Frame{Script: f.Script, Offset: f.Offset, Loops: maps.Clone(f.Loops)}
		}
	}
	return out
}

// scripts returns every script id referenced by the cursor, innermost first.
func (c *Cursor) scripts() []tsc.ScriptID {
	ids := []tsc.ScriptID{c.Script}
	for i := len(c.Stack) - 1; i >= 0; i-- {
		ids = append(ids, c.Stack[i].Script)
	}
	return ids
}
