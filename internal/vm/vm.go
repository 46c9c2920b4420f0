// Package vm implements the Text Script interpreter: a frame-stepped state
// machine that suspends on blocking commands and resumes on later frames.
package vm

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-cave/internal/config"
	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/game"
	"github.com/vovakirdan/tui-cave/internal/tsc"
)

// ErrUnknownScript is returned by Start for an id the store cannot resolve.
var ErrUnknownScript = errors.New("vm: unknown script")

// Abort describes a script stopped by a runtime invariant violation.
type Abort struct {
	Script  tsc.ScriptID
	Offset  int
	Command string
	Reason  string
	Frame   uint64
	At      time.Time
}

func (a Abort) String() string {
	return fmt.Sprintf("script %04d offset %d %s: %s", a.Script, a.Offset, a.Command, a.Reason)
}

// AbortRecorder receives aborts for later diagnosis.
type AbortRecorder interface {
	RecordAbort(a Abort) error
}

// Machine is one interpreter instance. It is bound to a single game
// session and must not be shared between goroutines.
type Machine struct {
	scripts  tsc.Resolver
	consts   config.TextScriptConstants
	logger   *log.Logger
	recorder AbortRecorder

	status Status
	cursor Cursor
	wait   int      // Frames left while WaitingFrames
	mask   core.Key // Keys that resume WaitingForInput

	lastAbort *Abort
}

// New creates an idle machine resolving scripts through scripts.
// A nil logger discards diagnostics.
func New(scripts tsc.Resolver, consts config.TextScriptConstants, logger *log.Logger) *Machine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Machine{
		scripts: scripts,
		consts:  consts,
		logger:  logger,
	}
}

// SetRecorder installs an abort recorder; nil removes it.
func (m *Machine) SetRecorder(r AbortRecorder) {
	m.recorder = r
}

// Status returns the current state.
func (m *Machine) Status() Status {
	return m.status
}

// Idle reports whether no script is active.
func (m *Machine) Idle() bool {
	return m.status == StatusIdle || m.status == StatusTerminated
}

// Cursor returns a copy of the interpreter position.
func (m *Machine) Cursor() Cursor {
	return m.cursor.clone()
}

// Active returns the ids of the running script and every script on the
// call stack. It is empty when the machine is idle.
func (m *Machine) Active() []tsc.ScriptID {
	if m.Idle() {
		return nil
	}
	return m.cursor.scripts()
}

// LastAbort returns the most recent abort, if any.
func (m *Machine) LastAbort() (Abort, bool) {
	if m.lastAbort == nil {
		return Abort{}, false
	}
	return *m.lastAbort, true
}

// Start discards any running script, its call stack and loop counters,
// and begins id at offset 0. The script executes on the next frame.
func (m *Machine) Start(id tsc.ScriptID) error {
	if _, ok := m.scripts.Lookup(id); !ok {
		return fmt.Errorf("%w: %04d", ErrUnknownScript, id)
	}
	m.cursor = Cursor{Script: id}
	m.status = StatusRunning
	m.wait = 0
	m.mask = 0
	m.logger.Debug("script started", "script", id)
	return nil
}

// Stop discards any running script without recording an abort.
func (m *Machine) Stop() {
	m.cursor = Cursor{}
	m.status = StatusIdle
	m.wait = 0
	m.mask = 0
}

// AdvanceOneFrame runs the interpreter for one frame against st. It
// returns after the script blocks, yields, ends, or aborts.
func (m *Machine) AdvanceOneFrame(st *game.State) {
	st.Text.Reveal(m.consts.RevealCharsPerFrame)

	switch m.status {
	case StatusIdle:
		return
	case StatusTerminated:
		m.status = StatusIdle
		return
	case StatusWaitingFrames:
		m.wait--
		if m.wait > 0 {
			return
		}
		m.wait = 0
	case StatusWaitingForInput:
		if !st.Keys.Trigger.Any(m.mask) {
			return
		}
		m.mask = 0
	case StatusWaitingForText:
		if !st.Text.FullyRevealed() {
			return
		}
	}

	m.status = StatusRunning
	m.run(st)
}

func (m *Machine) run(st *game.State) {
	for n := 0; m.status == StatusRunning; n++ {
		if limit := m.consts.MaxCommandsPerFrame; limit > 0 && n >= limit {
			m.logger.Debug("command budget spent, yielding", "script", m.cursor.Script, "offset", m.cursor.Offset)
			return
		}

		script, ok := m.scripts.Lookup(m.cursor.Script)
		if !ok {
			m.abort(st, m.cursor.Offset, "", "unknown script")
			return
		}
		cmd, ok := script.At(m.cursor.Offset)
		if !ok {
			// Running off the end of a called script returns to the caller.
			if !m.cursor.pop() {
				m.terminate()
			}
			continue
		}

		at := m.cursor.Offset
		m.cursor.Offset++
		if !m.apply(st, script, at, cmd, dispatch(st, cmd)) {
			return
		}
	}
}

// apply carries out a directive. It returns false when the frame is over
// even though the machine is still running.
func (m *Machine) apply(st *game.State, script *tsc.Script, at int, cmd tsc.Command, d Directive) bool {
	switch d.Kind {
	case DirContinue:
	case DirJump:
		m.jump(st, script, at, cmd, d.Target)
	case DirLoop:
		done := m.cursor.Loops[at]
		if done >= d.Count {
			delete(m.cursor.Loops, at)
			break
		}
		if m.cursor.Loops == nil {
			m.cursor.Loops = make(map[int]int)
		}
		m.cursor.Loops[at] = done + 1
		m.jump(st, script, at, cmd, d.Target)
	case DirCall:
		if m.cursor.Depth() >= m.consts.CallStackDepth {
			m.abort(st, at, cmd.String(), fmt.Sprintf("call stack overflow (depth %d)", m.consts.CallStackDepth))
			break
		}
		if _, ok := m.scripts.Lookup(d.Script); !ok {
			m.abort(st, at, cmd.String(), fmt.Sprintf("call to unknown script %04d", d.Script))
			break
		}
		m.cursor.push(d.Script)
	case DirReturn:
		if !m.cursor.pop() {
			m.terminate()
		}
	case DirBlock:
		m.block(st, d)
	case DirEndFrame:
		return false
	case DirEnd:
		m.terminate()
	case DirAbort:
		m.abort(st, at, cmd.String(), d.Reason)
	}
	return true
}

func (m *Machine) jump(st *game.State, script *tsc.Script, at int, cmd tsc.Command, target int) {
	if target < 0 || target > script.Len() {
		m.abort(st, at, cmd.String(), fmt.Sprintf("jump target %d outside [0, %d]", target, script.Len()))
		return
	}
	m.cursor.Offset = target
}

func (m *Machine) block(st *game.State, d Directive) {
	switch d.Block {
	case BlockFrames:
		m.status = StatusWaitingFrames
		m.wait = d.Frames
	case BlockInput:
		m.status = StatusWaitingForInput
		m.mask = d.Mask
	case BlockText:
		if !st.Text.FullyRevealed() {
			m.status = StatusWaitingForText
		}
	}
}

func (m *Machine) terminate() {
	m.cursor = Cursor{}
	m.status = StatusTerminated
}

func (m *Machine) abort(st *game.State, offset int, command, reason string) {
	a := Abort{
		Script:  m.cursor.Script,
		Offset:  offset,
		Command: command,
		Reason:  reason,
		Frame:   st.Frame,
		At:      time.Now(),
	}
	m.logger.Warn("script aborted",
		"script", a.Script,
		"offset", a.Offset,
		"command", a.Command,
		"reason", a.Reason,
		"depth", m.cursor.Depth(),
	)
	if m.recorder != nil {
		if err := m.recorder.RecordAbort(a); err != nil {
			m.logger.Error("failed to record abort", "err", err)
		}
	}
	m.lastAbort = &a
	m.terminate()
}
