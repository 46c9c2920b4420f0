package vm

import (
	"fmt"

	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/game"
	"github.com/vovakirdan/tui-cave/internal/tsc"
)

// DirectiveKind tells the run loop what to do after a command.
type DirectiveKind int

const (
	DirContinue DirectiveKind = iota
	DirJump
	DirLoop
	DirCall
	DirReturn
	DirBlock
	DirEndFrame
	DirEnd
	DirAbort
)

// BlockKind is the condition a blocking command waits on.
type BlockKind int

const (
	BlockFrames BlockKind = iota
	BlockInput
	BlockText
)

// Directive is the outcome of dispatching one command.
type Directive struct {
	Kind   DirectiveKind
	Target int          // Jump and loop target offset
	Count  int          // Loop repetitions
	Script tsc.ScriptID // Call target
	Block  BlockKind
	Frames int      // BlockFrames duration
	Mask   core.Key // BlockInput keys
	Reason string   // Abort reason
}

var cont = Directive{Kind: DirContinue}

func jumpTo(target int) Directive {
	return Directive{Kind: DirJump, Target: target}
}

func abortf(format string, args ...interface{}) Directive {
	return Directive{Kind: DirAbort, Reason: fmt.Sprintf(format, args...)}
}

func flagOperand(st *game.State, f int) (Directive, bool) {
	if !st.Flags.InRange(f) {
		return abortf("flag %d outside bank of %d", f, st.Flags.Len()), false
	}
	return cont, true
}

// dispatch executes cmd against st and returns what the cursor should do.
// State-mutating commands take effect before dispatch returns, so a later
// command in the same frame observes them.
func dispatch(st *game.State, cmd tsc.Command) Directive {
	a := cmd.Args

	switch cmd.Op {
	// State mutation
	case tsc.OpFlagSet, tsc.OpFlagClear:
		if d, ok := flagOperand(st, a[0]); !ok {
			return d
		}
		st.Flags.Set(a[0], cmd.Op == tsc.OpFlagSet)
	case tsc.OpSound:
		st.Sound.Play(a[0])
	case tsc.OpMusic:
		st.Sound.ChangeMusic(a[0])
	case tsc.OpFadeIn:
		st.StartFadeIn(core.DirectionFrom(a[0]))
	case tsc.OpFadeOut:
		st.StartFadeOut(core.DirectionFrom(a[0]))
	case tsc.OpCaret:
		st.CreateCaret(a[0], a[1], game.CaretTypeFrom(a[2]), core.DirectionFrom(a[3]))
	case tsc.OpKeyLock:
		st.Control.Set(game.ControlEnabled|game.ControlInteraction, false)
	case tsc.OpFreeze:
		st.Control.Set(game.ControlDefault, false)
	case tsc.OpRelease:
		st.Control.Set(game.ControlDefault, true)
	case tsc.OpMove:
		st.Player.MoveTo(a[0], a[1], st.Bounds)
	case tsc.OpMyDir:
		st.Player.Facing = core.DirectionFrom(a[0])
	case tsc.OpQuake:
		st.Camera.StartQuake(a[0])
	case tsc.OpFocusOn:
		st.Camera.Lock(core.Point{X: a[0], Y: a[1]})
	case tsc.OpFocusOff:
		st.Camera.Follow()
	case tsc.OpSave:
		st.RequestSave()

	// Text emission
	case tsc.OpMessage:
		st.Text.Open(true)
	case tsc.OpMessageTop:
		st.Text.Open(false)
	case tsc.OpClear:
		st.Text.Clear()
	case tsc.OpClose:
		st.Text.Close()
	case tsc.OpTurbo:
		st.Text.Instant = true
		st.Text.RevealAll()
	case tsc.OpFace:
		st.Text.Face = a[0]
	case tsc.OpText:
		st.Text.Append(cmd.Text)
		if !st.Text.FullyRevealed() {
			return Directive{Kind: DirBlock, Block: BlockText}
		}

	// Control flow
	case tsc.OpTransition:
		st.RequestTransition(game.Transition{Stage: a[0], Script: a[1], X: a[2], Y: a[3]})
		return Directive{Kind: DirEnd}
	case tsc.OpJump:
		return jumpTo(a[0])
	case tsc.OpFlagJump, tsc.OpNotFlagJump:
		if d, ok := flagOperand(st, a[0]); !ok {
			return d
		}
		if st.Flags.Get(a[0]) == (cmd.Op == tsc.OpFlagJump) {
			return jumpTo(a[1])
		}
	case tsc.OpLoop:
		return Directive{Kind: DirLoop, Count: a[0], Target: a[1]}
	case tsc.OpCall:
		return Directive{Kind: DirCall, Script: tsc.ScriptID(a[0])}
	case tsc.OpReturn:
		return Directive{Kind: DirReturn}
	case tsc.OpEnd:
		return Directive{Kind: DirEnd}

	// Blocking
	case tsc.OpWait:
		if a[0] <= 0 {
			return cont
		}
		return Directive{Kind: DirBlock, Block: BlockFrames, Frames: a[0]}
	case tsc.OpNod:
		return Directive{Kind: DirBlock, Block: BlockInput, Mask: core.KeyConfirm}
	case tsc.OpWaitKey:
		k := core.KeyFromIndex(a[0])
		if k == core.KeyNone {
			return abortf("key index %d out of range", a[0])
		}
		return Directive{Kind: DirBlock, Block: BlockInput, Mask: k}
	case tsc.OpWaitText:
		return Directive{Kind: DirBlock, Block: BlockText}

	// End of frame
	case tsc.OpYield:
		return Directive{Kind: DirEndFrame}

	default:
		return abortf("unknown opcode %d", cmd.Op)
	}
	return cont
}
