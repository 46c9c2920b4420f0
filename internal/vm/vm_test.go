package vm

import (
	"errors"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-cave/internal/config"
	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/game"
	"github.com/vovakirdan/tui-cave/internal/tsc"
)

// abortLog collects aborts in memory.
type abortLog struct {
	aborts []Abort
}

func (l *abortLog) RecordAbort(a Abort) error {
	l.aborts = append(l.aborts, a)
	return nil
}

type fixture struct {
	m     *Machine
	st    *game.State
	log   *abortLog
	table *tsc.Table
}

func newFixture(t *testing.T, source string) *fixture {
	t.Helper()
	scripts, err := tsc.Assemble("test.tsc", []byte(source))
	if err != nil {
		t.Fatalf("Assemble() failed: %v", err)
	}
	table, err := tsc.NewTable(scripts, nil)
	if err != nil {
		t.Fatalf("NewTable() failed: %v", err)
	}

	consts := config.DefaultEngineConstants()
	f := &fixture{
		st:    game.NewState(&consts, 1),
		log:   &abortLog{},
		table: table,
	}
	f.st.Bounds = core.NewRect(0, 0, 80, 24)
	f.m = New(table, consts.TextScript, nil)
	f.m.SetRecorder(f.log)
	return f
}

func (f *fixture) start(t *testing.T, id tsc.ScriptID) {
	t.Helper()
	if err := f.m.Start(id); err != nil {
		t.Fatalf("Start(%d) failed: %v", id, err)
	}
}

// frame simulates one frame with the given keys held.
func (f *fixture) frame(held core.Key) {
	f.st.Keys.Held = held
	f.st.Keys.UpdateTrigger()
	f.m.AdvanceOneFrame(f.st)
	f.st.Frame++
}

func TestSingleCallCompletion(t *testing.T) {
	f := newFixture(t, "#0001\n<FL+0001<FL+0002<SOU0011<END")
	f.start(t, 1)

	f.frame(core.KeyNone)

	if f.m.Status() != StatusTerminated {
		t.Fatalf("Status = %v, expected terminated after one frame", f.m.Status())
	}
	if !f.st.Flags.Get(1) || !f.st.Flags.Get(2) {
		t.Error("both flags should be set")
	}
	if f.st.Sound.Pending() != 1 {
		t.Errorf("1 sound cue expected, got %d", f.st.Sound.Pending())
	}

	f.frame(core.KeyNone)
	if f.m.Status() != StatusIdle {
		t.Errorf("Status = %v, expected idle on the frame after termination", f.m.Status())
	}
}

func TestRunOffEndTerminates(t *testing.T) {
	f := newFixture(t, "#0001\n<FL+0001")
	f.start(t, 1)
	f.frame(core.KeyNone)
	if f.m.Status() != StatusTerminated {
		t.Errorf("Status = %v, expected terminated", f.m.Status())
	}
}

func TestScenarioFlagJumpYield(t *testing.T) {
	// [FL+5, FLJ 5->3, FL+6, YLD]
	f := newFixture(t, "#0001\n<FL+0005<FLJ0005:0003<FL+0006<YLD")
	f.start(t, 1)

	f.frame(core.KeyNone)
	if !f.st.Flags.Get(5) {
		t.Error("flag 5 should be set")
	}
	if f.st.Flags.Get(6) {
		t.Error("flag 6 should be skipped by the jump")
	}
	if f.m.Status() != StatusRunning {
		t.Errorf("Status = %v, expected running after the yield", f.m.Status())
	}
	if c := f.m.Cursor(); c.Offset != 4 {
		t.Errorf("cursor offset = %d, expected 4", c.Offset)
	}

	f.frame(core.KeyNone)
	if f.m.Status() != StatusTerminated {
		t.Errorf("Status = %v, expected terminated on the second frame", f.m.Status())
	}
	if f.st.Flags.Get(6) {
		t.Error("flag 6 must never be set")
	}
}

func TestFlagNotJump(t *testing.T) {
	f := newFixture(t, "#0001\n<FNJ0009:@skip<FL+0001\n@skip\n<FL+0002<END")
	f.start(t, 1)
	f.frame(core.KeyNone)
	if f.st.Flags.Get(1) || !f.st.Flags.Get(2) {
		t.Errorf("FNJ on a clear flag should jump, set flags = %v", f.st.Flags.SetIndices())
	}
}

func TestSameBurstFlagVisibility(t *testing.T) {
	f := newFixture(t, "#0001\n<FL+0010<FLJ0010:@yes<END\n@yes\n<FL+0011<END")
	f.start(t, 1)
	f.frame(core.KeyNone)
	if !f.st.Flags.Get(11) {
		t.Error("a flag set earlier in the frame must be visible to a later FLJ")
	}
}

func TestResumeAfterNod(t *testing.T) {
	f := newFixture(t, "#0001\n<MSG<TUR\nHi<NOD<FL+0001<END")
	f.start(t, 1)

	f.frame(core.KeyNone)
	if f.m.Status() != StatusWaitingForInput {
		t.Fatalf("Status = %v, expected waiting for input", f.m.Status())
	}

	for i := 0; i < 5; i++ {
		f.frame(core.KeyLeft)
		if f.st.Flags.Get(1) {
			t.Fatal("NOD must not resume without a confirm key")
		}
	}

	f.frame(core.KeyJump)
	if !f.st.Flags.Get(1) {
		t.Error("NOD should resume on a jump trigger")
	}
	if f.m.Status() != StatusTerminated {
		t.Errorf("Status = %v, expected terminated", f.m.Status())
	}
}

func TestNodNeedsRisingEdge(t *testing.T) {
	f := newFixture(t, "#0001\n<NOD<FL+0001<NOD<FL+0002<END")
	f.start(t, 1)

	// Fire is already held when the script starts.
	f.frame(core.KeyFire)
	f.frame(core.KeyFire)
	f.frame(core.KeyFire)
	if f.st.Flags.Get(1) {
		t.Fatal("a key held since before the NOD must not resume it")
	}

	f.frame(core.KeyNone)
	f.frame(core.KeyFire)
	if !f.st.Flags.Get(1) {
		t.Fatal("first NOD should resume on the new press")
	}
	if f.st.Flags.Get(2) {
		t.Error("second NOD must not resume on the same press")
	}
	f.frame(core.KeyFire)
	if f.st.Flags.Get(2) {
		t.Error("holding fire must not resume the second NOD")
	}
}

func TestWaitFrames(t *testing.T) {
	f := newFixture(t, "#0001\n<WAI0003<FL+0001<END")
	f.start(t, 1)

	f.frame(core.KeyNone) // executes WAI
	f.frame(core.KeyNone)
	f.frame(core.KeyNone)
	if f.st.Flags.Get(1) {
		t.Fatal("flag set before the wait elapsed")
	}
	if f.m.Status() != StatusWaitingFrames {
		t.Errorf("Status = %v, expected waiting frames", f.m.Status())
	}
	f.frame(core.KeyNone)
	if !f.st.Flags.Get(1) {
		t.Error("flag should be set three frames after WAI")
	}
}

func TestWaitZeroContinues(t *testing.T) {
	f := newFixture(t, "#0001\n<WAI0000<FL+0001<END")
	f.start(t, 1)
	f.frame(core.KeyNone)
	if !f.st.Flags.Get(1) {
		t.Error("WAI0000 should not block")
	}
}

func TestWaitKey(t *testing.T) {
	// Key index 3 is down.
	f := newFixture(t, "#0001\n<WKY0003<FL+0001<END")
	f.start(t, 1)
	f.frame(core.KeyNone)
	f.frame(core.KeyJump)
	if f.st.Flags.Get(1) {
		t.Fatal("WKY must ignore other keys")
	}
	f.frame(core.KeyDown)
	if !f.st.Flags.Get(1) {
		t.Error("WKY should resume on its key")
	}
}

func TestTextBlocksUntilRevealed(t *testing.T) {
	f := newFixture(t, "#0001\n<MSG\nHello<FL+0001<END")
	f.start(t, 1)

	// One character per frame: the first frame reveals nothing new before the
	// text is appended, then each later frame reveals one more.
	f.frame(core.KeyNone)
	if f.m.Status() != StatusWaitingForText {
		t.Fatalf("Status = %v, expected waiting for text", f.m.Status())
	}
	for i := 0; i < 4; i++ {
		f.frame(core.KeyNone)
		if f.st.Flags.Get(1) {
			t.Fatalf("script resumed after %d characters", i+1)
		}
	}
	f.frame(core.KeyNone)
	if !f.st.Flags.Get(1) {
		t.Errorf("script should resume once %q is fully shown (shown %q)", "Hello", f.st.Text.Shown())
	}
}

func TestTurboTextDoesNotBlock(t *testing.T) {
	f := newFixture(t, "#0001\n<MSG<TUR\nHello<FL+0001<END")
	f.start(t, 1)
	f.frame(core.KeyNone)
	if !f.st.Flags.Get(1) {
		t.Error("instant text should not block")
	}
	if f.st.Text.Shown() != "Hello" {
		t.Errorf("Shown() = %q", f.st.Text.Shown())
	}
}

func TestWaitText(t *testing.T) {
	f := newFixture(t, "#0001\n<WTX<FL+0001<END")
	f.start(t, 1)
	f.frame(core.KeyNone)
	if !f.st.Flags.Get(1) {
		t.Error("WTX with nothing to reveal should continue at once")
	}
}

func TestCallReturnRoundTrip(t *testing.T) {
	f := newFixture(t, `
#0001
<FL+0001<CAL0002<FL+0003<END
#0002
<FL+0002<RET
`)
	f.start(t, 1)
	f.frame(core.KeyNone)

	for _, flag := range []int{1, 2, 3} {
		if !f.st.Flags.Get(flag) {
			t.Errorf("flag %d should be set", flag)
		}
	}
	if f.m.Status() != StatusTerminated {
		t.Errorf("Status = %v, expected terminated", f.m.Status())
	}
}

func TestCallSuspendsAcrossFrames(t *testing.T) {
	f := newFixture(t, `
#0001
<CAL0002<FL+0003<END
#0002
<NOD<FL+0002
`)
	f.start(t, 1)
	f.frame(core.KeyNone)

	c := f.m.Cursor()
	if c.Script != 2 || c.Depth() != 1 || c.Stack[0].Script != 1 || c.Stack[0].Offset != 1 {
		t.Fatalf("cursor = %+v, expected inside script 2 with one return frame", c)
	}
	active := f.m.Active()
	if len(active) != 2 || active[0] != 2 || active[1] != 1 {
		t.Errorf("Active() = %v", active)
	}

	f.frame(core.KeyJump)
	// Script 2 runs off its end, which returns to script 1.
	if !f.st.Flags.Get(2) || !f.st.Flags.Get(3) {
		t.Errorf("flags = %v, expected 2 and 3", f.st.Flags.SetIndices())
	}
}

func TestReturnOnEmptyStackTerminates(t *testing.T) {
	f := newFixture(t, "#0001\n<RET<FL+0001")
	f.start(t, 1)
	f.frame(core.KeyNone)
	if f.m.Status() != StatusTerminated || f.st.Flags.Get(1) {
		t.Errorf("RET without a caller should terminate, status %v", f.m.Status())
	}
	if len(f.log.aborts) != 0 {
		t.Error("RET on an empty stack is not an abort")
	}
}

func TestCallStackOverflowAborts(t *testing.T) {
	f := newFixture(t, "#0001\n<CAL0001")
	f.start(t, 1)
	f.frame(core.KeyNone)

	if f.m.Status() != StatusTerminated {
		t.Fatalf("Status = %v, expected terminated", f.m.Status())
	}
	if len(f.log.aborts) != 1 {
		t.Fatalf("expected 1 recorded abort, got %d", len(f.log.aborts))
	}
	a := f.log.aborts[0]
	if a.Script != 1 || a.Offset != 0 || !strings.Contains(a.Reason, "overflow") {
		t.Errorf("abort = %+v", a)
	}
	if a.Command != "<CAL0001" {
		t.Errorf("abort command = %q", a.Command)
	}

	// The game loop keeps going.
	f.frame(core.KeyNone)
	if f.m.Status() != StatusIdle {
		t.Errorf("Status = %v, expected idle", f.m.Status())
	}
}

func TestBadJumpTargetAborts(t *testing.T) {
	f := newFixture(t, "#0001\n<FL+0001<JMP0099<FL+0002")
	f.start(t, 1)
	f.frame(core.KeyNone)

	if len(f.log.aborts) != 1 || !strings.Contains(f.log.aborts[0].Reason, "jump target") {
		t.Fatalf("aborts = %+v", f.log.aborts)
	}
	if !f.st.Flags.Get(1) || f.st.Flags.Get(2) {
		t.Error("commands before the jump stay applied, commands after never run")
	}
	if a, ok := f.m.LastAbort(); !ok || a.Offset != 1 {
		t.Errorf("LastAbort() = %+v, %v", a, ok)
	}
}

func TestJumpToEndIsValid(t *testing.T) {
	f := newFixture(t, "#0001\n<JMP0002<FL+0001")
	f.start(t, 1)
	f.frame(core.KeyNone)
	if len(f.log.aborts) != 0 || f.m.Status() != StatusTerminated {
		t.Errorf("jump to len should end the script cleanly, aborts %v", f.log.aborts)
	}
}

func TestFlagOutOfRangeAborts(t *testing.T) {
	f := newFixture(t, "#0001\n<FL+9000<FL+0001")
	f.start(t, 1)
	f.frame(core.KeyNone)
	if len(f.log.aborts) != 1 || !strings.Contains(f.log.aborts[0].Reason, "flag 9000") {
		t.Fatalf("aborts = %+v", f.log.aborts)
	}
	if f.st.Flags.Get(1) {
		t.Error("script should stop at the bad flag")
	}
}

func TestLoopCounts(t *testing.T) {
	// Loops back twice: SOU runs three times.
	f := newFixture(t, "#0001\n@top\n<SOU0001<LOP0002:@top<END")
	f.start(t, 1)
	f.frame(core.KeyNone)
	if n := f.st.Sound.Pending(); n != 3 {
		t.Errorf("SOU ran %d times, expected 3", n)
	}
	if f.m.Status() != StatusTerminated {
		t.Errorf("Status = %v", f.m.Status())
	}
}

func TestLoopCountersSurviveCall(t *testing.T) {
	f := newFixture(t, `
#0001
@top
<CAL0002<LOP0001:@top<END
#0002
@inner
<SOU0002<LOP0002:@inner<RET
`)
	f.start(t, 1)
	f.frame(core.KeyNone)
	// Outer body runs twice, inner body three times per call.
	if n := f.st.Sound.Pending(); n != 6 {
		t.Errorf("SOU ran %d times, expected 6", n)
	}
}

func TestLongScriptCompletesInOneFrame(t *testing.T) {
	cases := map[string]string{
		"straight": "#0001\n" + strings.Repeat("<FL+0001", 5000) + "<FL+0002<END",
		"loop":     "#0001\n@top\n<FL+0001<LOP5000:@top<FL+0002<END",
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, source)
			f.start(t, 1)
			f.frame(core.KeyNone)
			if f.m.Status() != StatusTerminated {
				t.Errorf("Status = %v, expected Terminated after one frame", f.m.Status())
			}
			if !f.st.Flags.Get(2) {
				t.Error("the command after the burst did not run")
			}
		})
	}
}

func TestCommandBudgetYields(t *testing.T) {
	f := newFixture(t, "#0001\n@spin\n<JMP@spin")
	tc := config.DefaultEngineConstants().TextScript
	tc.MaxCommandsPerFrame = 100
	f.m = New(f.table, tc, nil)
	f.m.SetRecorder(f.log)
	f.start(t, 1)
	f.frame(core.KeyNone)
	if f.m.Status() != StatusRunning {
		t.Errorf("Status = %v, an endless loop should yield and stay running", f.m.Status())
	}
	if len(f.log.aborts) != 0 {
		t.Error("yielding is not an abort")
	}
}

func TestStartUnknownScript(t *testing.T) {
	f := newFixture(t, "#0001\n<END")
	err := f.m.Start(42)
	if !errors.Is(err, ErrUnknownScript) {
		t.Errorf("Start(42) = %v, expected ErrUnknownScript", err)
	}
	if f.m.Status() != StatusIdle {
		t.Errorf("failed Start must not change status, got %v", f.m.Status())
	}
}

func TestStartDiscardsRunningScript(t *testing.T) {
	f := newFixture(t, `
#0001
<CAL0002<FL+0001<END
#0002
<NOD<RET
#0003
<FL+0003<END
`)
	f.start(t, 1)
	f.frame(core.KeyNone)
	if f.m.Cursor().Depth() != 1 {
		t.Fatal("expected to be blocked inside a call")
	}

	f.start(t, 3)
	if f.m.Cursor().Depth() != 0 || f.m.Status() != StatusRunning {
		t.Fatalf("Start should reset the cursor, got %+v", f.m.Cursor())
	}
	f.frame(core.KeyJump)
	if !f.st.Flags.Get(3) || f.st.Flags.Get(1) {
		t.Errorf("flags = %v, expected only 3", f.st.Flags.SetIndices())
	}
}

func TestTransitionEndsScript(t *testing.T) {
	f := newFixture(t, "#0001\n<TRA0002:0100:0005:0006<FL+0001")
	f.start(t, 1)
	f.frame(core.KeyNone)

	tr, ok := f.st.TakeTransition()
	if !ok || tr != (game.Transition{Stage: 2, Script: 100, X: 5, Y: 6}) {
		t.Errorf("transition = %+v, %v", tr, ok)
	}
	if f.st.Flags.Get(1) || f.m.Status() != StatusTerminated {
		t.Error("TRA should end the script")
	}
}

func TestStateMutations(t *testing.T) {
	f := newFixture(t, `
#0001
<KEY<CAR0010:0005:0001:0002<FAO0004<QUA0010<FON0003:0004<MOV0007:0008<MYD0002<CMU0005<FAC0003<SVP<END
#0002
<PRI<FOM<FRE<MS2<CLO<END
`)
	f.start(t, 1)
	f.frame(core.KeyNone)

	st := f.st
	if st.Control.Has(game.ControlEnabled) {
		t.Error("KEY should disable player control")
	}
	if len(st.Carets) != 1 || st.Carets[0].Type != game.CaretBubble || st.Carets[0].Dir != core.DirRight {
		t.Errorf("carets = %+v", st.Carets)
	}
	if st.Fade.Phase != game.FadeOut || st.Fade.Dir != core.DirCenter {
		t.Errorf("fade = %+v", st.Fade)
	}
	if st.Camera.Quake != 10 || !st.Camera.Locked || st.Camera.Target != (core.Point{X: 3, Y: 4}) {
		t.Errorf("camera = %+v", st.Camera)
	}
	if st.Player.Pos != (core.Point{X: 7, Y: 8}) || st.Player.Facing != core.DirRight {
		t.Errorf("player = %+v", st.Player)
	}
	if st.Sound.Music != 5 || st.Text.Face != 3 {
		t.Errorf("music %d face %d", st.Sound.Music, st.Text.Face)
	}
	if !st.TakeSave() {
		t.Error("SVP should request a save")
	}

	f.frame(core.KeyNone) // terminated -> idle
	f.start(t, 2)
	f.frame(core.KeyNone)
	if !st.Control.Has(game.ControlDefault) || st.Camera.Locked || st.Text.Visible {
		t.Errorf("control %v camera %+v text visible %v", st.Control, st.Camera, st.Text.Visible)
	}
}

func TestNilRecorderAndLogger(t *testing.T) {
	f := newFixture(t, "#0001\n<FL-9999")
	f.m.SetRecorder(nil)
	f.start(t, 1)
	f.frame(core.KeyNone)
	if f.m.Status() != StatusTerminated {
		t.Errorf("Status = %v", f.m.Status())
	}
}
