package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-cave/internal/config"
	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/storage"
	"github.com/vovakirdan/tui-cave/internal/vm"
)

const headTSC = `#0001
<SOU0002<RET
`

const caveYAML = `id: 1
name: Cave
start: {x: 2, y: 1}
script: cave.tsc
entry: 100
music: 3
events:
  - {name: sign, x: 3, y: 1, script: 200, glyph: "!", flag: 30}
  - {name: door, x: 1, y: 1, script: 300, glyph: "D"}
  - {name: shrine, x: 4, y: 1, script: 500, glyph: "S"}
  - {name: nowhere, x: 5, y: 1, script: 600, glyph: "?"}
tiles:
  - "#######"
  - "#     #"
  - "#######"
`

const caveTSC = `#0100
<MSG<TUR
Welcome.<NOD<CLO<END
#0200
<FL+0030<CAL0001<END
#0300
<TRA0002:0400:0001:0001
#0500
<FL+0050<SVP<MSG<TUR
Saved.<NOD<CLO<FL+0051<END
#0600
<TRA0099:0000:0000:0000
`

const hallYAML = `id: 2
name: Hall
size: {w: 10, h: 4}
start: {x: 5, y: 2}
script: hall.tsc
`

const hallTSC = `#0400
<FL+0040<END
`

// memSaves keeps slots in memory.
type memSaves map[int]storage.Slot

func (m memSaves) SaveSlot(s storage.Slot) error {
	m[s.Slot] = s
	return nil
}

func (m memSaves) LoadSlot(n int) (storage.Slot, error) {
	s, ok := m[n]
	if !ok {
		return storage.Slot{}, fmt.Errorf("%w: %d", storage.ErrNoSlot, n)
	}
	return s, nil
}

func writeData(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"head.tsc":         headTSC,
		"stages/cave.yaml": caveYAML,
		"stages/cave.tsc":  caveTSC,
		"stages/hall.yaml": hallYAML,
		"stages/hall.tsc":  hallTSC,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestHost(t *testing.T, dir string, saves SlotStore, first Scene) *Host {
	t.Helper()
	consts := config.DefaultEngineConstants()
	h, err := NewHost(Deps{Consts: &consts, Saves: saves, DataDir: dir}, core.DefaultConfig(), first)
	if err != nil {
		t.Fatalf("NewHost() failed: %v", err)
	}
	return h
}

func step(t *testing.T, h *Host, held core.Key) {
	t.Helper()
	if err := h.Frame(held); err != nil {
		t.Fatalf("Frame(%v) failed: %v", held, err)
	}
}

func TestLoadingEntersFirstStage(t *testing.T) {
	h := newTestHost(t, writeData(t), nil, &LoadingScene{})

	step(t, h, core.KeyNone)
	sc, ok := h.Current().(*StageScene)
	if !ok {
		t.Fatalf("expected stage scene, got %T", h.Current())
	}
	if sc.Stage().ID != 1 || h.State.StageID != 1 {
		t.Errorf("expected stage 1, got %d", h.State.StageID)
	}
	if h.State.Player.Pos != (core.Point{X: 2, Y: 1}) {
		t.Errorf("player at %v, expected start (2,1)", h.State.Player.Pos)
	}
	if h.State.Sound.Music != 3 {
		t.Errorf("music = %d, expected 3", h.State.Sound.Music)
	}
	if h.VM.Status() != vm.StatusRunning {
		t.Errorf("entry script should be pending, status %v", h.VM.Status())
	}

	step(t, h, core.KeyNone)
	if !h.State.Text.Visible || h.State.Text.Text() != "Welcome." {
		t.Errorf("text box = %v %q", h.State.Text.Visible, h.State.Text.Text())
	}
	if h.VM.Status() != vm.StatusWaitingForInput {
		t.Fatalf("expected NOD wait, got %v", h.VM.Status())
	}

	step(t, h, core.KeyJump)
	if h.State.Text.Visible || !h.VM.Idle() {
		t.Errorf("expected closed box and idle VM, got %v %v", h.State.Text.Visible, h.VM.Status())
	}
}

// enterCave runs the loader and the entry script to completion.
func enterCave(t *testing.T, h *Host) {
	t.Helper()
	step(t, h, core.KeyNone)
	step(t, h, core.KeyNone)
	step(t, h, core.KeyJump)
	step(t, h, core.KeyNone)
	if !h.VM.Idle() {
		t.Fatalf("entry script still running: %v", h.VM.Status())
	}
}

func TestInteractionStartsEventScript(t *testing.T) {
	h := newTestHost(t, writeData(t), nil, &LoadingScene{})
	enterCave(t, h)

	step(t, h, core.KeyRight)
	step(t, h, core.KeyNone)
	if h.State.Player.Pos != (core.Point{X: 3, Y: 1}) {
		t.Fatalf("player at %v, expected (3,1)", h.State.Player.Pos)
	}

	step(t, h, core.KeyDown)
	if !h.State.Flags.Get(30) {
		t.Error("sign script should set flag 30")
	}
	if h.State.Player.Pos != (core.Point{X: 3, Y: 1}) {
		t.Errorf("interaction moved the player to %v", h.State.Player.Pos)
	}
	if got := h.State.Sound.Last; got != 2 {
		t.Errorf("global script via CAL should play cue 2, got %d", got)
	}

	// Down stays latched while held.
	step(t, h, core.KeyDown)
	if h.State.Player.Pos != (core.Point{X: 3, Y: 1}) {
		t.Errorf("held Down walked off the event to %v", h.State.Player.Pos)
	}

	// The sign is hidden once flag 30 is set, so Down just walks.
	step(t, h, core.KeyNone)
	step(t, h, core.KeyDown)
	if h.State.Player.Pos != (core.Point{X: 3, Y: 2}) {
		t.Errorf("player at %v, expected (3,2)", h.State.Player.Pos)
	}
}

func TestInteractionNeedsControl(t *testing.T) {
	h := newTestHost(t, writeData(t), nil, &LoadingScene{})
	step(t, h, core.KeyNone)
	h.State.Player.MoveTo(3, 1, h.State.Bounds)

	// The entry script holds the VM, so Down cannot start the sign.
	step(t, h, core.KeyDown)
	if h.State.Flags.Get(30) {
		t.Error("event started while a script was running")
	}
}

func TestTransitionSwapsStage(t *testing.T) {
	h := newTestHost(t, writeData(t), nil, &LoadingScene{})
	enterCave(t, h)

	step(t, h, core.KeyLeft)
	step(t, h, core.KeyNone)
	step(t, h, core.KeyDown)

	sc, ok := h.Current().(*StageScene)
	if !ok || sc.Stage().ID != 2 {
		t.Fatalf("expected hall scene after <TRA, got %T", h.Current())
	}
	if h.State.Player.Pos != (core.Point{X: 1, Y: 1}) {
		t.Errorf("arrival at %v, expected (1,1)", h.State.Player.Pos)
	}

	step(t, h, core.KeyNone)
	if !h.State.Flags.Get(40) {
		t.Error("arrival script should set flag 40")
	}
	if h.State.Sound.Music != 3 {
		t.Errorf("music should survive a stage without its own, got %d", h.State.Sound.Music)
	}
}

func TestTransitionToUnknownStageIgnored(t *testing.T) {
	h := newTestHost(t, writeData(t), nil, &LoadingScene{})
	enterCave(t, h)
	scene := h.Current()

	h.State.Player.MoveTo(5, 1, h.State.Bounds)
	step(t, h, core.KeyDown)
	if h.Current() != scene {
		t.Error("scene changed for an unknown stage")
	}
	if _, ok := h.State.PendingTransition(); ok {
		t.Error("transition should be consumed")
	}
}

func TestSaveAndResume(t *testing.T) {
	dir := writeData(t)
	saves := memSaves{}
	h := newTestHost(t, dir, saves, &LoadingScene{})
	enterCave(t, h)

	h.State.Player.MoveTo(4, 1, h.State.Bounds)
	step(t, h, core.KeyDown)
	slot, ok := saves[1]
	if !ok {
		t.Fatal("<SVP did not write slot 1")
	}
	if slot.StageID != 1 || slot.PlayerX != 4 || len(slot.VMSnapshot) == 0 {
		t.Errorf("slot = %+v", slot)
	}

	resumed := newTestHost(t, dir, saves, &LoadingScene{Slot: 1})
	step(t, resumed, core.KeyNone)
	if resumed.State.Player.Pos != (core.Point{X: 4, Y: 1}) {
		t.Errorf("resumed at %v", resumed.State.Player.Pos)
	}
	if !resumed.State.Flags.Get(50) || resumed.State.Flags.Get(51) {
		t.Error("flags not restored from the slot")
	}
	if resumed.VM.Status() != vm.StatusWaitingForInput {
		t.Fatalf("expected resumed NOD wait, got %v", resumed.VM.Status())
	}

	step(t, resumed, core.KeyFire)
	if !resumed.State.Flags.Get(51) || !resumed.VM.Idle() {
		t.Errorf("script did not finish after resume: %v", resumed.VM.Status())
	}
}

func TestLoadMissingSlot(t *testing.T) {
	h := newTestHost(t, writeData(t), memSaves{}, &LoadingScene{Slot: 5})
	if err := h.Frame(core.KeyNone); !errors.Is(err, storage.ErrNoSlot) {
		t.Errorf("Frame() = %v, expected ErrNoSlot", err)
	}
}

func TestUnknownStartStage(t *testing.T) {
	h := newTestHost(t, writeData(t), nil, &LoadingScene{Stage: 42})
	if err := h.Frame(core.KeyNone); err == nil {
		t.Error("expected an error for stage 42")
	}
}

func TestDrawStage(t *testing.T) {
	h := newTestHost(t, writeData(t), nil, &LoadingScene{})
	step(t, h, core.KeyNone)

	scr := core.NewScreen(20, 8)
	h.Draw(scr)

	// The 7x3 cave is centred in a 20x7 view: origin (-6, -2).
	if got := scr.Get(8, 3); got != '@' {
		t.Errorf("player cell = %q", got)
	}
	if got := scr.Get(6, 2); got != '#' {
		t.Errorf("wall cell = %q", got)
	}
	if got := scr.Get(9, 3); got != '!' {
		t.Errorf("sign cell = %q", got)
	}
	if got := scr.GetCell(8, 3).Color; got != core.ColorBrightWhite {
		t.Errorf("player colour = %v", got)
	}

	step(t, h, core.KeyNone)
	h.Draw(scr)
	if got := string([]rune(scr.Row(2))[2:10]); got != "Welcome." {
		t.Errorf("text box row = %q", scr.Row(2))
	}
}

func TestDrawFadeCoversView(t *testing.T) {
	h := newTestHost(t, writeData(t), nil, &LoadingScene{})
	step(t, h, core.KeyNone)
	h.State.StartFadeOut(core.DirCenter)
	h.State.Fade.Tick = h.State.Fade.Duration

	scr := core.NewScreen(20, 8)
	h.Draw(scr)
	if got := scr.Get(8, 3); got != ' ' {
		t.Errorf("covered cell = %q", got)
	}
	if got := scr.Row(7); !strings.Contains(got, "Cave") {
		t.Errorf("status line should stay visible, got %q", got)
	}
}

func TestDrawStatusKeepsStageName(t *testing.T) {
	h := newTestHost(t, writeData(t), nil, &LoadingScene{})
	step(t, h, core.KeyNone)

	cases := []struct {
		width     int
		wantSound bool
	}{
		{width: 40, wantSound: true},
		{width: 20, wantSound: false},
		{width: 12, wantSound: false},
	}
	for _, tc := range cases {
		scr := core.NewScreen(tc.width, 8)
		h.Draw(scr)
		row := scr.Row(7)
		if !strings.HasPrefix(row, " Cave") {
			t.Errorf("width %d: status line = %q, expected the stage name first", tc.width, row)
		}
		if got := strings.Contains(row, "music"); got != tc.wantSound {
			t.Errorf("width %d: sound readout shown = %v, expected %v (%q)", tc.width, got, tc.wantSound, row)
		}
	}
}

func TestNewHostRequiresConstants(t *testing.T) {
	if _, err := NewHost(Deps{}, core.DefaultConfig(), &LoadingScene{}); err == nil {
		t.Error("expected an error without engine constants")
	}
}

func TestShippedDataPlays(t *testing.T) {
	h := newTestHost(t, filepath.Join("..", "..", "data"), nil, &LoadingScene{})
	step(t, h, core.KeyNone)
	if h.State.StageID != 1 {
		t.Fatalf("expected to start in stage 1, got %d", h.State.StageID)
	}
	stages := h.Stages.Stages()
	if len(stages) < 2 {
		t.Fatalf("expected at least 2 shipped stages, got %d", len(stages))
	}
	for _, st := range stages {
		if _, err := st.LoadScripts(h.Scripts.Global()); err != nil {
			t.Errorf("stage %d scripts: %v", st.ID, err)
		}
	}

	h.VM.Stop()
	h.SetNextScene(NewStageScene(2))
	step(t, h, core.KeyNone)
	for i := 0; i < 10 && !h.VM.Idle(); i++ {
		step(t, h, core.KeyNone)
	}
	if h.State.StageID != 2 || !h.VM.Idle() {
		t.Fatalf("cave entry did not finish: stage %d, vm %v", h.State.StageID, h.VM.Status())
	}

	if err := h.VM.Start(410); err != nil {
		t.Fatalf("Start(410) failed: %v", err)
	}
	for i := 0; i < 200 && h.VM.Status() != vm.StatusWaitingForInput; i++ {
		step(t, h, core.KeyNone)
	}
	if got := h.State.Text.Text(); got != "Hop! Hop. Hop." {
		t.Errorf("critter text = %q, expected three hops", got)
	}
}
