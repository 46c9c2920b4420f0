package main

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/game"
	"github.com/vovakirdan/tui-cave/internal/scene"
	"github.com/vovakirdan/tui-cave/internal/vm"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
}

// stateDump is the part of a host worth printing after a headless run.
type stateDump struct {
	Frame   uint64
	Stage   int
	Player  core.Point
	Control game.ControlFlags
	Flags   []int
	Fade    game.Fade
	Text    string
	Music   int
	Carets  []game.Caret
	VM      vm.Snapshot
	Abort   *vm.Abort
}

func dumpHost(h *scene.Host) string {
	st := h.State
	d := stateDump{
		Frame:   st.Frame,
		Stage:   st.StageID,
		Player:  st.Player.Pos,
		Control: st.Control,
		Flags:   st.Flags.SetIndices(),
		Fade:    st.Fade,
		Text:    st.Text.Text(),
		Music:   st.Sound.Music,
		Carets:  st.Carets,
		VM:      h.VM.Snapshot(),
	}
	if a, ok := h.VM.LastAbort(); ok {
		d.Abort = &a
	}
	return spewConfig.Sdump(d)
}
