package scene

import (
	"fmt"

	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/game"
	"github.com/vovakirdan/tui-cave/internal/stage"
	"github.com/vovakirdan/tui-cave/internal/storage"
	"github.com/vovakirdan/tui-cave/internal/tsc"
	"github.com/vovakirdan/tui-cave/internal/vm"
)

// Text box heights in rows, border included.
const (
	framedBoxHeight = 6
	topBoxHeight    = 3
)

// StageScene plays one stage: the player walks, events start scripts and
// the interpreter advances every frame.
type StageScene struct {
	id      int
	entry   tsc.ScriptID  // Overrides the stage entry script when non-zero
	arrival *core.Point   // Overrides the stage start position
	restore *storage.Slot // Saved game to resume

	stage   *stage.Stage
	latched core.Key // Keys that started an event; ignored for walking until released
}

// NewStageScene enters stage id at its start position and runs its entry script.
func NewStageScene(id int) *StageScene {
	return &StageScene{id: id}
}

// TransitionScene enters a stage the way <TRA asks for it.
func TransitionScene(t game.Transition) *StageScene {
	return &StageScene{
		id:      t.Stage,
		entry:   tsc.ScriptID(t.Script),
		arrival: &core.Point{X: t.X, Y: t.Y},
	}
}

// RestoreStageScene resumes a saved game.
func RestoreStageScene(slot storage.Slot) *StageScene {
	return &StageScene{id: slot.StageID, restore: &slot}
}

// Stage returns the loaded stage, nil before Init.
func (s *StageScene) Stage() *stage.Stage {
	return s.stage
}

// Init loads the stage scripts and places the player.
func (s *StageScene) Init(h *Host) error {
	st, ok := h.Stages.Lookup(s.id)
	if !ok {
		return fmt.Errorf("scene: unknown stage %d", s.id)
	}
	scripts, err := st.LoadScripts(h.Scripts.Global())
	if err != nil {
		return err
	}
	if err := h.Scripts.SetStage(scripts, h.VM.Active()); err != nil {
		return err
	}
	s.stage = st

	gs := h.State
	gs.ResetStage(st.ID)
	gs.Bounds = st.Bounds()
	pos := st.Start
	if s.arrival != nil {
		pos = *s.arrival
	}
	gs.Player.MoveTo(pos.X, pos.Y, gs.Bounds)
	if st.Music > 0 {
		gs.Sound.ChangeMusic(st.Music)
	}

	if s.restore != nil {
		return s.resume(h)
	}

	entry := st.Entry
	if s.entry != 0 {
		entry = s.entry
	}
	if entry != 0 {
		if err := h.VM.Start(entry); err != nil {
			return fmt.Errorf("scene: stage %d entry: %w", st.ID, err)
		}
	}
	h.logger.Info("stage entered", "stage", st.ID, "name", st.Name, "entry", int(entry))
	return nil
}

func (s *StageScene) resume(h *Host) error {
	gs := h.State
	slot := s.restore
	if err := gs.Flags.UnmarshalBinary(slot.Flags); err != nil {
		return fmt.Errorf("scene: slot %d flags: %w", slot.Slot, err)
	}
	gs.Player.MoveTo(slot.PlayerX, slot.PlayerY, gs.Bounds)

	if len(slot.VMSnapshot) > 0 {
		var snap vm.Snapshot
		if err := snap.UnmarshalBinary(slot.VMSnapshot); err != nil {
			return fmt.Errorf("scene: slot %d snapshot: %w", slot.Slot, err)
		}
		if err := h.VM.Restore(snap); err != nil {
			return fmt.Errorf("scene: slot %d snapshot: %w", slot.Slot, err)
		}
	}
	h.logger.Info("game resumed", "slot", slot.Slot, "stage", slot.StageID, "vm", h.VM.Status())
	return nil
}

// Tick runs one frame of the stage.
func (s *StageScene) Tick(h *Host) error {
	gs := h.State
	gs.Keys.UpdateTrigger()

	s.latched &= gs.Keys.Held
	if s.interact(h) {
		s.latched |= core.KeyDown
	}
	if gs.Control.Has(game.ControlEnabled) {
		gs.Player.Nudge(gs.Keys.Held&^s.latched, gs.Bounds)
	}

	if gs.Control.Has(game.ControlTickWorld) {
		gs.TickCarets()
	}
	gs.Fade.Update()
	gs.Camera.Tick()

	h.VM.AdvanceOneFrame(gs)

	for _, cue := range gs.Sound.Drain() {
		h.logger.Debug("sound", "cue", cue, "frame", gs.Frame)
	}

	if gs.TakeSave() {
		s.save(h)
	}
	if h.VM.Idle() {
		if t, ok := gs.TakeTransition(); ok {
			if _, known := h.Stages.Lookup(t.Stage); !known {
				h.logger.Warn("transition to unknown stage ignored", "stage", t.Stage, "frame", gs.Frame)
			} else {
				h.SetNextScene(TransitionScene(t))
			}
		}
	}
	return nil
}

// interact starts the event script under the player on a Down press.
func (s *StageScene) interact(h *Host) bool {
	gs := h.State
	if !h.VM.Idle() || !gs.Control.Has(game.ControlInteraction) || !gs.Keys.Trigger.Has(core.KeyDown) {
		return false
	}
	ev, ok := s.stage.EventAt(gs.Player.Pos, gs.FlagSet)
	if !ok || ev.Script == 0 {
		return false
	}
	if err := h.VM.Start(ev.Script); err != nil {
		h.logger.Warn("event script missing", "event", ev.Name, "script", int(ev.Script), "error", err)
		return false
	}
	return true
}

func (s *StageScene) save(h *Host) {
	gs := h.State
	if h.Saves == nil {
		h.logger.Warn("save requested without a save store", "frame", gs.Frame)
		return
	}
	flags, err := gs.Flags.MarshalBinary()
	if err != nil {
		h.logger.Error("encoding flags", "error", err)
		return
	}
	slot := storage.Slot{
		Slot:    h.Slot,
		StageID: gs.StageID,
		PlayerX: gs.Player.Pos.X,
		PlayerY: gs.Player.Pos.Y,
		Flags:   flags,
	}
	if !h.VM.Idle() {
		slot.VMSnapshot, err = h.VM.Snapshot().MarshalBinary()
		if err != nil {
			h.logger.Error("encoding script snapshot", "error", err)
			return
		}
	}
	if err := h.Saves.SaveSlot(slot); err != nil {
		h.logger.Error("saving game", "slot", h.Slot, "error", err)
		return
	}
	h.logger.Info("game saved", "slot", h.Slot, "stage", gs.StageID)
}
