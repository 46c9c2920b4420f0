// Package scene runs the game one frame at a time. A Host owns the Shared
// Game State, the interpreter and the script store, and drives whichever
// Scene is current. Scenes request their successor; the swap happens after
// the frame that asked for it.
package scene

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-cave/internal/config"
	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/game"
	"github.com/vovakirdan/tui-cave/internal/stage"
	"github.com/vovakirdan/tui-cave/internal/storage"
	"github.com/vovakirdan/tui-cave/internal/tsc"
	"github.com/vovakirdan/tui-cave/internal/vm"
)

// Scene is one screen of the game.
type Scene interface {
	// Init is called once when the scene becomes current.
	Init(h *Host) error
	// Tick simulates one frame.
	Tick(h *Host) error
	// Draw renders the scene. It must not change simulation state.
	Draw(h *Host, s *core.Screen)
}

// SlotStore persists save slots.
type SlotStore interface {
	SaveSlot(slot storage.Slot) error
	LoadSlot(slot int) (storage.Slot, error)
}

// Deps are the collaborators a Host is built from. Global and Stages may be
// nil, in which case the loading scene reads them from DataDir.
type Deps struct {
	Consts  *config.EngineConstants
	Global  *tsc.Table
	Stages  *stage.Table
	Saves   SlotStore
	Aborts  vm.AbortRecorder
	Logger  *log.Logger
	DataDir string
}

// Host owns the game state and the current scene.
type Host struct {
	State   *game.State
	VM      *vm.Machine
	Scripts *tsc.Store
	Stages  *stage.Table
	Saves   SlotStore
	DataDir string
	Slot    int // Slot written by <SVP

	logger  *log.Logger
	current Scene
	next    Scene
}

// NewHost creates a host and initializes the first scene.
func NewHost(deps Deps, rt core.RuntimeConfig, first Scene) (*Host, error) {
	if deps.Consts == nil {
		return nil, errors.New("scene: engine constants are required")
	}
	if first == nil {
		return nil, errors.New("scene: no initial scene")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	scripts := tsc.NewStore(deps.Global)
	machine := vm.New(scripts, deps.Consts.TextScript, logger)
	if deps.Aborts != nil {
		machine.SetRecorder(deps.Aborts)
	}

	h := &Host{
		State:   game.NewState(deps.Consts, rt.Seed),
		VM:      machine,
		Scripts: scripts,
		Stages:  deps.Stages,
		Saves:   deps.Saves,
		DataDir: deps.DataDir,
		Slot:    1,
		logger:  logger,
		current: first,
	}
	if err := first.Init(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Logger returns the host logger.
func (h *Host) Logger() *log.Logger {
	return h.logger
}

// Current returns the running scene.
func (h *Host) Current() Scene {
	return h.current
}

// SetNextScene requests a scene change at the end of the current frame.
// A later request in the same frame replaces an earlier one.
func (h *Host) SetNextScene(s Scene) {
	h.next = s
}

// Frame simulates one frame with the given keys held.
func (h *Host) Frame(held core.Key) error {
	h.State.Keys.Held = held
	err := h.current.Tick(h)
	h.State.Frame++
	if err != nil {
		return err
	}

	if h.next != nil {
		h.current, h.next = h.next, nil
		if err := h.current.Init(h); err != nil {
			return err
		}
	}
	return nil
}

// Draw renders the current scene into s.
func (h *Host) Draw(s *core.Screen) {
	h.current.Draw(h, s)
}
