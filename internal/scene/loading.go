package scene

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/stage"
	"github.com/vovakirdan/tui-cave/internal/tsc"
)

// Global bank files looked up in the data directory, blob first.
var globalScriptFiles = []string{"head.tsb", "head.tsc"}

// StagesDir is the stage table directory under the data directory.
const StagesDir = "stages"

// LoadingScene makes sure the global script bank and the stage table are
// available, then hands over to the first stage or to a saved game.
type LoadingScene struct {
	Stage int // Stage to start in, 0 for the first stage of the table
	Slot  int // Save slot to resume, 0 for a new game
}

// Init loads whatever the host was not given up front.
func (l *LoadingScene) Init(h *Host) error {
	if h.Scripts.Global() == nil {
		t, err := LoadGlobalScripts(h.DataDir)
		if err != nil {
			return err
		}
		if err := h.Scripts.SetGlobal(t); err != nil {
			return err
		}
		h.logger.Debug("global scripts loaded", "scripts", t.Len())
	}
	if h.Stages == nil {
		t, err := stage.NewLoader(filepath.Join(h.DataDir, StagesDir)).LoadAll()
		if err != nil {
			return err
		}
		h.Stages = t
		h.logger.Debug("stages loaded", "stages", len(t.Stages()))
	}
	return nil
}

// Tick picks the stage scene to switch to.
func (l *LoadingScene) Tick(h *Host) error {
	if l.Slot > 0 {
		if h.Saves == nil {
			return fmt.Errorf("scene: no save store to load slot %d from", l.Slot)
		}
		slot, err := h.Saves.LoadSlot(l.Slot)
		if err != nil {
			return err
		}
		h.Slot = l.Slot
		h.SetNextScene(RestoreStageScene(slot))
		return nil
	}

	id := l.Stage
	if id == 0 {
		first, ok := h.Stages.First()
		if !ok {
			return errors.New("scene: stage table is empty")
		}
		id = first.ID
	}
	h.SetNextScene(NewStageScene(id))
	return nil
}

// Draw shows a loading banner.
func (l *LoadingScene) Draw(h *Host, s *core.Screen) {
	s.Clear()
	s.DrawTextCentered(s.Height()/2, "Loading...")
}

// LoadGlobalScripts reads the global bank from dir. A missing bank gives
// an empty table.
func LoadGlobalScripts(dir string) (*tsc.Table, error) {
	for _, name := range globalScriptFiles {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scene: reading global scripts: %w", err)
		}
		return tsc.Load(path, data, nil)
	}
	return tsc.NewTable(nil, nil)
}
