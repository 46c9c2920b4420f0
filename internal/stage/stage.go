// Package stage loads the stage table: per-stage map art, script file,
// entry script and interaction points.
package stage

import (
	"fmt"
	"os"

	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/tsc"
)

// Event is an interaction point that starts a script when the player
// presses Down on it.
type Event struct {
	Name   string
	Pos    core.Point
	Script tsc.ScriptID
	Glyph  rune
	Flag   int // Hide the event once this flag is set; 0 keeps it always
}

// Stage is one entry of the stage table.
type Stage struct {
	ID         int
	Name       string
	Map        string
	Width      int
	Height     int
	Start      core.Point
	Music      int
	Entry      tsc.ScriptID // Script run on arrival, 0 for none
	ScriptPath string       // Absolute or loader-relative path of the stage scripts
	Tiles      []string     // Background rows, '#' is drawn as wall
	Events     []Event
	FilePath   string
}

// Bounds returns the playfield rectangle.
func (s *Stage) Bounds() core.Rect {
	return core.NewRect(0, 0, s.Width, s.Height)
}

// Tile returns the background rune at (x, y), or space outside the art.
func (s *Stage) Tile(x, y int) rune {
	if y < 0 || y >= len(s.Tiles) {
		return ' '
	}
	row := []rune(s.Tiles[y])
	if x < 0 || x >= len(row) {
		return ' '
	}
	return row[x]
}

// EventAt returns the event at p, if any. Events hidden by a set flag
// are skipped when isSet reports them as set.
func (s *Stage) EventAt(p core.Point, isSet func(int) bool) (Event, bool) {
	for _, ev := range s.Events {
		if ev.Pos != p {
			continue
		}
		if ev.Flag > 0 && isSet != nil && isSet(ev.Flag) {
			continue
		}
		return ev, true
	}
	return Event{}, false
}

// LoadScripts reads and decodes the stage script file. CAL targets may
// resolve in the file or in global.
func (s *Stage) LoadScripts(global tsc.Resolver) (*tsc.Table, error) {
	if s.ScriptPath == "" {
		return tsc.NewTable(nil, global)
	}
	data, err := os.ReadFile(s.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("stage: reading scripts of stage %d: %w", s.ID, err)
	}
	t, err := tsc.Load(s.ScriptPath, data, global)
	if err != nil {
		return nil, fmt.Errorf("stage: scripts of stage %d: %w", s.ID, err)
	}
	return t, nil
}
