package stage

import (
	"fmt"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/tsc"
)

// YAMLStage represents the YAML structure for a stage file.
type YAMLStage struct {
	ID     int         `yaml:"id"`
	Name   string      `yaml:"name"`
	Map    string      `yaml:"map"`
	Size   YAMLSize    `yaml:"size"`
	Start  YAMLPoint   `yaml:"start"`
	Music  int         `yaml:"music,omitempty"`
	Script string      `yaml:"script,omitempty"`
	Entry  int         `yaml:"entry,omitempty"`
	Tiles  []string    `yaml:"tiles,omitempty"`
	Events []YAMLEvent `yaml:"events,omitempty"`
}

// YAMLSize represents playfield dimensions.
type YAMLSize struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// YAMLPoint is a cell position.
type YAMLPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// YAMLEvent represents an interaction point.
type YAMLEvent struct {
	Name   string `yaml:"name"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Script int    `yaml:"script"`
	Glyph  string `yaml:"glyph,omitempty"`
	Flag   int    `yaml:"flag,omitempty"`
}

// ParseYAML parses a stage file. Size defaults to the tile art extent.
func ParseYAML(data []byte) (Stage, error) {
	var ys YAMLStage
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return Stage{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if ys.ID <= 0 {
		return Stage{}, fmt.Errorf("stage id must be positive, got %d", ys.ID)
	}

	w, h := ys.Size.W, ys.Size.H
	if w <= 0 {
		for _, row := range ys.Tiles {
			w = core.Max(w, utf8.RuneCountInString(row))
		}
	}
	if h <= 0 {
		h = len(ys.Tiles)
	}
	if w <= 0 || h <= 0 {
		return Stage{}, fmt.Errorf("stage %d has no size and no tiles", ys.ID)
	}

	st := Stage{
		ID:         ys.ID,
		Name:       ys.Name,
		Map:        ys.Map,
		Width:      w,
		Height:     h,
		Start:      core.Point{X: ys.Start.X, Y: ys.Start.Y},
		Music:      ys.Music,
		Entry:      tsc.ScriptID(ys.Entry),
		ScriptPath: ys.Script,
		Tiles:      ys.Tiles,
	}
	if !st.Bounds().Contains(st.Start.X, st.Start.Y) {
		return Stage{}, fmt.Errorf("stage %d start (%d,%d) is outside %dx%d", ys.ID, ys.Start.X, ys.Start.Y, w, h)
	}

	for _, ye := range ys.Events {
		glyph := '?'
		if r, _ := utf8.DecodeRuneInString(ye.Glyph); r != utf8.RuneError {
			glyph = r
		}
		st.Events = append(st.Events, Event{
			Name:   ye.Name,
			Pos:    core.Point{X: ye.X, Y: ye.Y},
			Script: tsc.ScriptID(ye.Script),
			Glyph:  glyph,
			Flag:   ye.Flag,
		})
	}
	return st, nil
}
