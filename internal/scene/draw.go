package scene

import (
	"fmt"
	"unicode/utf8"

	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/game"
)

// tileColors colours background art by rune.
var tileColors = map[rune]core.Color{
	'#': core.ColorGray,
	'~': core.ColorBlue,
	'.': core.ColorDim,
	'"': core.ColorGreen,
	'=': core.ColorOrange,
}

// Draw renders the stage, its events, the player, carets, the fade cover,
// the text box and a status line.
func (s *StageScene) Draw(h *Host, scr *core.Screen) {
	scr.Clear()
	if s.stage == nil || scr.Width() == 0 || scr.Height() < 2 {
		return
	}
	gs := h.State
	viewW, viewH := scr.Width(), scr.Height()-1

	origin := s.origin(gs, viewW, viewH)
	toScreen := func(p core.Point) (int, int) {
		return p.X - origin.X, p.Y - origin.Y
	}

	for sy := 0; sy < viewH; sy++ {
		for sx := 0; sx < viewW; sx++ {
			wx, wy := sx+origin.X, sy+origin.Y
			if wx < 0 || wy < 0 || wx >= s.stage.Width || wy >= s.stage.Height {
				continue
			}
			r := s.stage.Tile(wx, wy)
			scr.SetColored(sx, sy, r, tileColors[r])
		}
	}

	for _, ev := range s.stage.Events {
		if ev.Flag > 0 && gs.FlagSet(ev.Flag) {
			continue
		}
		x, y := toScreen(ev.Pos)
		scr.SetColored(x, y, ev.Glyph, core.ColorYellow)
	}

	px, py := toScreen(gs.Player.Pos)
	scr.SetColored(px, py, '@', core.ColorBrightWhite)

	for i := range gs.Carets {
		c := &gs.Carets[i]
		x, y := toScreen(c.Cell())
		scr.SetColored(x, y, c.Glyph(), core.ColorBrightCyan)
	}

	if gs.Fade.Coverage() > 0 {
		for sy := 0; sy < viewH; sy++ {
			for sx := 0; sx < viewW; sx++ {
				if gs.Fade.Covers(sx, sy, viewW, viewH) {
					scr.SetColored(sx, sy, ' ', core.ColorDefault)
				}
			}
		}
	}

	drawTextBox(scr, &gs.Text, viewW, viewH)
	s.drawStatus(h, scr, viewH)
}

// origin returns the world point drawn at the top-left screen cell.
// Small stages are centred; large ones follow the camera, clamped to the map.
func (s *StageScene) origin(gs *game.State, viewW, viewH int) core.Point {
	focus := gs.Camera.Focus(gs.Player.Pos)
	// Shake comes from a frame-keyed generator; drawing never advances EffectRNG.
	shake := gs.Camera.Shake(game.NewRNG(int32(gs.Frame)))

	axis := func(focus, size, view int) int {
		if size <= view {
			return -(view - size) / 2
		}
		return core.Clamp(focus-view/2, 0, size-view)
	}
	return core.Point{
		X: axis(focus.X, s.stage.Width, viewW) + shake.X,
		Y: axis(focus.Y, s.stage.Height, viewH) + shake.Y,
	}
}

func drawTextBox(scr *core.Screen, box *game.TextBox, viewW, viewH int) {
	if !box.Visible {
		return
	}
	if box.Framed {
		r := core.NewRect(0, viewH-framedBoxHeight, viewW, framedBoxHeight)
		scr.DrawRect(r, ' ')
		scr.DrawBox(r, core.ColorWhite)
		textX := r.X + 2
		if box.Face > 0 {
			scr.DrawTextColored(textX, r.Y+1, fmt.Sprintf("[%d]", box.Face), core.ColorYellow)
			textX += 6
		}
		lines := box.Lines(r.Right()-2-textX, framedBoxHeight-2)
		for i, line := range lines {
			scr.DrawText(textX, r.Y+1+i, line)
		}
		return
	}

	r := core.NewRect(0, 0, viewW, topBoxHeight)
	scr.DrawRect(r, ' ')
	for i, line := range box.Lines(viewW-2, topBoxHeight) {
		scr.DrawTextColored(1, i, line, core.ColorBrightWhite)
	}
}

func (s *StageScene) drawStatus(h *Host, scr *core.Screen, row int) {
	gs := h.State
	left := fmt.Sprintf(" %s", s.stage.Name)
	right := fmt.Sprintf("music %d  sound %d ", gs.Sound.Music, gs.Sound.Last)
	scr.DrawTextColored(0, row, left, core.ColorCyan)
	// The sound readout is dropped when it would cover the stage name.
	rw := utf8.RuneCountInString(right)
	if utf8.RuneCountInString(left)+rw < scr.Width() {
		scr.DrawTextColored(scr.Width()-rw, row, right, core.ColorGray)
	}
}
