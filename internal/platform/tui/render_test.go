package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/tui-cave/internal/core"
)

func TestMonoPaletteIsPlainText(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.DrawTextColored(0, 0, "ab", core.ColorRed)
	s.DrawTextColored(2, 1, "cd", core.Color(200))

	if got, want := MonoPalette().Render(s), s.String(); got != want {
		t.Errorf("mono render = %q, expected %q", got, want)
	}
}

func TestDefaultPaletteKeepsText(t *testing.T) {
	s := core.NewScreen(8, 3)
	s.DrawText(0, 0, "plain")
	s.DrawTextColored(1, 1, "wall", core.ColorGray)
	s.DrawTextColored(0, 2, "x", core.Color(200))

	out := DefaultPalette().Render(s)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "plain") {
		t.Errorf("default-colored run should be written unstyled, got %q", lines[0])
	}
	for _, want := range []string{"wall", "x"} {
		if !strings.Contains(out, want) {
			t.Errorf("render lost %q: %q", want, out)
		}
	}
}
