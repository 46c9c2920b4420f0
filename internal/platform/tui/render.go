package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-cave/internal/core"
)

// Palette holds one lipgloss style per screen color.
type Palette struct {
	styles [core.ColorCount]lipgloss.Style
	plain  bool // No styling at all; runs are written as is
}

// DefaultPalette is the ANSI 256-color stage palette.
func DefaultPalette() *Palette {
	fg := func(code string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(code))
	}
	p := &Palette{}
	p.styles[core.ColorDefault] = lipgloss.NewStyle()
	p.styles[core.ColorRed] = fg("1")
	p.styles[core.ColorGreen] = fg("2")
	p.styles[core.ColorYellow] = fg("3")
	p.styles[core.ColorBlue] = fg("4")
	p.styles[core.ColorMagenta] = fg("5")
	p.styles[core.ColorCyan] = fg("6")
	p.styles[core.ColorWhite] = fg("7")
	p.styles[core.ColorBrightRed] = fg("9")
	p.styles[core.ColorBrightYellow] = fg("11")
	p.styles[core.ColorBrightCyan] = fg("14")
	p.styles[core.ColorBrightWhite] = fg("15").Bold(true)
	p.styles[core.ColorOrange] = fg("208")
	p.styles[core.ColorGray] = fg("245")
	p.styles[core.ColorDim] = fg("238").Faint(true)
	return p
}

// MonoPalette renders the screen as plain text, for NO_COLOR terminals.
func MonoPalette() *Palette {
	return &Palette{plain: true}
}

func (p *Palette) style(c core.Color) lipgloss.Style {
	if c >= core.ColorCount {
		c = core.ColorDefault
	}
	return p.styles[c]
}

// Render converts a Screen buffer to a styled string for display.
// Adjacent cells of one color share a single styled run.
func (p *Palette) Render(s *core.Screen) string {
	if p.plain {
		return s.String()
	}

	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())
	var run strings.Builder

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := 0; x < s.Width(); {
			color := s.GetCell(x, y).Color
			run.Reset()
			for ; x < s.Width(); x++ {
				cell := s.GetCell(x, y)
				if cell.Color != color {
					break
				}
				run.WriteRune(cell.Rune)
			}
			if color == core.ColorDefault {
				sb.WriteString(run.String())
				continue
			}
			sb.WriteString(p.style(color).Render(run.String()))
		}
	}
	return sb.String()
}
