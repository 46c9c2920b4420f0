package core

// Color is a palette index for a screen cell. The platform decides what
// each index looks like.
type Color uint8

// Palette used by the stage renderer.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightYellow
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
	ColorDim

	ColorCount // Number of palette entries
)
