package game

import "github.com/vovakirdan/tui-cave/internal/core"

// FadePhase is the screen transition state.
type FadePhase int

const (
	FadeVisible FadePhase = iota // Scene fully shown
	FadeIn                       // Revealing the scene
	FadeHidden                   // Scene fully covered
	FadeOut                      // Covering the scene
)

// String returns a human-readable name for the phase.
func (p FadePhase) String() string {
	switch p {
	case FadeVisible:
		return "visible"
	case FadeIn:
		return "fade_in"
	case FadeHidden:
		return "hidden"
	case FadeOut:
		return "fade_out"
	default:
		return "unknown"
	}
}

// Fade tracks a directional screen fade.
type Fade struct {
	Phase    FadePhase
	Dir      core.Direction
	Tick     int
	Duration int
}

// StartIn begins revealing the scene from dir.
func (f *Fade) StartIn(dir core.Direction, duration int) {
	f.start(FadeIn, dir, duration)
}

// StartOut begins covering the scene towards dir.
func (f *Fade) StartOut(dir core.Direction, duration int) {
	f.start(FadeOut, dir, duration)
}

func (f *Fade) start(p FadePhase, dir core.Direction, duration int) {
	f.Phase = p
	f.Dir = dir
	f.Tick = 0
	f.Duration = core.Max(duration, 1)
}

// Update advances an active fade by one frame.
func (f *Fade) Update() {
	if !f.Busy() {
		return
	}
	f.Tick++
	if f.Tick < f.Duration {
		return
	}
	if f.Phase == FadeIn {
		f.Phase = FadeVisible
	} else {
		f.Phase = FadeHidden
	}
	f.Tick = 0
}

// Busy reports whether a fade is in progress.
func (f *Fade) Busy() bool {
	return f.Phase == FadeIn || f.Phase == FadeOut
}

// Coverage returns how much of the screen is covered, from 0 to 1.
func (f *Fade) Coverage() float64 {
	switch f.Phase {
	case FadeHidden:
		return 1
	case FadeOut:
		return float64(f.Tick) / float64(f.Duration)
	case FadeIn:
		return 1 - float64(f.Tick)/float64(f.Duration)
	default:
		return 0
	}
}

// Covers reports whether the cell (x, y) of a w×h screen is covered.
// The covered region grows from the fade direction.
func (f *Fade) Covers(x, y, w, h int) bool {
	c := f.Coverage()
	if c <= 0 {
		return false
	}
	if c >= 1 {
		return true
	}
	switch f.Dir {
	case core.DirLeft:
		return float64(x) < c*float64(w)
	case core.DirRight:
		return float64(w-1-x) < c*float64(w)
	case core.DirUp:
		return float64(y) < c*float64(h)
	case core.DirBottom:
		return float64(h-1-y) < c*float64(h)
	default:
		dx := float64(core.Abs(2*x-w)) / float64(w)
		dy := float64(core.Abs(2*y-h)) / float64(h)
		return 1-core.Maxf(dx, dy) < c
	}
}
