// Package game holds the Shared Game State: the single aggregate every
// per-frame entry point receives by pointer. It has no package-level state.
package game

import (
	"github.com/vovakirdan/tui-cave/internal/config"
	"github.com/vovakirdan/tui-cave/internal/core"
)

// Transition is a deferred request to enter another stage.
type Transition struct {
	Stage  int // Stage id
	Script int // Script to run on arrival
	X, Y   int // Player position on arrival
}

// State is the game state shared by the stage scene, the text script
// interpreter and the renderer.
type State struct {
	Consts *config.EngineConstants

	Flags     *FlagBank
	Keys      core.KeyState
	Control   ControlFlags
	Fade      Fade
	Text      TextBox
	Sound     SoundQueue
	Camera    Camera
	Player    Player
	Carets    []Caret
	GameRNG   *RNG
	EffectRNG *RNG

	StageID int       // Currently loaded stage
	Bounds  core.Rect // Playfield the player is kept inside
	Frame   uint64    // Frames simulated since the state was created

	transition *Transition
	saveWanted bool
}

// NewState creates a state sized by the engine constants.
// The seed fixes both generators, so equal seeds replay equally.
func NewState(consts *config.EngineConstants, seed int64) *State {
	return &State{
		Consts:    consts,
		Flags:     NewFlagBank(consts.Flags.Count),
		Control:   ControlDefault,
		Carets:    make([]Caret, 0, 32),
		GameRNG:   NewRNG(int32(seed)),
		EffectRNG: NewRNG(int32(seed>>32) ^ 0x2545f491),
	}
}

// CreateCaret spawns a caret at (x, y).
func (s *State) CreateCaret(x, y int, t CaretType, dir core.Direction) {
	s.Carets = append(s.Carets, NewCaret(x, y, t, dir, s.Consts))
}

// TickCarets ticks every caret, then removes the dead ones.
func (s *State) TickCarets() {
	for i := range s.Carets {
		s.Carets[i].Tick(s.EffectRNG)
	}

	alive := s.Carets[:0]
	for _, c := range s.Carets {
		if !c.Dead() {
			alive = append(alive, c)
		}
	}
	clear(s.Carets[len(alive):])
	s.Carets = alive
}

// StartFadeIn begins a fade-in using the configured duration.
func (s *State) StartFadeIn(dir core.Direction) {
	s.Fade.StartIn(dir, s.Consts.Fade.Duration)
}

// StartFadeOut begins a fade-out using the configured duration.
func (s *State) StartFadeOut(dir core.Direction) {
	s.Fade.StartOut(dir, s.Consts.Fade.Duration)
}

// RequestTransition records a stage change for the scene to perform
// once the current frame is over. A later request replaces an earlier one.
func (s *State) RequestTransition(t Transition) {
	s.transition = &t
}

// PendingTransition reports the requested stage change without consuming it.
func (s *State) PendingTransition() (Transition, bool) {
	if s.transition == nil {
		return Transition{}, false
	}
	return *s.transition, true
}

// TakeTransition consumes the requested stage change.
func (s *State) TakeTransition() (Transition, bool) {
	t, ok := s.PendingTransition()
	s.transition = nil
	return t, ok
}

// RequestSave asks the scene to persist the game after the frame.
func (s *State) RequestSave() {
	s.saveWanted = true
}

// TakeSave consumes a save request.
func (s *State) TakeSave() bool {
	ok := s.saveWanted
	s.saveWanted = false
	return ok
}

// ResetStage clears per-stage state when entering a stage.
// Flags, RNG state and music survive stage changes.
func (s *State) ResetStage(stageID int) {
	s.StageID = stageID
	s.Carets = s.Carets[:0]
	s.Text.Close()
	s.Camera = Camera{}
	s.Control = ControlDefault
	s.transition = nil
}

// FlagSet reports whether flag i is set. Out-of-range flags read as clear.
func (s *State) FlagSet(i int) bool {
	return s.Flags.InRange(i) && s.Flags.Get(i)
}
