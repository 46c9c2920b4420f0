// Package config provides YAML-based engine constants and environment
// configuration for the cave engine.
package config

import "fmt"

// MinFlagCount is the smallest flag bank the engine accepts.
const MinFlagCount = 8000

// EngineConstants contains the authored engine constants.
// They are loaded from YAML so stages can be tuned without a rebuild.
type EngineConstants struct {
	TextScript TextScriptConstants       `yaml:"text_script"`
	Flags      FlagConstants             `yaml:"flags"`
	Fade       FadeConstants             `yaml:"fade"`
	Input      InputConstants            `yaml:"input"`
	Carets     map[string]CaretConstants `yaml:"carets"`
}

// TextScriptConstants tunes the script interpreter.
type TextScriptConstants struct {
	CallStackDepth      int `yaml:"call_stack_depth"`       // Max nested CAL frames
	RevealCharsPerFrame int `yaml:"reveal_chars_per_frame"` // Text typing speed
	MaxCommandsPerFrame int `yaml:"max_commands_per_frame"` // Yield after this many commands; 0 never yields
}

// FlagConstants sizes the persistent flag bank.
type FlagConstants struct {
	Count int `yaml:"count"`
}

// FadeConstants controls screen transitions.
type FadeConstants struct {
	Duration int `yaml:"duration"` // Frames for a full fade in or out
}

// InputConstants tunes the terminal input adapter.
type InputConstants struct {
	HoldFrames int `yaml:"hold_frames"` // Frames a key stays held after its last press
}

// CaretConstants describes one caret type's animation.
type CaretConstants struct {
	Lifetime int    `yaml:"lifetime"`  // Frames until the caret dies
	Frames   int    `yaml:"frames"`    // Number of animation frames
	AnimWait int    `yaml:"anim_wait"` // Frames per animation frame
	Glyphs   string `yaml:"glyphs"`    // One rune per animation frame
	Drift    bool   `yaml:"drift"`     // Whether the caret gets a random velocity
}

// Caret returns the constants for a caret type name.
// Unknown names get a one-frame caret so they never linger.
func (c *EngineConstants) Caret(name string) CaretConstants {
	if cc, ok := c.Carets[name]; ok {
		return cc
	}
	return CaretConstants{Lifetime: 1, Frames: 1, AnimWait: 1, Glyphs: "*"}
}

// Validate checks that the constants describe a runnable engine.
func (c *EngineConstants) Validate() error {
	if c.Flags.Count < MinFlagCount {
		return fmt.Errorf("config: flags.count %d is below the minimum %d", c.Flags.Count, MinFlagCount)
	}
	if c.TextScript.CallStackDepth < 1 {
		return fmt.Errorf("config: text_script.call_stack_depth must be positive, got %d", c.TextScript.CallStackDepth)
	}
	if c.TextScript.RevealCharsPerFrame < 1 {
		return fmt.Errorf("config: text_script.reveal_chars_per_frame must be positive, got %d", c.TextScript.RevealCharsPerFrame)
	}
	if c.TextScript.MaxCommandsPerFrame < 0 {
		return fmt.Errorf("config: text_script.max_commands_per_frame must not be negative, got %d", c.TextScript.MaxCommandsPerFrame)
	}
	for name, cc := range c.Carets {
		if cc.Lifetime < 1 || cc.Frames < 1 || cc.AnimWait < 1 {
			return fmt.Errorf("config: caret %q needs positive lifetime, frames and anim_wait", name)
		}
	}
	return nil
}

// applyDefaults fills zero values left out of a partial YAML file.
func (c *EngineConstants) applyDefaults() {
	d := DefaultEngineConstants()
	if c.TextScript.CallStackDepth == 0 {
		c.TextScript.CallStackDepth = d.TextScript.CallStackDepth
	}
	if c.TextScript.RevealCharsPerFrame == 0 {
		c.TextScript.RevealCharsPerFrame = d.TextScript.RevealCharsPerFrame
	}
	if c.Flags.Count == 0 {
		c.Flags.Count = d.Flags.Count
	}
	if c.Fade.Duration == 0 {
		c.Fade.Duration = d.Fade.Duration
	}
	if c.Input.HoldFrames == 0 {
		c.Input.HoldFrames = d.Input.HoldFrames
	}
	if c.Carets == nil {
		c.Carets = d.Carets
	}
}
