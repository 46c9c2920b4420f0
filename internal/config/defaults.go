package config

import (
	_ "embed"
)

//go:embed defaults/engine.yaml
var defaultEngineYAML []byte

// DefaultEngineConstants returns the hard-coded engine constants.
// Used when no YAML, not even the embedded one, can be parsed.
func DefaultEngineConstants() EngineConstants {
	return EngineConstants{
		TextScript: TextScriptConstants{
			CallStackDepth:      16,
			RevealCharsPerFrame: 1,
			MaxCommandsPerFrame: 0,
		},
		Flags: FlagConstants{
			Count: MinFlagCount,
		},
		Fade: FadeConstants{
			Duration: 36,
		},
		Input: InputConstants{
			HoldFrames: 6,
		},
		Carets: map[string]CaretConstants{
			"bubble":                       {Lifetime: 20, Frames: 4, AnimWait: 5, Glyphs: "∘oO°", Drift: true},
			"projectile_dissipation":       {Lifetime: 16, Frames: 4, AnimWait: 4, Glyphs: "*+x."},
			"shoot":                        {Lifetime: 12, Frames: 4, AnimWait: 3, Glyphs: "✶*+."},
			"snake_afterimage":             {Lifetime: 24, Frames: 3, AnimWait: 8, Glyphs: "≈~-"},
			"zzz":                          {Lifetime: 100, Frames: 5, AnimWait: 20, Glyphs: "zZzZz", Drift: true},
			"snake_afterimage2":            {Lifetime: 24, Frames: 3, AnimWait: 8, Glyphs: "≈~-"},
			"exhaust":                      {Lifetime: 12, Frames: 4, AnimWait: 3, Glyphs: "░▒▓·"},
			"drowned_quote":                {Lifetime: 60, Frames: 1, AnimWait: 60, Glyphs: "Ω"},
			"question_mark":                {Lifetime: 40, Frames: 1, AnimWait: 40, Glyphs: "?"},
			"level_up":                     {Lifetime: 80, Frames: 2, AnimWait: 2, Glyphs: "▲△"},
			"hurt_particles":               {Lifetime: 32, Frames: 4, AnimWait: 8, Glyphs: "✦✧·.", Drift: true},
			"explosion":                    {Lifetime: 16, Frames: 4, AnimWait: 4, Glyphs: "✺✹✸·"},
			"little_particles":             {Lifetime: 20, Frames: 4, AnimWait: 5, Glyphs: "•·..", Drift: true},
			"unknown":                      {Lifetime: 8, Frames: 1, AnimWait: 8, Glyphs: "?"},
			"small_projectile_dissipation": {Lifetime: 12, Frames: 3, AnimWait: 4, Glyphs: "+x."},
			"empty":                        {Lifetime: 1, Frames: 1, AnimWait: 1, Glyphs: " "},
			"push_jump_key":                {Lifetime: 120, Frames: 2, AnimWait: 10, Glyphs: "Zz"},
		},
	}
}
