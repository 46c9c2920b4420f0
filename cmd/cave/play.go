package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cave/internal/platform/tui"
	"github.com/vovakirdan/tui-cave/internal/scene"
)

var (
	flagPlayStage int
	flagPlaySlot  int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Long: `Start the engine in the terminal.

Without --stage or --slot a stage menu is shown first.

Controls:
  Arrows/WASD  - Walk
  Down         - Interact with the event under the player
  Z/Space      - Jump / advance text
  X/Enter      - Fire / advance text
  F1           - Toggle the interpreter status line
  Ctrl+S       - Save a screenshot to ~/.cave/screenshots
  Esc          - Back to the menu
  Q/Ctrl+C     - Quit

Logs go to <data>/cave.log while playing.

Examples:
  cave play
  cave play --stage 2
  cave play --slot 1
  cave play --fps 30 --seed 42`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagPlayStage, "stage", 0, "Stage to start in (skips the menu)")
	playCmd.Flags().IntVar(&flagPlaySlot, "slot", 0, "Save slot to resume (skips the menu)")
}

func runPlay(_ *cobra.Command, _ []string) error {
	a, err := loadApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	// Continue without storage - the game still works, <SVP is logged instead
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	engine := tui.Engine{Deps: a.deps(store), Mono: flagMono}
	if store != nil {
		engine.Saves = store
	}

	var start *scene.LoadingScene
	if flagPlayStage != 0 || flagPlaySlot != 0 {
		start = &scene.LoadingScene{Stage: flagPlayStage, Slot: flagPlaySlot}
	}

	if err := tui.Run(engine, runtimeConfig(), start); err != nil {
		return fmt.Errorf("error running game: %w", err)
	}
	return nil
}
