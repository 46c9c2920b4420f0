package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/scene"
	"github.com/vovakirdan/tui-cave/internal/storage"
)

var (
	flagRunStage   int
	flagRunSlot    int
	flagRunFrames  int
	flagRunPress   []string
	flagRunDump    bool
	flagRunScreen  bool
	flagRunPersist bool
	flagRunWidth   int
	flagRunHeight  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a stage headless",
	Long: `Simulate a stage for a fixed number of frames without a terminal UI
and print the final screen.

Key presses are given as frame:keys, where frame is a frame number or an
inclusive range first-last and keys is a "+"-joined list of key names
(left, right, up, down, map, jump, fire, weapon_next, weapon_prev).
A key is held only on the frames listed.

With --persist, <SVP writes to the saves database and aborts are recorded.

Examples:
  cave run --stage 1 --frames 120
  cave run --stage 1 --press 10-12:right --press 20:down --press 40:jump
  cave run --slot 1 --frames 30 --dump`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagRunStage, "stage", 0, "Stage to start in (0 = first stage)")
	runCmd.Flags().IntVar(&flagRunSlot, "slot", 0, "Save slot to resume")
	runCmd.Flags().IntVar(&flagRunFrames, "frames", 300, "Number of frames to simulate")
	runCmd.Flags().StringSliceVar(&flagRunPress, "press", nil, "Key presses as frame:keys (repeatable)")
	runCmd.Flags().BoolVar(&flagRunDump, "dump", false, "Dump the final game state")
	runCmd.Flags().BoolVar(&flagRunScreen, "screen", true, "Print the final screen")
	runCmd.Flags().BoolVar(&flagRunPersist, "persist", false, "Use the saves database")
	runCmd.Flags().IntVar(&flagRunWidth, "width", 80, "Screen width")
	runCmd.Flags().IntVar(&flagRunHeight, "height", 24, "Screen height")
}

// parsePresses turns frame:keys specs into the keys held on each frame.
func parsePresses(specs []string) (map[int]core.Key, error) {
	presses := make(map[int]core.Key)
	for _, press := range specs {
		when, names, ok := strings.Cut(press, ":")
		if !ok {
			return nil, fmt.Errorf("press %q: expected frame:keys", press)
		}

		first, last := when, when
		if a, b, isRange := strings.Cut(when, "-"); isRange {
			first, last = a, b
		}
		from, err := strconv.Atoi(first)
		if err != nil || from < 0 {
			return nil, fmt.Errorf("press %q: bad frame %q", press, first)
		}
		to, err := strconv.Atoi(last)
		if err != nil || to < from {
			return nil, fmt.Errorf("press %q: bad frame %q", press, last)
		}

		var keys core.Key
		for _, name := range strings.Split(names, "+") {
			k, ok := core.ParseKey(name)
			if !ok {
				return nil, fmt.Errorf("press %q: unknown key %q", press, name)
			}
			keys |= k
		}
		for f := from; f <= to; f++ {
			presses[f] |= keys
		}
	}
	return presses, nil
}

func runRun(_ *cobra.Command, _ []string) error {
	presses, err := parsePresses(flagRunPress)
	if err != nil {
		return err
	}

	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	var store *storage.Store
	if flagRunPersist {
		if store, err = openStore(); err != nil {
			return err
		}
		defer store.Close()
	}

	cfg := runtimeConfig()
	cfg.ScreenW, cfg.ScreenH = flagRunWidth, flagRunHeight
	host, err := scene.NewHost(a.deps(store), cfg, &scene.LoadingScene{Stage: flagRunStage, Slot: flagRunSlot})
	if err != nil {
		return err
	}

	for f := 0; f < flagRunFrames; f++ {
		if err := host.Frame(presses[f]); err != nil {
			return fmt.Errorf("frame %d: %w", f, err)
		}
	}

	if flagRunScreen {
		scr := core.NewScreen(cfg.ScreenW, cfg.ScreenH)
		host.Draw(scr)
		fmt.Println(scr.String())
	}

	st := host.State
	fmt.Printf("frames %d  stage %d  player %d,%d  vm %s  flags %v\n",
		st.Frame, st.StageID, st.Player.Pos.X, st.Player.Pos.Y, host.VM.Status(), st.Flags.SetIndices())
	if abort, ok := host.VM.LastAbort(); ok {
		fmt.Printf("last abort: %s\n", abort)
	}

	if flagRunDump {
		fmt.Print(dumpHost(host))
	}
	return nil
}
