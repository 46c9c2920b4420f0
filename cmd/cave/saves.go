package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cave/internal/platform/tui"
	"github.com/vovakirdan/tui-cave/internal/stage"
)

var (
	flagSavesBrowse bool
	flagSavesDelete int
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "List save slots",
	Long: `Show the save slots in the saves database.

With --browse an interactive browser opens, which also lists script aborts.

Examples:
  cave saves
  cave saves --browse
  cave saves --delete 2`,
	RunE: runSaves,
}

func init() {
	savesCmd.Flags().BoolVar(&flagSavesBrowse, "browse", false, "Open the interactive save browser")
	savesCmd.Flags().IntVar(&flagSavesDelete, "delete", 0, "Delete a save slot")
}

func runSaves(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	// Stage names are optional here
	var stages *stage.Table
	if a, err := loadApp(false); err == nil {
		stages = a.stages
		a.Close()
	}

	if flagSavesDelete > 0 {
		if err := store.DeleteSlot(flagSavesDelete); err != nil {
			return err
		}
		fmt.Printf("Deleted slot %d\n", flagSavesDelete)
		return nil
	}

	if flagSavesBrowse {
		cfg := runtimeConfig()
		model := tui.NewSavesModel(store, stages, cfg.ScreenW, cfg.ScreenH)
		_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	}

	slots, err := store.ListSlots()
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Println("No saved games yet.")
		return nil
	}

	fmt.Printf("  %-4s  %-20s  %-9s  %s\n", "Slot", "Stage", "Position", "Saved")
	fmt.Printf("  %-4s  %-20s  %-9s  %s\n", "----", "-----", "--------", "-----")
	for _, s := range slots {
		name := fmt.Sprintf("stage %d", s.StageID)
		if stages != nil {
			if st, ok := stages.Lookup(s.StageID); ok && st.Name != "" {
				name = st.Name
			}
		}
		fmt.Printf("  %-4d  %-20s  %-9s  %s\n",
			s.Slot, name, fmt.Sprintf("%d,%d", s.PlayerX, s.PlayerY), s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
