package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List the stage table",
	Long:  `Shows every stage found under <data>/stages with its entry script and events.`,
	RunE:  runStages,
}

func runStages(_ *cobra.Command, _ []string) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	stages := a.stages.Stages()
	if len(stages) == 0 {
		fmt.Println("No stages found.")
		return nil
	}

	fmt.Println("Stages:")
	fmt.Println()
	fmt.Printf("  %-4s  %-20s  %-7s  %-5s  %-6s  %s\n", "ID", "Name", "Size", "Entry", "Events", "Scripts")
	fmt.Printf("  %-4s  %-20s  %-7s  %-5s  %-6s  %s\n", "--", "----", "----", "-----", "------", "-------")
	for _, st := range stages {
		scripts := st.ScriptPath
		if scripts == "" {
			scripts = "-"
		}
		fmt.Printf("  %-4d  %-20s  %-7s  %04d   %-6d  %s\n",
			st.ID, st.Name, fmt.Sprintf("%dx%d", st.Width, st.Height), int(st.Entry), len(st.Events), scripts)
	}

	fmt.Println()
	fmt.Println("Run 'cave play --stage <id>' to play a stage.")
	return nil
}
