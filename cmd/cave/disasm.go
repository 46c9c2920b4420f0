package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cave/internal/scene"
	"github.com/vovakirdan/tui-cave/internal/tsc"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <file>",
	Short: "Print the commands of a script file",
	Long: `Decode a blob or assemble a source file and print every script with
command offsets and families. CAL targets are checked against the global
bank of the data directory.

Examples:
  cave disasm data/head.tsb
  cave disasm data/stages/cave.tsc`,
	Args: cobra.ExactArgs(1),
	RunE: runDisasm,
}

func runDisasm(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	global, err := scene.LoadGlobalScripts(flagDataDir)
	if err != nil {
		return err
	}
	table, err := tsc.Load(args[0], data, global)
	if err != nil {
		return err
	}
	return tsc.WriteListing(os.Stdout, table.Scripts())
}
