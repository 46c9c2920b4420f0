package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cave/internal/scene"
	"github.com/vovakirdan/tui-cave/internal/tsc"
)

var (
	flagAsmOutput string
	flagAsmGlobal bool
)

var asmCmd = &cobra.Command{
	Use:   "asm <file.tsc>",
	Short: "Assemble script source into a blob",
	Long: `Assemble text script source into the binary blob format.

Stage scripts may call scripts of the global bank, which is read from the
data directory. Pass --global when assembling the global bank itself.

Examples:
  cave asm data/head.tsc --global -o data/head.tsb
  cave asm data/stages/cave.tsc`,
	Args: cobra.ExactArgs(1),
	RunE: runAsm,
}

func init() {
	asmCmd.Flags().StringVarP(&flagAsmOutput, "output", "o", "", "Output path (default: input with .tsb extension)")
	asmCmd.Flags().BoolVar(&flagAsmGlobal, "global", false, "Assemble a global bank (CAL targets must resolve in the file)")
}

func runAsm(_ *cobra.Command, args []string) error {
	in := args[0]
	source, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	scripts, err := tsc.Assemble(in, source)
	if err != nil {
		return err
	}

	var extern tsc.Resolver
	if !flagAsmGlobal {
		global, err := scene.LoadGlobalScripts(flagDataDir)
		if err != nil {
			return err
		}
		extern = global
	}
	table, err := tsc.NewTable(scripts, extern)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	blob, err := tsc.Encode(table.Scripts())
	if err != nil {
		return err
	}

	out := flagAsmOutput
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".tsb"
	}
	if err := os.WriteFile(out, blob, 0o644); err != nil {
		return err
	}

	fmt.Printf("%s: %d scripts, %d bytes -> %s\n", in, table.Len(), len(blob), out)
	return nil
}
