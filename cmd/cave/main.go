// cave is a terminal Cave Story style engine core built around a
// frame-stepped text script interpreter.
//
// Usage:
//
//	cave stages              - List the stage table
//	cave play                - Play in the terminal (stage menu)
//	cave run --stage <id>    - Run a stage headless for a number of frames
//	cave asm <file.tsc>      - Assemble script source into a blob
//	cave disasm <file>       - Print the commands of a source file or blob
//	cave saves               - List save slots
//	cave aborts              - List recent script aborts
//	cave serve               - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 50)
//	--seed <value>      - Set RNG seed for reproducible runs
//	--db <path>         - Set database path (default: ~/.cave/saves.db, env CAVE_DB)
//	--config <path>     - Engine constants YAML (env CAVE_CONFIG)
//	--data <dir>        - Data directory (default: data, env CAVE_DATA_DIR)
//	--log-level <lvl>   - debug, info, warn or error (env CAVE_LOG_LEVEL)
//	--mono              - Play without colors (env NO_COLOR)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cave/internal/config"
	"github.com/vovakirdan/tui-cave/internal/core"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagDataDir  string
	flagLogLevel string
	flagMono     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cave",
	Short: "Cave - a text script engine in your terminal",
	Long: `Cave runs stages driven by text scripts: dialogue, flags, fades,
transitions and saves, one frame at a time.

Available commands:
  stages   - Show the stage table
  play     - Play in the terminal
  run      - Run a stage headless
  asm      - Assemble script source
  disasm   - Print decoded scripts
  saves    - List or browse save slots
  aborts   - List recent script aborts
  serve    - Start SSH server for remote play

Examples:
  cave stages
  cave play --stage 1
  cave run --stage 1 --frames 200 --press 60:down
  cave asm data/head.tsc -o data/head.tsb
  cave serve --ssh :2222`,
	SilenceUsage:      true,
	PersistentPreRunE: applyEnv,
}

func init() {
	defaults := core.DefaultConfig()

	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", defaults.TickRate, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.cave/saves.db", "Path to saves database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to engine constants YAML")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data", "data", "Data directory with head scripts and stages/")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagMono, "mono", false, "Render without colors")

	rootCmd.AddCommand(stagesCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(asmCmd)
	rootCmd.AddCommand(disasmCmd)
	rootCmd.AddCommand(savesCmd)
	rootCmd.AddCommand(abortsCmd)
	rootCmd.AddCommand(serveCmd)
}

// applyEnv fills global flags the user did not set from CAVE_* variables.
func applyEnv(cmd *cobra.Command, _ []string) error {
	env, err := config.ParseEnv()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("data") {
		flagDataDir = env.DataDir
	}
	if !flags.Changed("log-level") {
		flagLogLevel = env.LogLevel
	}
	if !flags.Changed("config") && env.ConfigPath != "" {
		flagConfig = env.ConfigPath
	}
	if !flags.Changed("db") {
		flagDBPath = env.DBPath
	}
	if !flags.Changed("mono") && env.NoColor != "" {
		flagMono = true
	}
	return nil
}
