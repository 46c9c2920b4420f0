package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagAbortsLimit   int
	flagAbortsSummary bool
	flagAbortsClear   bool
)

var abortsCmd = &cobra.Command{
	Use:   "aborts",
	Short: "List recent script aborts",
	Long: `Show the scripts that were aborted at runtime: bad flag numbers, jumps
out of range, call stack overflows and missing CAL targets.

Examples:
  cave aborts
  cave aborts --limit 50
  cave aborts --summary
  cave aborts --clear`,
	RunE: runAborts,
}

func init() {
	abortsCmd.Flags().IntVar(&flagAbortsLimit, "limit", 20, "Number of entries to show")
	abortsCmd.Flags().BoolVar(&flagAbortsSummary, "summary", false, "Group aborts by script")
	abortsCmd.Flags().BoolVar(&flagAbortsClear, "clear", false, "Delete all recorded aborts")
}

func runAborts(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if flagAbortsClear {
		return store.ClearAborts()
	}

	if flagAbortsSummary {
		sums, err := store.AbortSummaries()
		if err != nil {
			return err
		}
		if len(sums) == 0 {
			fmt.Println("No script aborts recorded.")
			return nil
		}
		fmt.Printf("  %-6s  %-6s  %s\n", "Script", "Count", "Last seen")
		fmt.Printf("  %-6s  %-6s  %s\n", "------", "-----", "---------")
		for _, s := range sums {
			fmt.Printf("  %04d    %-6d  %s\n", s.ScriptID, s.Count, s.LastSeen.Format("2006-01-02 15:04"))
		}
		return nil
	}

	entries, err := store.RecentAborts(flagAbortsLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No script aborts recorded.")
		return nil
	}

	fmt.Printf("  %-16s  %-6s  %-6s  %-16s  %s\n", "When", "Script", "Offset", "Command", "Reason")
	fmt.Printf("  %-16s  %-6s  %-6s  %-16s  %s\n", "----", "------", "------", "-------", "------")
	for _, e := range entries {
		fmt.Printf("  %-16s  %04d    %-6d  %-16s  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.ScriptID, e.Offset, e.Command, e.Reason)
	}
	return nil
}
