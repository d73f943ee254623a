package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scriptc/internal/snapshot"
)

var checkCmd = &cobra.Command{
	Use:   "check <unit.snap>...",
	Short: "Decode and validate snapshots without running any pass",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		start := time.Now()
		unit, err := snapshot.ReadFile(path)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", failColor.Sprint("✗"), err)
			continue
		}
		if quiet(cmd) {
			continue
		}
		fmt.Fprintf(out, "%s %s: unit %s", okColor.Sprint("✓"), path, unit.Name)
		if unit.HIR != nil {
			fmt.Fprintf(out, ", %d classes", len(unit.HIR.Classes))
		}
		if unit.JS != nil {
			fmt.Fprintf(out, ", %d statements, %d names", len(unit.JS.Stmts), len(unit.JS.Names()))
		}
		if timingsEnabled(cmd) {
			fmt.Fprintf(out, " (%.1f ms)", toMillis(time.Since(start)))
		}
		fmt.Fprintln(out)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d snapshots are invalid", failed, len(args))
	}
	return nil
}
