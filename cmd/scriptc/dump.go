package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"scriptc/internal/hir"
	"scriptc/internal/js"
	"scriptc/internal/snapshot"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <unit.snap>",
	Short: "Print the IR stored in a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().String("ir", "all", "IR to print (hir|js|all)")
}

var headerColor = color.New(color.FgCyan, color.Bold)

func runDump(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	which, err := cmd.Flags().GetString("ir")
	if err != nil {
		return fmt.Errorf("failed to get ir flag: %w", err)
	}
	switch which {
	case "hir", "js", "all":
	default:
		return fmt.Errorf("unsupported --ir %q (must be hir, js or all)", which)
	}

	unit, err := snapshot.ReadFile(args[0])
	if err != nil {
		return err
	}
	return dumpUnit(cmd.OutOrStdout(), unit, which)
}

func dumpUnit(out io.Writer, unit *snapshot.Unit, which string) error {
	if which != "js" {
		if unit.HIR == nil {
			fmt.Fprintln(out, headerColor.Sprint("== hir: none =="))
		} else {
			fmt.Fprintln(out, headerColor.Sprintf("== hir: %s ==", unit.HIR.Name))
			if err := hir.Dump(out, unit.HIR); err != nil {
				return err
			}
		}
	}
	if which != "hir" {
		if unit.JS == nil {
			fmt.Fprintln(out, headerColor.Sprint("== js: none =="))
		} else {
			fmt.Fprintln(out, headerColor.Sprintf("== js: %s ==", unit.JS.Name))
			if err := js.Dump(out, unit.JS); err != nil {
				return err
			}
		}
	}
	return nil
}
