package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"scriptc/internal/config"
	"scriptc/internal/observ"
	"scriptc/internal/pipeline"
	"scriptc/internal/prune"
)

var optCmd = &cobra.Command{
	Use:   "opt [flags] <unit.snap>...",
	Short: "Canonicalize wrapper types and prune dead functions",
	Long: `Run the optimizer over one or more snapshots. Results replace the inputs
unless --out-dir is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOpt,
}

func init() {
	addOptFlags(optCmd)
}

func addOptFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("out-dir", "o", "", "write optimized snapshots into this directory")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().Bool("dry-run", false, "run the passes without writing results")
	cmd.Flags().String("strategy", "", "override [prune].strategy (census|reachability)")
	cmd.Flags().Int("rounds", 0, "override [prune].max_rounds")
	cmd.Flags().String("wrapper-root", "", "override [wrapper].root")
	cmd.Flags().Bool("no-canonicalize", false, "skip wrapper type canonicalization")
	cmd.Flags().Bool("no-prune", false, "skip dead function pruning")
}

func runOpt(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	cfg, err := optConfig(cmd)
	if err != nil {
		return err
	}
	outDir, err := cmd.Flags().GetString("out-dir")
	if err != nil {
		return fmt.Errorf("failed to get out-dir flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}

	results, err := pipeline.RunFiles(cmd.Context(), pipeline.BatchRequest{
		Files:   args,
		OutDir:  outDir,
		Config:  cfg,
		Jobs:    jobs,
		Timings: timingsEnabled(cmd),
		DryRun:  dryRun,
	})
	if err != nil {
		return err
	}

	failed := printOptResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, quiet(cmd), timingsEnabled(cmd))
	if failed > 0 {
		return fmt.Errorf("%d of %d units failed", failed, len(results))
	}
	return nil
}

// optConfig applies command-line overrides to the resolved configuration.
func optConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := configFrom(cmd)
	flags := cmd.Flags()

	if flags.Changed("strategy") {
		s, err := flags.GetString("strategy")
		if err != nil {
			return cfg, fmt.Errorf("failed to get strategy flag: %w", err)
		}
		if _, err := prune.ParseStrategy(s); err != nil {
			return cfg, err
		}
		cfg.Prune.Strategy = s
	}
	if flags.Changed("rounds") {
		n, err := flags.GetInt("rounds")
		if err != nil {
			return cfg, fmt.Errorf("failed to get rounds flag: %w", err)
		}
		cfg.Prune.MaxRounds = n
	}
	if flags.Changed("wrapper-root") {
		root, err := flags.GetString("wrapper-root")
		if err != nil {
			return cfg, fmt.Errorf("failed to get wrapper-root flag: %w", err)
		}
		cfg.Wrapper.Root = root
	}
	if off, _ := flags.GetBool("no-canonicalize"); off {
		cfg.Canonicalize.Enabled = false
	}
	if off, _ := flags.GetBool("no-prune"); off {
		cfg.Prune.Enabled = false
	}
	return cfg, cfg.Validate()
}

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
)

// printOptResults reports one line per unit and returns the failure count.
func printOptResults(out, errOut io.Writer, results []pipeline.FileResult, quiet, timings bool) int {
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(errOut, "%s %v\n", failColor.Sprint("✗"), res.Err)
			continue
		}
		if quiet {
			continue
		}
		sum := res.Summary
		fmt.Fprintf(out, "%s %s: %d wrapper sites, %d declarations retyped, %d functions removed",
			okColor.Sprint("✓"), res.Path, sum.Canonical.Replaced, sum.Canonical.Retyped, sum.Removed())
		if rounds := len(sum.Prune); rounds > 1 {
			fmt.Fprintf(out, " in %d rounds", rounds)
		}
		fmt.Fprintln(out)
		if timings {
			res.Timing.Write(out, "  ")
		}
	}
	if timings && !quiet {
		printBatchTimings(out, results)
	}
	return failed
}

// printBatchTimings sums the per-unit timings of a multi-file run.
func printBatchTimings(out io.Writer, results []pipeline.FileResult) {
	reports := make([]observ.Report, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			reports = append(reports, res.Timing)
		}
	}
	if len(reports) < 2 {
		return
	}
	fmt.Fprintf(out, "all %d units:\n", len(reports))
	observ.Merge(reports...).Write(out, "  ")
}
