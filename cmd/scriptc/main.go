package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"scriptc/internal/config"
	"scriptc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "scriptc",
	Short: "Optimizer passes for compiled script units",
	Long: `scriptc loads compilation-unit snapshots, collapses host-object wrapper
types onto the canonical wrapper and removes dead top-level functions.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

// traceCleanup is installed by prepare and run once the command returns.
var traceCleanup = func(bool) {}

type configKey struct{}

func main() {
	rootCmd.Version = version.Details()

	rootCmd.AddCommand(optCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("config", "", "path to scriptc.toml (default: nearest one above the working directory)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "ring", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 0, "ring buffer capacity (0=default)")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0=off)")

	err := rootCmd.ExecuteContext(context.Background())
	traceCleanup(err != nil)
	if err != nil {
		os.Exit(1)
	}
}

// prepare resolves colors, configuration and tracing for every subcommand.
func prepare(cmd *cobra.Command, _ []string) error {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (must be auto, on or off)", colorFlag)
	}

	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Resolve(configPath, ".")
	if err != nil {
		return err
	}
	cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))

	cleanup, err := setupTracing(cmd, cfg.Trace)
	if err != nil {
		return err
	}
	traceCleanup = cleanup
	return nil
}

// configFrom returns the configuration resolved by prepare.
func configFrom(cmd *cobra.Command) config.Config {
	if ctx := cmd.Context(); ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(config.Config); ok {
			return cfg
		}
	}
	return config.Default()
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}

func timingsEnabled(cmd *cobra.Command) bool {
	on, err := cmd.Root().PersistentFlags().GetBool("timings")
	return err == nil && on
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
