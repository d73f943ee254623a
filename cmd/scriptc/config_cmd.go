package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective scriptc.toml settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := configFrom(cmd)
		out := cmd.OutOrStdout()
		if cfg.Path != "" {
			fmt.Fprintf(out, "# loaded from %s\n", cfg.Path)
		} else {
			fmt.Fprintln(out, "# defaults (no scriptc.toml found)")
		}
		return toml.NewEncoder(out).Encode(cfg)
	},
}
