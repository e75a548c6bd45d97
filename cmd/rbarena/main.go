// Package main provides the entry point for the rbarena CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/rbarena/cmd/rbarena/commands"
	"github.com/Sumatoshi-tech/rbarena/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	globals := &commands.Globals{}

	rootCmd := &cobra.Command{
		Use:   "rbarena",
		Short: "rbarena - arena-backed red-black tree driver",
		Long: `rbarena runs scripted and randomized operations against an arena-backed
red-black tree and reports traversals, invariant checks and arena usage.

Commands:
  run       Run a script (the built-in demo when no file is given)
  validate  Check a script file against the script schema
  soak      Drive a tree with random inserts and removes`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&globals.ConfigPath, "config", "", "config file (default: rbarena.yaml search)")
	rootCmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globals.Quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(commands.NewRunCommand(globals))
	rootCmd.AddCommand(commands.NewValidateCommand(globals))
	rootCmd.AddCommand(commands.NewSoakCommand(globals))
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rbarena %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
