package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "polylensd",
		Short: "PolyLens cross-chain packet latency monitor",
	}

	rootCmd.PersistentFlags().String(flagHome, defaultHome(), "monitor home directory")

	InitRootCmd(rootCmd) // add subcommands like `start` and `scan`

	return rootCmd
}
