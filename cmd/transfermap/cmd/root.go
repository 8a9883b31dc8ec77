package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "transfermap",
	Short: "transfermap crawls a transfer equivalency workflow into sqlite and per-school JSON snapshots.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath, "config", "c", "transfermap.json5",
		"path to the crawler configuration file",
	)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
