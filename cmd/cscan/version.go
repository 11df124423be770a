package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cscan/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cscan version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cscan version %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
