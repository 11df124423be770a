package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cscan/internal/config"
	"cscan/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the summary cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache location and entry counts",
	Run: func(cmd *cobra.Command, args []string) {
		st := mustOpenStore()
		defer func() { _ = st.Close() }()

		status, err := st.Status()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading cache: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cache: %s\n", status.Path)
		fmt.Printf("Summaries: %d\n", status.Summaries)
		fmt.Printf("Runs: %d\n", status.Runs)
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached summaries and run records",
	Run: func(cmd *cobra.Command, args []string) {
		st := mustOpenStore()
		defer func() { _ = st.Close() }()

		if err := st.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing cache: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Cache cleared")
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func mustOpenStore() *store.Store {
	cfg := loadConfig()
	st, err := store.Open(config.ConfigDir, newLogger(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening cache: %v\n", err)
		os.Exit(1)
	}
	return st
}
