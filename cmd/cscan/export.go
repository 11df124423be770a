package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cscan/internal/analyzer"
	"cscan/internal/export"
	"cscan/internal/output"
	"cscan/internal/paths"
)

var (
	exportIncludeDirs []string
	exportFormat      string
	exportOut         string
	exportRecursive   bool
	exportNoFollow    bool
	exportJobs        int
)

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export analysis results in machine-readable form",
	Long: `Analyze the given path and write the full run, including diagnostics
and the resolved import graph, as JSON or YAML. An --out path ending in .gz
is gzip-compressed.`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringArrayVarP(&exportIncludeDirs, "include-dir", "I", nil,
		"Additional include search directory (repeatable)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "",
		"Export format (json, yaml; default inferred from --out)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "",
		"Output file (default stdout)")
	exportCmd.Flags().BoolVarP(&exportRecursive, "recursive", "r", false,
		"Recurse into subdirectories when the path is a directory")
	exportCmd.Flags().BoolVar(&exportNoFollow, "no-follow-includes", false,
		"Do not analyze headers reached via #include")
	exportCmd.Flags().IntVar(&exportJobs, "jobs", 0,
		"Number of files analyzed in parallel (default from config)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	logger := newLogger(cfg)

	var format output.Format
	if exportFormat != "" {
		f, ok := output.ParseFormat(exportFormat)
		if !ok || f == output.FormatHuman {
			fmt.Fprintf(os.Stderr, "Error: unsupported export format %q (use json or yaml)\n", exportFormat)
			os.Exit(1)
		}
		format = f
	}

	includeDirs := append([]string{}, exportIncludeDirs...)
	includeDirs = append(includeDirs, cfg.IncludePaths...)
	roots := paths.Collect(args[0], exportRecursive, cfg.Analysis.MaxFileSizeBytes)

	workers := exportJobs
	if workers == 0 {
		workers = cfg.Analysis.Workers
	}
	eng := analyzer.New(includeDirs)
	run := eng.AnalyzeBatch(context.Background(), roots, analyzer.Options{
		FollowIncludes: !exportNoFollow && cfg.Analysis.FollowIncludes,
		Workers:        workers,
	})

	var err error
	if exportOut == "" {
		if format == "" {
			format = output.FormatJSON
		}
		err = export.Write(os.Stdout, run, format)
	} else {
		err = export.WriteFile(run, exportOut, format)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting results: %v\n", err)
		os.Exit(1)
	}

	logger.Debug("Export completed", map[string]interface{}{
		"runId": run.ID,
		"files": len(run.Summaries),
		"out":   exportOut,
	})

	if len(run.Failed) > 0 {
		for _, path := range run.Failed {
			fmt.Fprintf(os.Stderr, "Error: %s could not be read\n", path)
		}
		os.Exit(1)
	}
}
