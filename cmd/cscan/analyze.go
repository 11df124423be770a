package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cscan/internal/analyzer"
	"cscan/internal/config"
	"cscan/internal/export"
	"cscan/internal/manifest"
	"cscan/internal/output"
	"cscan/internal/paths"
	"cscan/internal/report"
	"cscan/internal/store"
)

var (
	analyzeIncludeDirs []string
	analyzeFormat      string
	analyzeRecursive   bool
	analyzeNoFollow    bool
	analyzeJobs        int
	analyzeNoCache     bool
	analyzeSet         string
	analyzeShowDiags   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze C files and print their public surface",
	Long: `Analyze one .c/.h file or a directory of them and print a summary of
declared functions, types and macros per file.

Non-system includes that resolve against the include search paths are
followed and summarized once each. Declarations that cannot be parsed are
skipped with a diagnostic; they never fail the run.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringArrayVarP(&analyzeIncludeDirs, "include-dir", "I", nil,
		"Additional include search directory (repeatable)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "human",
		"Output format (human, json)")
	analyzeCmd.Flags().BoolVarP(&analyzeRecursive, "recursive", "r", false,
		"Recurse into subdirectories when the path is a directory")
	analyzeCmd.Flags().BoolVar(&analyzeNoFollow, "no-follow-includes", false,
		"Do not analyze headers reached via #include")
	analyzeCmd.Flags().IntVar(&analyzeJobs, "jobs", 0,
		"Number of files analyzed in parallel (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false,
		"Bypass the summary cache")
	analyzeCmd.Flags().StringVar(&analyzeSet, "set", "",
		"Analyze a named header set from HEADERS.toml instead of a path")
	analyzeCmd.Flags().BoolVar(&analyzeShowDiags, "diagnostics", true,
		"Print collected diagnostics after the report")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	start := time.Now()
	cfg := loadConfig()
	logger := newLogger(cfg)

	format, ok := output.ParseFormat(analyzeFormat)
	if !ok || format == output.FormatYAML {
		fmt.Fprintf(os.Stderr, "Error: unsupported format %q (use human or json)\n", analyzeFormat)
		os.Exit(1)
	}

	roots, includeDirs := resolveInputs(cfg, args)
	if len(roots) == 0 {
		fmt.Fprintln(os.Stderr, "Error: nothing to analyze")
		os.Exit(1)
	}

	eng := analyzer.New(includeDirs)
	var st *store.Store
	if !analyzeNoCache && cfg.Cache.Enabled {
		var err error
		st, err = store.Open(config.ConfigDir, logger)
		if err != nil {
			logger.Warn("Summary cache unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer func() { _ = st.Close() }()
			eng.WithCache(st)
		}
	}

	workers := analyzeJobs
	if workers == 0 {
		workers = cfg.Analysis.Workers
	}
	run := eng.AnalyzeBatch(context.Background(), roots, analyzer.Options{
		FollowIncludes: !analyzeNoFollow && cfg.Analysis.FollowIncludes,
		Workers:        workers,
	})
	if st != nil {
		if err := st.RecordRun(run); err != nil {
			logger.Warn("Failed to record run", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	switch format {
	case output.FormatJSON:
		if err := export.Write(os.Stdout, run, output.FormatJSON); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
			os.Exit(1)
		}
	default:
		if err := report.WriteText(os.Stdout, run.Summaries); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
		if analyzeShowDiags {
			_ = report.WriteDiagnostics(os.Stdout, run)
		}
	}

	logger.Debug("Analysis completed", map[string]interface{}{
		"runId":    run.ID,
		"files":    len(run.Summaries),
		"duration": time.Since(start).Milliseconds(),
	})

	if len(run.Failed) > 0 {
		for _, path := range run.Failed {
			fmt.Fprintf(os.Stderr, "Error: %s could not be read\n", path)
		}
		os.Exit(1)
	}
}

// resolveInputs turns CLI arguments, config and the optional manifest into
// the list of root files and the include search path.
func resolveInputs(cfg *config.Config, args []string) ([]string, []string) {
	includeDirs := append([]string{}, analyzeIncludeDirs...)
	includeDirs = append(includeDirs, cfg.IncludePaths...)

	if analyzeSet != "" {
		path := manifest.Find(".")
		if path == "" {
			fmt.Fprintf(os.Stderr, "Error: --set given but no %s found\n", manifest.ManifestFile)
			os.Exit(1)
		}
		m, err := manifest.Parse(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		set := m.Set(analyzeSet)
		if set == nil {
			fmt.Fprintf(os.Stderr, "Error: no header set %q in %s\n", analyzeSet, path)
			os.Exit(1)
		}
		for _, dir := range set.IncludeDirs {
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(filepath.Dir(path), dir)
			}
			includeDirs = append(includeDirs, dir)
		}
		var roots []string
		for _, p := range set.ResolvePaths(path) {
			roots = append(roots, paths.Collect(p, true, cfg.Analysis.MaxFileSizeBytes)...)
		}
		return roots, includeDirs
	}

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: a path or --set is required")
		os.Exit(1)
	}
	return paths.Collect(args[0], analyzeRecursive, cfg.Analysis.MaxFileSizeBytes), includeDirs
}
