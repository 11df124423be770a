// Package export writes machine-readable analysis results to a file or
// stream, optionally gzip-compressed.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"cscan/internal/analyzer"
	"cscan/internal/output"
)

// WriteFile exports the run to path. The format defaults from the file
// extension when unset; a ".gz" suffix enables compression.
func WriteFile(run *analyzer.Run, path string, format output.Format) error {
	compressed := strings.HasSuffix(path, ".gz")
	if format == "" {
		format = formatFromPath(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var w io.Writer = f
	if compressed {
		zw := gzip.NewWriter(f)
		defer func() { _ = zw.Close() }()
		w = zw
	}
	return Write(w, run, format)
}

// Write exports the run to w in the given format.
func Write(w io.Writer, run *analyzer.Run, format output.Format) error {
	switch format {
	case output.FormatJSON, "":
		data, err := output.DeterministicEncodeIndented(run, "  ")
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		_, err = io.WriteString(w, "\n")
		return err
	case output.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(exportView(run)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func formatFromPath(path string) output.Format {
	trimmed := strings.TrimSuffix(path, ".gz")
	if strings.HasSuffix(trimmed, ".yaml") || strings.HasSuffix(trimmed, ".yml") {
		return output.FormatYAML
	}
	return output.FormatJSON
}

// exportView flattens the run for YAML output, where summaries carry their
// derived counts explicitly since YAML consumers cannot call methods.
func exportView(run *analyzer.Run) map[string]interface{} {
	summaries := make([]map[string]interface{}, 0, len(run.Summaries))
	for _, s := range run.Summaries {
		entry := map[string]interface{}{
			"path":        s.Path,
			"description": s.Description(),
			"functions":   s.FunctionCount(),
			"types":       s.TypeCount(),
			"macros":      s.MacroCount(),
		}
		summaries = append(summaries, entry)
	}
	view := map[string]interface{}{
		"id":        run.ID,
		"startedAt": run.StartedAt,
		"summaries": summaries,
	}
	if len(run.Diagnostics) > 0 {
		msgs := make([]string, 0, len(run.Diagnostics))
		for _, d := range run.Diagnostics {
			msgs = append(msgs, d.String())
		}
		view["diagnostics"] = msgs
	}
	if len(run.Failed) > 0 {
		view["failed"] = run.Failed
	}
	return view
}
