// Package report renders analysis runs for the user. It performs formatting
// only; all analysis happens upstream.
package report

import (
	"fmt"
	"io"
	"strings"

	"cscan/internal/analyzer"
	"cscan/internal/preproc"
)

// WriteText renders summaries as numbered Summary blocks. Types are counted
// but not itemized; that asymmetry is the documented report format, not an
// oversight.
func WriteText(w io.Writer, summaries []*analyzer.HeaderSummary) error {
	for i, s := range summaries {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeSummary(w, i+1, s); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(w io.Writer, n int, s *analyzer.HeaderSummary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Summary %d ---\n", n)
	fmt.Fprintf(&b, "Header Path: %s\n", s.Path)
	fmt.Fprintf(&b, "Description: %s\n", s.Description())
	fmt.Fprintf(&b, "Number of Functions: %d\n", s.FunctionCount())
	fmt.Fprintf(&b, "Number of Types: %d\n", s.TypeCount())
	fmt.Fprintf(&b, "Number of Macros: %d\n", s.MacroCount())

	if s.FunctionCount() > 0 {
		b.WriteString("Functions:\n")
		for _, fn := range s.Functions {
			fmt.Fprintf(&b, "  - %s: %s\n", fn.Name, fn.Signature())
		}
	}
	if s.MacroCount() > 0 {
		b.WriteString("Macros:\n")
		for _, m := range s.Macros {
			fmt.Fprintf(&b, "  - %s: %s (Parameters: %s)\n", m.Name, m.Body, macroParams(m))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func macroParams(m preproc.MacroDecl) string {
	if len(m.Params) == 0 {
		return "None"
	}
	return strings.Join(m.Params, ", ")
}

// WriteDiagnostics appends a diagnostics section when the run collected
// any. Diagnostics are informational; they never affect the exit code.
func WriteDiagnostics(w io.Writer, run *analyzer.Run) error {
	if len(run.Diagnostics) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\nDiagnostics (%d):\n", len(run.Diagnostics)); err != nil {
		return err
	}
	for _, d := range run.Diagnostics {
		if _, err := fmt.Fprintf(w, "  - %s\n", d); err != nil {
			return err
		}
	}
	return nil
}
