package report

import (
	"strings"
	"testing"

	"cscan/internal/analyzer"
	"cscan/internal/errors"
)

func summarize(t *testing.T, path, src string) *analyzer.HeaderSummary {
	t.Helper()
	summary, _ := analyzer.New(nil).AnalyzeSource(path, src)
	return summary
}

func TestWriteTextLayout(t *testing.T) {
	src := "#define MAX 100\n#define SQ(x) ((x)*(x))\nint add(int a, int b);\ntypedef struct { int x; } Point;\n"
	s := summarize(t, "util.h", src)

	var buf strings.Builder
	if err := WriteText(&buf, []*analyzer.HeaderSummary{s}); err != nil {
		t.Fatal(err)
	}

	want := `--- Summary 1 ---
Header Path: util.h
Description: Header file containing 1 functions, 1 types, and 2 macros
Number of Functions: 1
Number of Types: 1
Number of Macros: 2
Functions:
  - add: int(int a, int b)
Macros:
  - MAX: 100 (Parameters: None)
  - SQ: ((x)*(x)) (Parameters: x)
`
	if got := buf.String(); got != want {
		t.Errorf("report mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteTextNumbersBlocks(t *testing.T) {
	a := summarize(t, "a.h", "int f(void);\n")
	b := summarize(t, "b.h", "int g(void);\n")

	var buf strings.Builder
	if err := WriteText(&buf, []*analyzer.HeaderSummary{a, b}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "--- Summary 1 ---") || !strings.Contains(out, "--- Summary 2 ---") {
		t.Errorf("blocks must be numbered in order:\n%s", out)
	}
	if !strings.Contains(out, "\n\n--- Summary 2 ---") {
		t.Errorf("blocks must be separated by a blank line:\n%s", out)
	}
}

func TestEmptySectionsOmitted(t *testing.T) {
	s := summarize(t, "empty.h", "typedef int myint;\n")

	var buf strings.Builder
	if err := WriteText(&buf, []*analyzer.HeaderSummary{s}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if strings.Contains(out, "Functions:\n") {
		t.Errorf("no function list for a file without functions:\n%s", out)
	}
	if strings.Contains(out, "Macros:\n") {
		t.Errorf("no macro list for a file without macros:\n%s", out)
	}
	if !strings.Contains(out, "Number of Functions: 0") {
		t.Errorf("counts always appear:\n%s", out)
	}
}

func TestWriteDiagnostics(t *testing.T) {
	run := &analyzer.Run{
		Diagnostics: []errors.Diagnostic{
			{Code: errors.DeclSyntaxError, Path: "bad.h", Message: "skipped unparseable declaration"},
		},
	}

	var buf strings.Builder
	if err := WriteDiagnostics(&buf, run); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "Diagnostics (1):") {
		t.Errorf("missing section header:\n%s", out)
	}
	if !strings.Contains(out, "[DECL_SYNTAX_ERROR] bad.h") {
		t.Errorf("missing diagnostic line:\n%s", out)
	}
}

func TestWriteDiagnosticsEmpty(t *testing.T) {
	var buf strings.Builder
	if err := WriteDiagnostics(&buf, &analyzer.Run{}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("clean run must print nothing, got %q", buf.String())
	}
}
