package paths

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestIsSourceFile(t *testing.T) {
	cases := map[string]bool{
		"util.h":       true,
		"main.c":       true,
		"UPPER.H":      true,
		"readme.md":    false,
		"program.cpp":  false,
		"noextension":  false,
		"dir/nested.h": true,
	}
	for path, want := range cases {
		if got := IsSourceFile(path); got != want {
			t.Errorf("IsSourceFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCollectFlat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.h"), "\n")
	writeFile(t, filepath.Join(dir, "b.c"), "\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "\n")
	writeFile(t, filepath.Join(dir, "sub", "nested.h"), "\n")

	got := Collect(dir, false, 0)
	sort.Strings(got)
	want := []string{filepath.Join(dir, "a.h"), filepath.Join(dir, "b.c")}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Collect = %v, want %v", got, want)
	}
}

func TestCollectRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.h"), "\n")
	writeFile(t, filepath.Join(dir, "sub", "nested.h"), "\n")
	writeFile(t, filepath.Join(dir, ".cache", "hidden.h"), "\n")

	got := Collect(dir, true, 0)
	sort.Strings(got)
	if len(got) != 2 {
		t.Fatalf("Collect = %v, want a.h and sub/nested.h", got)
	}
	if got[1] != filepath.Join(dir, "sub", "nested.h") {
		t.Errorf("nested file missing: %v", got)
	}
}

func TestCollectSizeLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "small.h"), "int f(void);\n")
	writeFile(t, filepath.Join(dir, "big.h"), string(make([]byte, 4096)))

	got := Collect(dir, false, 1024)
	if len(got) != 1 || filepath.Base(got[0]) != "small.h" {
		t.Errorf("Collect = %v, want just small.h", got)
	}
}

func TestCollectPassesThroughFilesAndMissing(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "one.h")
	writeFile(t, file, "\n")

	if got := Collect(file, false, 0); len(got) != 1 || got[0] != file {
		t.Errorf("plain file: got %v", got)
	}

	missing := filepath.Join(dir, "absent.h")
	if got := Collect(missing, false, 0); len(got) != 1 || got[0] != missing {
		t.Errorf("missing path must pass through: got %v", got)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(filepath.Join("a", "b", "c.h")); got != "a/b/c.h" {
		t.Errorf("Normalize = %q", got)
	}
}
