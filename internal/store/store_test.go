package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cscan/internal/analyzer"
	"cscan/internal/errors"
	"cscan/internal/logging"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), logging.NewLogger(logging.Config{Level: logging.ErrorLevel}))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleSummary(path string) *analyzer.HeaderSummary {
	summary, _ := analyzer.New(nil).AnalyzeSource(path, "#define N 3\nint f(void);\n")
	return summary
}

func TestOpenFailureCarriesCacheCode(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "cache")
	if err := os.WriteFile(blocker, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	// The cache directory cannot be created below a plain file.
	_, err := Open(filepath.Join(blocker, "sub"), logging.NewLogger(logging.Config{Level: logging.ErrorLevel}))
	if err == nil {
		t.Fatal("expected an error")
	}
	se, ok := err.(*errors.ScanError)
	if !ok {
		t.Fatalf("error type = %T, want *errors.ScanError", err)
	}
	if se.Code != errors.CacheError {
		t.Errorf("code = %s, want %s", se.Code, errors.CacheError)
	}
}

func TestGetMiss(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Get("absent.h", "deadbeef")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("miss should return nil, got %+v", got)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	summary := sampleSummary("a.h")
	sum := analyzer.Checksum([]byte("content"))

	if err := s.Put("a.h", sum, summary); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("a.h", sum)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected a hit")
	}
	if got.Path != "a.h" || got.FunctionCount() != 1 || got.MacroCount() != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestPutReplacesStaleChecksums(t *testing.T) {
	s := openTestStore(t)
	old := analyzer.Checksum([]byte("v1"))
	cur := analyzer.Checksum([]byte("v2"))

	if err := s.Put("a.h", old, sampleSummary("a.h")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("a.h", cur, sampleSummary("a.h")); err != nil {
		t.Fatal(err)
	}

	if got, _ := s.Get("a.h", old); got != nil {
		t.Error("stale checksum entry should be gone")
	}
	if got, _ := s.Get("a.h", cur); got == nil {
		t.Error("current entry should remain")
	}
	st, err := s.Status()
	if err != nil {
		t.Fatal(err)
	}
	if st.Summaries != 1 {
		t.Errorf("summaries = %d, want 1", st.Summaries)
	}
}

func TestCorruptEntryTreatedAsMiss(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.conn.Exec(
		"INSERT INTO summaries (path, checksum, summary, analyzed_at) VALUES (?, ?, ?, ?)",
		"a.h", "sum", "{broken", time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get("a.h", "sum")
	if err != nil {
		t.Fatalf("corrupt row must not surface an error: %v", err)
	}
	if got != nil {
		t.Errorf("corrupt row must read as a miss, got %+v", got)
	}
}

func TestRecordRunAndStatus(t *testing.T) {
	s := openTestStore(t)
	run := &analyzer.Run{
		ID:        "run-1",
		StartedAt: time.Now().UTC(),
		Summaries: []*analyzer.HeaderSummary{sampleSummary("a.h")},
	}
	if err := s.RecordRun(run); err != nil {
		t.Fatal(err)
	}

	st, err := s.Status()
	if err != nil {
		t.Fatal(err)
	}
	if st.Runs != 1 {
		t.Errorf("runs = %d, want 1", st.Runs)
	}
	if st.Path == "" || filepath.Base(st.Path) != "cache.db" {
		t.Errorf("status path = %q", st.Path)
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("a.h", "sum", sampleSummary("a.h")); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordRun(&analyzer.Run{ID: "r", StartedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	st, err := s.Status()
	if err != nil {
		t.Fatal(err)
	}
	if st.Summaries != 0 || st.Runs != 0 {
		t.Errorf("status after clear = %+v", st)
	}
}
