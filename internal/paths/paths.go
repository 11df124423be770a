// Package paths discovers C source and header files on disk and normalizes
// the paths the scanner reports.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// IsSourceFile reports whether path names a C source or header file, by
// extension only.
func IsSourceFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c", ".h":
		return true
	}
	return false
}

// Collect expands path into the C files beneath it. A plain file or a missing
// path is returned as-is, so callers surface unreadable inputs as analysis
// failures instead of silently dropping them. Hidden directories are always
// skipped; other subdirectories only when recursive is set. Files larger than
// maxSize bytes are skipped when maxSize is positive.
func Collect(path string, recursive bool, maxSize int) []string {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return []string{path}
	}

	var files []string
	_ = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if fi.IsDir() {
			if p != path && (!recursive || strings.HasPrefix(fi.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSourceFile(p) {
			return nil
		}
		if maxSize > 0 && fi.Size() > int64(maxSize) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	return files
}

// Normalize converts a path to forward slashes so reports and cache keys are
// identical across platforms.
func Normalize(path string) string {
	return filepath.ToSlash(path)
}
