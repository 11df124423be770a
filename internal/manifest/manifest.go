// Package manifest parses the optional HEADERS.toml file declaring named
// header sets to analyze, so a project can pin its scan surface instead of
// passing paths on every invocation.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// ManifestFile is the default filename for header set declarations
const ManifestFile = "HEADERS.toml"

// HeaderSet represents one declared group of headers in HEADERS.toml
type HeaderSet struct {
	// Name is the human-readable name of the set
	Name string `toml:"name"`

	// Paths are files or directories to analyze, relative to the
	// manifest's directory
	Paths []string `toml:"paths"`

	// IncludeDirs are extra include search directories for this set
	IncludeDirs []string `toml:"include_dirs,omitempty"`

	// Tags are classification tags for the set
	Tags []string `toml:"tags,omitempty"`
}

// Manifest represents the root structure of HEADERS.toml
type Manifest struct {
	// Version is the schema version
	Version int `toml:"version"`

	// Sets is the list of declared header sets
	Sets []HeaderSet `toml:"set"`
}

// Parse reads and validates a HEADERS.toml file.
func Parse(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if m.Version == 0 {
		m.Version = 1
	}
	if m.Version != 1 {
		return nil, fmt.Errorf("%s: unsupported manifest version %d", path, m.Version)
	}
	for i, set := range m.Sets {
		if set.Name == "" {
			return nil, fmt.Errorf("%s: set %d has no name", path, i+1)
		}
		if len(set.Paths) == 0 {
			return nil, fmt.Errorf("%s: set %q declares no paths", path, set.Name)
		}
	}
	return &m, nil
}

// Find walks up from dir looking for a HEADERS.toml. Returns "" when none
// exists.
func Find(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ManifestFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Set returns the named header set, or nil.
func (m *Manifest) Set(name string) *HeaderSet {
	for i := range m.Sets {
		if m.Sets[i].Name == name {
			return &m.Sets[i]
		}
	}
	return nil
}

// ResolvePaths returns a set's paths resolved against the manifest's
// directory.
func (s *HeaderSet) ResolvePaths(manifestPath string) []string {
	base := filepath.Dir(manifestPath)
	out := make([]string, 0, len(s.Paths))
	for _, p := range s.Paths {
		if filepath.IsAbs(p) {
			out = append(out, p)
			continue
		}
		out = append(out, filepath.Join(base, p))
	}
	return out
}
