package analyzer

import (
	"fmt"

	"cscan/internal/cdecl"
	"cscan/internal/preproc"
)

// HeaderSummary is the analyzed public surface of one file. All fields are
// set once during analysis and never mutated; counts are always derived
// from the listings.
type HeaderSummary struct {
	Path      string               `json:"path"`
	Functions []cdecl.FunctionDecl `json:"functions"`
	Types     []cdecl.TypeDecl     `json:"types"`
	Macros    []preproc.MacroDecl  `json:"macros"`
	Includes  []preproc.Include    `json:"includes,omitempty"`
}

// FunctionCount returns the number of recognized functions.
func (s *HeaderSummary) FunctionCount() int { return len(s.Functions) }

// TypeCount returns the number of recognized type declarations.
func (s *HeaderSummary) TypeCount() int { return len(s.Types) }

// MacroCount returns the number of recorded macros.
func (s *HeaderSummary) MacroCount() int { return len(s.Macros) }

// Description renders the human-readable one-liner. It is computed from the
// final counts, never stored.
func (s *HeaderSummary) Description() string {
	return fmt.Sprintf("Header file containing %d functions, %d types, and %d macros",
		s.FunctionCount(), s.TypeCount(), s.MacroCount())
}
