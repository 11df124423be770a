// Package analyzer ties the lexer, declaration parser and macro catalog
// together into per-file summaries, resolves includes against the configured
// search paths, and runs batches of files concurrently.
package analyzer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"cscan/internal/cdecl"
	"cscan/internal/errors"
	"cscan/internal/lexer"
	"cscan/internal/preproc"
)

// Cache stores summaries keyed by path and content checksum. A nil result
// with nil error is a miss.
type Cache interface {
	Get(path, checksum string) (*HeaderSummary, error)
	Put(path, checksum string, summary *HeaderSummary) error
}

// Analyzer analyzes C source and header files. Each file's analysis is a
// pure computation over its text; the Analyzer itself only carries the
// include search paths and an optional cache, so it is safe to share across
// goroutines.
type Analyzer struct {
	includePaths []string
	cache        Cache
}

// New creates an Analyzer with the given include search paths.
func New(includePaths []string) *Analyzer {
	return &Analyzer{includePaths: includePaths}
}

// WithCache attaches a summary cache. The cache implementation must be safe
// for concurrent use.
func (a *Analyzer) WithCache(c Cache) {
	a.cache = c
}

// AddIncludePath appends a directory to the include search paths.
func (a *Analyzer) AddIncludePath(dir string) {
	a.includePaths = append(a.includePaths, dir)
}

// AnalyzeSource analyzes already-loaded source text. It never fails: every
// problem short of unreadable input is reported as a diagnostic next to the
// summary.
func (a *Analyzer) AnalyzeSource(path, src string) (*HeaderSummary, []errors.Diagnostic) {
	var diags []errors.Diagnostic

	sc := lexer.Scan(path, src)
	toks := sc.All()
	for _, msg := range sc.Diagnostics() {
		diags = append(diags, errors.Diagnostic{Code: errors.LexError, Path: path, Message: msg})
	}

	cat := preproc.Build(path, toks)
	for _, msg := range cat.Diagnostics {
		diags = append(diags, errors.Diagnostic{Code: errors.MacroSyntaxError, Path: path, Message: msg})
	}

	res := cdecl.Parse(path, stripDirectives(toks))
	for _, msg := range res.Diagnostics {
		diags = append(diags, errors.Diagnostic{Code: errors.DeclSyntaxError, Path: path, Message: msg})
	}

	return &HeaderSummary{
		Path:      path,
		Functions: res.Functions,
		Types:     res.Types,
		Macros:    cat.Macros,
		Includes:  cat.Includes,
	}, diags
}

// AnalyzeFile reads and analyzes one file, consulting the cache when one is
// attached. Cache hits carry no diagnostics; the file was clean or its
// problems were already reported when the entry was written.
func (a *Analyzer) AnalyzeFile(path string) (*HeaderSummary, []errors.Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.New(errors.IOError, fmt.Sprintf("cannot read %s", path), err)
	}

	var checksum string
	if a.cache != nil {
		checksum = Checksum(data)
		if cached, err := a.cache.Get(path, checksum); err == nil && cached != nil {
			return cached, nil, nil
		}
	}

	summary, diags := a.AnalyzeSource(path, string(data))
	if a.cache != nil {
		// Cache failures are invisible to the caller; the analysis
		// result is already in hand.
		_ = a.cache.Put(path, checksum, summary)
	}
	return summary, diags, nil
}

// Checksum returns the hex SHA-256 of file content, the key under which
// summaries are cached.
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// stripDirectives removes directive lines from the token stream, leaving
// only the tokens the declaration parser should see. All conditional
// branches remain active text.
func stripDirectives(toks []lexer.Token) []lexer.Token {
	out := make([]lexer.Token, 0, len(toks))
	inDirective := false
	for _, t := range toks {
		switch t.Kind {
		case lexer.Directive:
			inDirective = true
		case lexer.EndDirective:
			inDirective = false
		case lexer.EOF:
			out = append(out, t)
		default:
			if !inDirective {
				out = append(out, t)
			}
		}
	}
	return out
}

// ResolveInclude finds the file an include directive refers to, searching
// the configured include paths in order. Returns "" when nothing matches.
func (a *Analyzer) ResolveInclude(inc preproc.Include) string {
	for _, dir := range a.includePaths {
		candidate := filepath.Join(dir, inc.Path)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
