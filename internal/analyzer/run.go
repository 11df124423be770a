package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cscan/internal/errors"
)

// Run is the outcome of analyzing one or more root files, including every
// header reached through non-system includes.
type Run struct {
	ID          string              `json:"id"`
	StartedAt   time.Time           `json:"startedAt"`
	Summaries   []*HeaderSummary    `json:"summaries"`
	Diagnostics []errors.Diagnostic `json:"diagnostics,omitempty"`
	// ImportGraph maps each analyzed file to the resolved paths of its
	// non-system includes.
	ImportGraph map[string][]string `json:"importGraph,omitempty"`
	// Failed lists requested root paths that could not be read.
	Failed []string `json:"failed,omitempty"`
}

// Options controls a batch run.
type Options struct {
	// FollowIncludes analyzes headers reached via resolvable non-system
	// includes, each at most once.
	FollowIncludes bool
	// Workers bounds concurrent file analysis. Zero means one worker.
	Workers int
}

// AnalyzeBatch analyzes the given root files. Roots are processed
// concurrently; discovered includes are followed breadth-first. Summaries
// are ordered deterministically: includes before the file including them
// (post-order), roots in input order. An unreadable root is recorded in
// Failed and does not stop the batch; ctx cancellation stops scheduling new
// files but already completed summaries stay valid.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, roots []string, opts Options) *Run {
	run := &Run{
		ID:          uuid.New().String(),
		StartedAt:   time.Now().UTC(),
		ImportGraph: map[string][]string{},
	}

	type result struct {
		summary *HeaderSummary
		diags   []errors.Diagnostic
		err     error
	}

	var mu sync.Mutex
	results := map[string]result{}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	// Each wave analyzes all not-yet-visited files in parallel, then the
	// includes they surfaced form the next wave.
	visited := map[string]bool{}
	wave := dedupe(roots)
	for len(wave) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for _, path := range wave {
			if visited[path] {
				continue
			}
			visited[path] = true
			path := path
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				summary, diags, err := a.AnalyzeFile(path)
				mu.Lock()
				results[path] = result{summary: summary, diags: diags, err: err}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		var next []string
		if opts.FollowIncludes {
			for _, path := range wave {
				res := results[path]
				if res.summary == nil {
					continue
				}
				for _, inc := range res.summary.Includes {
					if inc.IsSystem {
						continue
					}
					resolved := a.resolveFor(path, inc.Path)
					if resolved == "" {
						continue
					}
					run.ImportGraph[path] = append(run.ImportGraph[path], resolved)
					if !visited[resolved] {
						next = append(next, resolved)
					}
				}
			}
		}
		wave = dedupe(next)
		if ctx.Err() != nil {
			break
		}
	}

	// Deterministic emission order: depth-first post-order from each
	// root, so a header's summary precedes its includer's.
	emitted := map[string]bool{}
	var emit func(path string)
	emit = func(path string) {
		if emitted[path] {
			return
		}
		emitted[path] = true
		deps := append([]string(nil), run.ImportGraph[path]...)
		sort.Strings(deps)
		for _, dep := range deps {
			emit(dep)
		}
		res, ok := results[path]
		if !ok {
			return
		}
		if res.err != nil {
			run.Failed = append(run.Failed, path)
			run.Diagnostics = append(run.Diagnostics, errors.Diagnostic{
				Code:    errors.IOError,
				Path:    path,
				Message: res.err.Error(),
			})
			return
		}
		run.Summaries = append(run.Summaries, res.summary)
		run.Diagnostics = append(run.Diagnostics, res.diags...)
	}
	for _, root := range dedupe(roots) {
		emit(root)
	}
	return run
}

// resolveFor resolves an include target for a given including file: its own
// directory is searched first, then the configured include paths.
func (a *Analyzer) resolveFor(from, target string) string {
	dirs := append([]string{filepath.Dir(from)}, a.includePaths...)
	for _, dir := range dirs {
		candidate := filepath.Join(dir, target)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func dedupe(paths []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
