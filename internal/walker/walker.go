// Package walker traverses a repository content tree, submodules included,
// and collects credential findings from every file it reaches.
package walker

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/credscan/internal/findings"
	"github.com/scan-io-git/credscan/internal/matcher"
	"github.com/scan-io-git/credscan/internal/provider"
)

// Stats summarises one walk.
type Stats struct {
	FilesScanned      int
	FilesSkipped      int
	DirectoriesListed int
	SubmodulesWalked  int
	EntriesSkipped    int
	Errors            int
}

// Walker performs a single scan run. The visited sets live for exactly one
// Walk call chain and are never shared between runs.
type Walker struct {
	logger  hclog.Logger
	visited map[string]struct{}
	repos   map[string]struct{}
	stats   Stats
}

// New creates a Walker for one run.
func New(logger hclog.Logger) *Walker {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Walker{
		logger:  logger,
		visited: make(map[string]struct{}),
		repos:   make(map[string]struct{}),
	}
}

// Stats returns the counters collected so far.
func (w *Walker) Stats() Stats {
	return w.stats
}

// Walk scans the repository behind p and every submodule reachable from it.
// Findings are returned in traversal order. Only a failure to list the root
// of p is returned as an error; everything below it is logged and skipped.
func (w *Walker) Walk(ctx context.Context, p provider.Provider) ([]findings.Finding, error) {
	w.repos[p.ID()] = struct{}{}

	root, err := p.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list root of %s: %w", p.ID(), err)
	}
	return w.walkTree(ctx, p, root)
}

// walkTree drains a FIFO queue seeded with the root entries of one repository.
func (w *Walker) walkTree(ctx context.Context, p provider.Provider, pending []provider.Entry) ([]findings.Finding, error) {
	var results []findings.Finding

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		entry := pending[0]
		pending = pending[1:]

		switch entry.Kind {
		case provider.KindFile:
			results = append(results, w.scanFile(ctx, p, entry)...)

		case provider.KindDirectory:
			children, err := p.List(ctx, entry.Path)
			if err != nil {
				w.stats.Errors++
				w.logger.Warn("failed to list directory", "repository", p.ID(), "path", entry.Path, "error", err)
				continue
			}
			w.stats.DirectoriesListed++
			pending = append(pending, children...)

		case provider.KindSubmodule:
			subResults, err := w.walkSubmodule(ctx, p, entry)
			results = append(results, subResults...)
			if err != nil {
				return results, err
			}

		default:
			w.stats.EntriesSkipped++
			w.logger.Warn("unknown content type", "type", entry.RawType, "path", entry.Path)
		}
	}

	return results, nil
}

func (w *Walker) scanFile(ctx context.Context, p provider.Provider, entry provider.Entry) []findings.Finding {
	if _, seen := w.visited[entry.Path]; seen {
		w.stats.FilesSkipped++
		w.logger.Debug("file already processed", "path", entry.Path)
		return nil
	}
	w.visited[entry.Path] = struct{}{}

	content, err := p.Read(ctx, entry.Path)
	if err != nil {
		w.stats.Errors++
		w.logger.Warn("error reading file", "repository", p.ID(), "path", entry.Path, "error", err)
		return nil
	}
	w.stats.FilesScanned++

	var results []findings.Finding
	for _, m := range matcher.ScanContent(content) {
		results = append(results, findings.Finding{
			FilePath:      entry.Path,
			MatchedString: m.Candidate,
			LineNumber:    m.Line,
			FullLine:      m.FullLine,
		})
	}
	if len(results) > 0 {
		w.logger.Debug("potential hardcoded credentials", "path", entry.Path, "count", len(results))
	}
	return results
}

// walkSubmodule resolves a submodule and walks its tree with the same visited
// set. Only context cancellation is returned as an error.
func (w *Walker) walkSubmodule(ctx context.Context, p provider.Provider, entry provider.Entry) ([]findings.Finding, error) {
	sub, err := p.Submodule(ctx, entry)
	if err != nil {
		w.stats.Errors++
		w.logger.Warn("could not get repository for submodule", "path", entry.Path, "error", err)
		return nil, nil
	}
	if sub == nil {
		w.stats.Errors++
		w.logger.Warn("could not get repository for submodule", "path", entry.Path)
		return nil, nil
	}

	id := sub.ID()
	if _, seen := w.repos[id]; seen {
		w.logger.Debug("submodule repository already walked", "path", entry.Path, "repository", id)
		return nil, nil
	}
	w.repos[id] = struct{}{}

	root, err := sub.List(ctx, "")
	if err != nil {
		w.stats.Errors++
		w.logger.Warn("error processing submodule", "path", entry.Path, "repository", id, "error", err)
		return nil, nil
	}

	w.stats.SubmodulesWalked++
	w.logger.Info("walking submodule", "path", entry.Path, "repository", id)
	return w.walkTree(ctx, sub, root)
}
