// Package local implements provider.Provider over a git working tree on disk.
// Submodules are resolved through go-git, so only initialized submodules are
// walked.
package local

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/credscan/internal/provider"
)

// Repository is a working tree opened with go-git.
type Repository struct {
	id       string
	repo     *git.Repository
	worktree *git.Worktree
	fs       billy.Filesystem
	// submodules maps a working tree path to the submodule name.
	submodules map[string]string
	logger     hclog.Logger
}

// Open opens the git working tree at dir.
func Open(dir string, logger hclog.Logger) (*Repository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", dir, err)
	}
	repo, err := git.PlainOpen(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository %q: %w", abs, err)
	}
	return newRepository(abs, repo, logger)
}

func newRepository(id string, repo *git.Repository, logger hclog.Logger) (*Repository, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("repository %q has no working tree: %w", id, err)
	}

	subs, err := wt.Submodules()
	if err != nil {
		return nil, fmt.Errorf("failed to read submodules of %q: %w", id, err)
	}
	submodules := make(map[string]string, len(subs))
	for _, s := range subs {
		submodules[path.Clean(s.Config().Path)] = s.Config().Name
	}

	return &Repository{
		id:         id,
		repo:       repo,
		worktree:   wt,
		fs:         wt.Filesystem,
		submodules: submodules,
		logger:     logger,
	}, nil
}

// ID implements provider.Provider.
func (r *Repository) ID() string {
	return r.id
}

// List implements provider.Provider. Children are returned sorted by name and
// the .git entry is never listed.
func (r *Repository) List(_ context.Context, dir string) ([]provider.Entry, error) {
	fsDir := dir
	if fsDir == "" {
		fsDir = "."
	}
	infos, err := r.fs.ReadDir(fsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", dir, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	entries := make([]provider.Entry, 0, len(infos))
	for _, info := range infos {
		if info.Name() == git.GitDirName {
			continue
		}
		p := path.Join(dir, info.Name())
		switch {
		case r.isSubmodule(p):
			entries = append(entries, provider.Submodule(p, provider.SubmoduleTarget{URL: r.submodules[p]}))
		case info.IsDir():
			entries = append(entries, provider.Directory(p))
		case info.Mode().IsRegular():
			entries = append(entries, provider.File(p))
		default:
			entries = append(entries, provider.Unknown(p, info.Mode().Type().String()))
		}
	}
	return entries, nil
}

func (r *Repository) isSubmodule(p string) bool {
	_, ok := r.submodules[p]
	return ok
}

// Read implements provider.Provider.
func (r *Repository) Read(_ context.Context, p string) ([]byte, error) {
	f, err := r.fs.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", p, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", p, err)
	}
	return content, nil
}

// Submodule implements provider.Provider.
func (r *Repository) Submodule(_ context.Context, entry provider.Entry) (provider.Provider, error) {
	name, ok := r.submodules[entry.Path]
	if !ok {
		return nil, &provider.SubmoduleError{Path: entry.Path, Err: fmt.Errorf("not declared in .gitmodules")}
	}
	sm, err := r.worktree.Submodule(name)
	if err != nil {
		return nil, &provider.SubmoduleError{Path: entry.Path, Err: err}
	}
	subRepo, err := sm.Repository()
	if err != nil {
		return nil, &provider.SubmoduleError{Path: entry.Path, Err: err}
	}

	sub, err := newRepository(filepath.Join(r.id, filepath.FromSlash(entry.Path)), subRepo, r.logger)
	if err != nil {
		return nil, &provider.SubmoduleError{Path: entry.Path, Err: err}
	}
	r.logger.Debug("opened submodule", "path", entry.Path, "name", name)
	return sub, nil
}
