// Package memory implements an in-memory provider.Provider over fixture trees
// for tests.
package memory

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/scan-io-git/credscan/internal/provider"
)

// Repository is an in-memory repository tree.
type Repository struct {
	Name       string
	Files      map[string][]byte
	Submodules map[string]*Repository
	// Unreadable paths fail on Read.
	Unreadable map[string]error
	// Unlistable directories fail on List.
	Unlistable map[string]error
	// Broken submodules fail to resolve.
	Broken map[string]error
	// Extra adds entries of arbitrary kinds to a directory listing.
	Extra map[string][]provider.Entry

	reads []string
}

// New returns an empty repository with the given identifier.
func New(name string) *Repository {
	return &Repository{
		Name:       name,
		Files:      make(map[string][]byte),
		Submodules: make(map[string]*Repository),
		Unreadable: make(map[string]error),
		Unlistable: make(map[string]error),
		Broken:     make(map[string]error),
		Extra:      make(map[string][]provider.Entry),
	}
}

// AddFile stores a file at path.
func (r *Repository) AddFile(p, content string) *Repository {
	r.Files[p] = []byte(content)
	return r
}

// AddSubmodule links sub at path.
func (r *Repository) AddSubmodule(p string, sub *Repository) *Repository {
	r.Submodules[p] = sub
	return r
}

// Reads returns the paths read so far, in order.
func (r *Repository) Reads() []string {
	return r.reads
}

// ID implements provider.Provider.
func (r *Repository) ID() string {
	return "memory/" + r.Name
}

// List implements provider.Provider. Children are sorted by name, which is
// also the order the GitHub contents API returns them in.
func (r *Repository) List(_ context.Context, dir string) ([]provider.Entry, error) {
	if err, ok := r.Unlistable[dir]; ok {
		return nil, err
	}

	children := make(map[string]provider.Entry)
	add := func(full string, leaf provider.Entry) {
		rel := full
		if dir != "" {
			if !strings.HasPrefix(full, dir+"/") {
				return
			}
			rel = strings.TrimPrefix(full, dir+"/")
		}
		head, _, nested := strings.Cut(rel, "/")
		if nested {
			children[head] = provider.Directory(path.Join(dir, head))
			return
		}
		children[head] = leaf
	}

	for p := range r.Files {
		add(p, provider.File(p))
	}
	for p := range r.Submodules {
		add(p, provider.Submodule(p, provider.SubmoduleTarget{URL: r.Submodules[p].ID()}))
	}
	for p := range r.Broken {
		add(p, provider.Submodule(p, provider.SubmoduleTarget{}))
	}

	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)

	if dir != "" && len(names) == 0 && len(r.Extra[dir]) == 0 {
		return nil, fmt.Errorf("directory %q not found", dir)
	}

	entries := make([]provider.Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, children[name])
	}
	return append(entries, r.Extra[dir]...), nil
}

// Read implements provider.Provider.
func (r *Repository) Read(_ context.Context, p string) ([]byte, error) {
	r.reads = append(r.reads, p)
	if err, ok := r.Unreadable[p]; ok {
		return nil, err
	}
	content, ok := r.Files[p]
	if !ok {
		return nil, fmt.Errorf("file %q not found", p)
	}
	return content, nil
}

// Submodule implements provider.Provider.
func (r *Repository) Submodule(_ context.Context, entry provider.Entry) (provider.Provider, error) {
	if err, ok := r.Broken[entry.Path]; ok {
		return nil, &provider.SubmoduleError{Path: entry.Path, Err: err}
	}
	sub, ok := r.Submodules[entry.Path]
	if !ok {
		return nil, &provider.SubmoduleError{Path: entry.Path, Err: fmt.Errorf("not a submodule")}
	}
	return sub, nil
}
