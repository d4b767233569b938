package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/google/go-github/v47/github"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/credscan/internal/provider"
	"github.com/scan-io-git/credscan/internal/repoid"
)

const gitmodulesPath = ".gitmodules"

// Repository is one GitHub repository pinned to a ref.
type Repository struct {
	client   *Client
	repo     repoid.Repo
	fullName string
	ref      string
	logger   hclog.Logger

	modules map[string]*gitconfig.Submodule
}

// ID implements provider.Provider.
func (r *Repository) ID() string {
	return fmt.Sprintf("%s@%s", r.repo, r.ref)
}

// FullName returns the "owner/name" reported by GitHub.
func (r *Repository) FullName() string {
	return r.fullName
}

// Ref returns the branch, tag or commit being scanned.
func (r *Repository) Ref() string {
	return r.ref
}

func (r *Repository) contents(ctx context.Context, p string) (*github.RepositoryContent, []*github.RepositoryContent, error) {
	opts := &github.RepositoryContentGetOptions{Ref: r.ref}
	file, dir, _, err := r.client.api.Repositories.GetContents(ctx, r.repo.Owner, r.repo.Name, p, opts)
	return file, dir, err
}

// List implements provider.Provider.
func (r *Repository) List(ctx context.Context, dir string) ([]provider.Entry, error) {
	file, children, err := r.contents(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", dir, err)
	}
	if file != nil {
		return []provider.Entry{toEntry(file)}, nil
	}

	entries := make([]provider.Entry, 0, len(children))
	for _, c := range children {
		entries = append(entries, toEntry(c))
	}
	return entries, nil
}

// Read implements provider.Provider.
func (r *Repository) Read(ctx context.Context, p string) ([]byte, error) {
	file, _, err := r.contents(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", p, err)
	}
	if file == nil || file.GetType() != "file" {
		return nil, fmt.Errorf("%q is not a file", p)
	}

	// Files above 1 MB come back without inline content.
	if file.GetEncoding() == "none" || (file.Content == nil && file.GetSize() > 0) {
		if file.GetDownloadURL() == "" {
			return nil, fmt.Errorf("%q has no inline content and no download url", p)
		}
		r.logger.Debug("downloading large file", "path", p, "size", file.GetSize())
		return r.client.download(ctx, file.GetDownloadURL())
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %q: %w", p, err)
	}
	return []byte(content), nil
}

// Submodule implements provider.Provider. The linked repository is taken from
// .gitmodules, falling back to the git url GitHub reports for the gitlink.
func (r *Repository) Submodule(ctx context.Context, entry provider.Entry) (provider.Provider, error) {
	target, err := r.submoduleRepo(ctx, entry)
	if err != nil {
		return nil, &provider.SubmoduleError{Path: entry.Path, Err: err}
	}
	if !strings.EqualFold(target.Host, r.client.host) {
		return nil, &provider.SubmoduleError{
			Path: entry.Path,
			Err:  fmt.Errorf("points at %s, outside %s", target, r.client.host),
		}
	}

	sub, err := r.client.Repository(ctx, target, entry.Target.SHA)
	if err != nil {
		return nil, &provider.SubmoduleError{Path: entry.Path, Err: err}
	}
	return sub, nil
}

func (r *Repository) submoduleRepo(ctx context.Context, entry provider.Entry) (repoid.Repo, error) {
	modules, err := r.gitmodules(ctx)
	if err != nil {
		return repoid.Repo{}, err
	}
	if sm, ok := modules[entry.Path]; ok && sm.URL != "" {
		return repoid.ParseRelative(r.repo, sm.URL)
	}
	if entry.Target.URL != "" {
		return parseGitURL(r.client.host, entry.Target.URL)
	}
	return repoid.Repo{}, fmt.Errorf("no %s entry and no git url", gitmodulesPath)
}

// gitmodules loads and caches the submodule declarations of the repository,
// keyed by path. A repository without .gitmodules yields an empty map.
func (r *Repository) gitmodules(ctx context.Context) (map[string]*gitconfig.Submodule, error) {
	if r.modules != nil {
		return r.modules, nil
	}

	r.modules = make(map[string]*gitconfig.Submodule)
	data, err := r.Read(ctx, gitmodulesPath)
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return r.modules, nil
		}
		r.modules = nil
		return nil, err
	}

	modules := gitconfig.NewModules()
	if err := modules.Unmarshal(data); err != nil {
		r.modules = nil
		return nil, fmt.Errorf("failed to parse %s: %w", gitmodulesPath, err)
	}
	for _, sm := range modules.Submodules {
		r.modules[sm.Path] = sm
	}
	return r.modules, nil
}

// toEntry maps a contents API item onto the closed entry variant. Directory
// listings report submodules as "file" items without a download url; the git
// url, when present, is a tree in the linked repository. Submodules hosted
// outside GitHub carry no git url at all.
func toEntry(c *github.RepositoryContent) provider.Entry {
	p := c.GetPath()
	switch c.GetType() {
	case "file":
		if c.GetDownloadURL() == "" {
			return provider.Submodule(p, provider.SubmoduleTarget{SHA: c.GetSHA(), URL: c.GetGitURL()})
		}
		return provider.File(p)
	case "dir":
		return provider.Directory(p)
	case "submodule":
		return provider.Submodule(p, provider.SubmoduleTarget{SHA: c.GetSHA(), URL: c.GetGitURL()})
	default:
		return provider.Unknown(p, c.GetType())
	}
}

// parseGitURL extracts owner/name from an API url such as
// https://api.github.com/repos/OWNER/NAME/git/trees/SHA.
func parseGitURL(host, raw string) (repoid.Repo, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return repoid.Repo{}, fmt.Errorf("invalid git url %q: %w", raw, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "repos" && parts[i+1] != "" && parts[i+2] != "" {
			return repoid.Repo{Host: host, Owner: parts[i+1], Name: parts[i+2]}, nil
		}
	}
	return repoid.Repo{}, fmt.Errorf("git url %q does not name a repository", raw)
}
