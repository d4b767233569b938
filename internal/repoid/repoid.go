// Package repoid parses repository identifiers: the "owner/name" form taken
// from the environment and the clone URLs found in .gitmodules.
package repoid

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/gitsight/go-vcsurl"
)

// DefaultHost is the host of public GitHub.
const DefaultHost = "github.com"

// Repo identifies a repository on a VCS host.
type Repo struct {
	// Host is empty when the identifier did not name one.
	Host  string
	Owner string
	Name  string
}

// FullName returns "owner/name".
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

// String returns "host/owner/name", or "owner/name" without a host.
func (r Repo) String() string {
	if r.Host == "" {
		return r.FullName()
	}
	return r.Host + "/" + r.FullName()
}

var scpLike = regexp.MustCompile(`^[\w.-]+@([^:/]+):(.*)$`)

// Parse accepts "owner/name", "host/owner/name", HTTPS and SSH clone URLs.
func Parse(raw string) (Repo, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Repo{}, fmt.Errorf("empty repository identifier")
	}

	if !strings.Contains(raw, "://") && !scpLike.MatchString(raw) {
		parts := pathDirs(raw)
		switch {
		case len(parts) == 2:
			return newRepo("", parts[0], parts[1])
		case len(parts) == 3 && strings.Contains(parts[0], "."):
			return newRepo(parts[0], parts[1], parts[2])
		default:
			return Repo{}, fmt.Errorf("repository identifier %q is not of the form owner/name", raw)
		}
	}

	if info, err := vcsurl.Parse(raw); err == nil && info.Username != "" && info.Name != "" {
		return newRepo(string(info.Host), info.Username, info.Name)
	}
	return parseGeneric(raw)
}

// ParseRelative resolves a submodule URL that may be relative ("../lib.git")
// to the repository that declares it.
func ParseRelative(parent Repo, raw string) (Repo, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../") {
		joined := path.Join("/", parent.Owner, parent.Name, raw)
		parts := pathDirs(joined)
		if len(parts) != 2 {
			return Repo{}, fmt.Errorf("relative submodule url %q escapes host of %s", raw, parent)
		}
		return newRepo(parent.Host, parts[0], parts[1])
	}
	return Parse(raw)
}

// parseGeneric handles hosts go-vcsurl does not know, such as GitHub Enterprise.
func parseGeneric(raw string) (Repo, error) {
	target := raw
	if parts := scpLike.FindStringSubmatch(target); len(parts) == 3 {
		target = fmt.Sprintf("ssh://%s/%s", parts[1], parts[2])
	}
	u, err := url.Parse(target)
	if err != nil {
		return Repo{}, fmt.Errorf("failed to parse repository url %q: %w", raw, err)
	}
	parts := pathDirs(u.Path)
	if u.Hostname() == "" || len(parts) < 2 {
		return Repo{}, fmt.Errorf("repository url %q has no owner/name", raw)
	}
	return newRepo(u.Hostname(), parts[0], parts[1])
}

func newRepo(host, owner, name string) (Repo, error) {
	name = strings.TrimSuffix(name, ".git")
	if owner == "" || name == "" {
		return Repo{}, fmt.Errorf("repository owner and name must not be empty")
	}
	return Repo{Host: strings.ToLower(host), Owner: owner, Name: name}, nil
}

// pathDirs splits a path into non-empty segments.
func pathDirs(p string) []string {
	var dirs []string
	for _, dir := range strings.Split(p, "/") {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
