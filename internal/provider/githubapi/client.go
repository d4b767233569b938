// Package githubapi implements provider.Provider on top of the GitHub REST API.
package githubapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/go-github/v47/github"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"

	"github.com/scan-io-git/credscan/internal/repoid"
)

// Options configures a Client.
type Options struct {
	// Token is a personal access token. Anonymous access is used when empty.
	Token string
	// APIURL overrides the REST API base URL (GitHub Enterprise, tests).
	APIURL string
	// Host is the web host submodule URLs have to point at.
	Host string
}

// Client is a connection to one GitHub instance.
type Client struct {
	api    *github.Client
	rest   *resty.Client
	token  string
	host   string
	logger hclog.Logger
}

// NewClient builds a go-github client whose transport is the resty client's
// *http.Client, so timeouts, proxy and TLS settings are shared. The resty
// client itself downloads files too large for the contents API.
func NewClient(ctx context.Context, rest *resty.Client, opts Options, logger hclog.Logger) (*Client, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if rest == nil {
		rest = resty.New()
	}

	httpClient := rest.GetClient()
	if opts.Token != "" {
		base := context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		tokenClient := oauth2.NewClient(base, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))
		tokenClient.Timeout = httpClient.Timeout
		httpClient = tokenClient
	}

	api := github.NewClient(httpClient)
	host := opts.Host
	if opts.APIURL != "" {
		apiURL := opts.APIURL
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		u, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API url %q: %w", opts.APIURL, err)
		}
		api.BaseURL = u
		if host == "" {
			host = strings.TrimPrefix(u.Hostname(), "api.")
		}
	}
	if host == "" {
		host = repoid.DefaultHost
	}

	return &Client{
		api:    api,
		rest:   rest,
		token:  opts.Token,
		host:   strings.ToLower(host),
		logger: logger,
	}, nil
}

// Host returns the web host this client serves.
func (c *Client) Host() string {
	return c.host
}

// Repository looks up a repository and returns a provider for it at ref.
// An empty ref selects the default branch.
func (c *Client) Repository(ctx context.Context, repo repoid.Repo, ref string) (*Repository, error) {
	if repo.Host != "" && !strings.EqualFold(repo.Host, c.host) {
		return nil, fmt.Errorf("repository %s is not hosted on %s", repo, c.host)
	}
	repo.Host = c.host

	r, _, err := c.api.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s: %w", repo.FullName(), err)
	}
	if ref == "" {
		ref = r.GetDefaultBranch()
	}
	fullName := r.GetFullName()
	if fullName == "" {
		fullName = repo.FullName()
	}

	c.logger.Debug("repository resolved", "repository", fullName, "ref", ref)
	return &Repository{
		client:   c,
		repo:     repo,
		fullName: fullName,
		ref:      ref,
		logger:   c.logger.With("repository", fullName),
	}, nil
}

// download fetches raw file bytes from a download_url.
func (c *Client) download(ctx context.Context, rawURL string) ([]byte, error) {
	req := c.rest.R().SetContext(ctx)
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	resp, err := req.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download %q: %w", rawURL, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to download %q: unexpected status %s", rawURL, resp.Status())
	}
	return resp.Body(), nil
}
