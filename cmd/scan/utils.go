package scan

import (
	"context"

	"github.com/scan-io-git/credscan/internal/config"
	"github.com/scan-io-git/credscan/internal/httpclient"
	"github.com/scan-io-git/credscan/internal/provider"
	"github.com/scan-io-git/credscan/internal/provider/githubapi"
	"github.com/scan-io-git/credscan/internal/provider/local"
	"github.com/scan-io-git/credscan/internal/repoid"
)

// resolveScanOptions merges command flags over the environment and the
// report section of the configuration file.
func resolveScanOptions(flags RunOptionsScan, cfg *config.Config, creds config.Credentials) RunOptionsScan {
	opts := flags
	if cfg == nil {
		cfg = &config.Config{}
	}

	opts.Token = config.SetThen(opts.Token, creds.Token)
	if opts.LocalPath == "" {
		opts.Repo = config.SetThen(opts.Repo, creds.Repo)
	}
	opts.OutputPath = config.SetThen(opts.OutputPath, cfg.Report.Path)
	opts.Sheet = config.SetThen(opts.Sheet, cfg.Report.Sheet)
	opts.SARIFPath = config.SetThen(opts.SARIFPath, cfg.Report.SARIFPath)
	return opts
}

// defaultConnect opens a local working tree or looks the repository up on GitHub.
func (d *Driver) defaultConnect(ctx context.Context, opts RunOptionsScan) (provider.Provider, string, error) {
	if opts.LocalPath != "" {
		repo, err := local.Open(opts.LocalPath, d.logger.Named("local"))
		if err != nil {
			return nil, "", err
		}
		return repo, repo.ID(), nil
	}

	id, err := repoid.Parse(opts.Repo)
	if err != nil {
		return nil, "", err
	}

	rest := httpclient.New(d.logger.Named("http"), d.cfg)
	client, err := githubapi.NewClient(ctx, rest, githubapi.Options{
		Token:  opts.Token,
		APIURL: d.cfg.GitHub.APIURL,
		Host:   d.cfg.GitHub.Host,
	}, d.logger.Named("github"))
	if err != nil {
		return nil, "", err
	}

	repo, err := client.Repository(ctx, id, opts.Ref)
	if err != nil {
		return nil, "", err
	}
	return repo, repo.FullName(), nil
}
