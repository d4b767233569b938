package scan

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/credscan/internal/config"
	cerrors "github.com/scan-io-git/credscan/internal/errors"
	"github.com/scan-io-git/credscan/internal/provider"
	"github.com/scan-io-git/credscan/internal/provider/memory"
	"github.com/scan-io-git/credscan/internal/report"
)

func newTestDriver(repo *memory.Repository, connectErr error) (*Driver, *bytes.Buffer, *int) {
	var out bytes.Buffer
	calls := 0
	d := NewDriver(nil, nil, &out)
	d.connect = func(ctx context.Context, opts RunOptionsScan) (provider.Provider, string, error) {
		calls++
		if connectErr != nil {
			return nil, "", connectErr
		}
		return repo, "octo/app", nil
	}
	return d, &out, &calls
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return cerrors.ExitOK
	}
	var cmdErr *cerrors.CommandError
	require.ErrorAs(t, err, &cmdErr)
	return cmdErr.ExitCode
}

func TestRunWritesReport(t *testing.T) {
	repo := memory.New("app").
		AddFile("config.py", "\n\n\n\npassword = \"abc123\"\n").
		AddFile("lib/util.go", "package lib\n")
	d, out, _ := newTestDriver(repo, nil)

	dir := t.TempDir()
	opts := RunOptionsScan{
		Token:      "ghp_x",
		Repo:       "octo/app",
		OutputPath: filepath.Join(dir, "report.xlsx"),
		SARIFPath:  filepath.Join(dir, "report.sarif"),
	}
	require.NoError(t, d.Run(context.Background(), opts))

	assert.Contains(t, out.String(), "Scanning repository: octo/app")
	assert.Contains(t, out.String(), "Results written to "+opts.OutputPath)
	assert.Contains(t, out.String(), "SARIF results written to "+opts.SARIFPath)

	rows, err := report.ReadXLSX(opts.OutputPath, report.DefaultSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"File Path", "Matched String", "Line Number", "Full Line"},
		{"config.py", "abc123", "5", `password = "abc123"`},
	}, rows)

	_, err = os.Stat(opts.SARIFPath)
	assert.NoError(t, err)
}

func TestRunWithoutFindings(t *testing.T) {
	repo := memory.New("app").AddFile("README.md", "# hello\n")
	d, out, _ := newTestDriver(repo, nil)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	err := d.Run(context.Background(), RunOptionsScan{Token: "t", Repo: "octo/app", OutputPath: path})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "No potential hardcoded passwords found.")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunMissingConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		opts    RunOptionsScan
		message string
	}{
		{name: "missing token", opts: RunOptionsScan{Repo: "octo/app"}, message: "Error: GITHUB_TOKEN environment variable not set."},
		{name: "missing repository", opts: RunOptionsScan{Token: "t"}, message: "Error: GITHUB_REPO environment variable not set."},
		{name: "malformed repository", opts: RunOptionsScan{Token: "t", Repo: "app"}, message: "invalid repository"},
		{name: "local with repository", opts: RunOptionsScan{LocalPath: ".", Repo: "octo/app"}, message: "'local' flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, out, calls := newTestDriver(memory.New("app"), nil)

			err := d.Run(context.Background(), tt.opts)
			assert.Equal(t, cerrors.ExitPrecondition, exitCode(t, err))
			assert.Contains(t, out.String(), tt.message)
			assert.Zero(t, *calls, "no connection attempt expected")
		})
	}
}

func TestRunConnectionFailure(t *testing.T) {
	d, out, _ := newTestDriver(nil, errors.New("401 Bad credentials"))

	err := d.Run(context.Background(), RunOptionsScan{Token: "t", Repo: "octo/app"})
	assert.Equal(t, cerrors.ExitPrecondition, exitCode(t, err))
	assert.Contains(t, out.String(), "Error connecting to GitHub or accessing the repository: 401 Bad credentials")
	assert.Contains(t, out.String(), "Please check your GITHUB_TOKEN and GITHUB_REPO environment variables.")
}

func TestRunRootListingFailure(t *testing.T) {
	repo := memory.New("app")
	repo.Unlistable[""] = errors.New("rate limited")
	d, _, _ := newTestDriver(repo, nil)

	err := d.Run(context.Background(), RunOptionsScan{Token: "t", Repo: "octo/app"})
	assert.Equal(t, cerrors.ExitFailure, exitCode(t, err))
}

func TestRunWriteFailure(t *testing.T) {
	repo := memory.New("app").AddFile("a.env", "secret=x")
	d, out, _ := newTestDriver(repo, nil)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := d.Run(context.Background(), RunOptionsScan{Token: "t", Repo: "octo/app", OutputPath: filepath.Join(blocker, "r.xlsx")})
	assert.Equal(t, cerrors.ExitFailure, exitCode(t, err))
	assert.Contains(t, out.String(), "Error writing results")
}

func TestResolveScanOptions(t *testing.T) {
	cfg := &config.Config{Report: config.Report{Path: "cfg.xlsx", Sheet: "Cfg"}}
	creds := config.Credentials{Token: "env-token", Repo: "env/repo"}

	opts := resolveScanOptions(RunOptionsScan{}, cfg, creds)
	assert.Equal(t, RunOptionsScan{Token: "env-token", Repo: "env/repo", OutputPath: "cfg.xlsx", Sheet: "Cfg"}, opts)

	opts = resolveScanOptions(RunOptionsScan{Repo: "flag/repo", OutputPath: "flag.xlsx"}, cfg, creds)
	assert.Equal(t, "flag/repo", opts.Repo)
	assert.Equal(t, "flag.xlsx", opts.OutputPath)

	opts = resolveScanOptions(RunOptionsScan{LocalPath: "."}, nil, creds)
	assert.Empty(t, opts.Repo)
}
