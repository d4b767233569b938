package scan

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/credscan/internal/config"
	cerrors "github.com/scan-io-git/credscan/internal/errors"
	"github.com/scan-io-git/credscan/internal/findings"
	"github.com/scan-io-git/credscan/internal/provider"
	"github.com/scan-io-git/credscan/internal/report"
	"github.com/scan-io-git/credscan/internal/walker"
)

// RunOptionsScan holds the explicit inputs of one scan.
type RunOptionsScan struct {
	Token      string
	Repo       string
	Ref        string
	LocalPath  string
	OutputPath string
	Sheet      string
	SARIFPath  string
}

// ConnectFunc opens the provider for the scan target and returns it with a
// display name.
type ConnectFunc func(ctx context.Context, opts RunOptionsScan) (provider.Provider, string, error)

// Global variables for configuration and command arguments
var (
	AppConfig   *config.Config
	logger      hclog.Logger
	scanOptions RunOptionsScan

	exampleScanUsage = `  # Scan the repository named in GITHUB_REPO with the token in GITHUB_TOKEN
  credscan scan

  # Scan a specific repository and branch, writing the report elsewhere
  credscan scan --repo octo/hello --ref develop -o reports/hello.xlsx

  # Also emit a SARIF report
  credscan scan --repo octo/hello --sarif reports/hello.sarif

  # Scan a local git working tree, initialized submodules included
  credscan scan --local /path/to/checkout`
)

// ScanCmd represents the command for scanning a repository.
var ScanCmd = &cobra.Command{
	Use:                   "scan [--repo OWNER/NAME] [--ref REF] [--output/-o PATH] [--sheet NAME] [--sarif PATH] [--local PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Scan a repository and its submodules for hardcoded credentials",
	Long: `Scan walks every file of a repository, following submodules, and reports lines
that assign a literal value to a password, passwd, pwd, secret, token or key.

The token and repository are read from GITHUB_TOKEN and GITHUB_REPO (a .env file
in the working directory is loaded first). Findings are written to a spreadsheet.`,
	RunE: runScanCommand,
}

// Init initializes the global configuration and logger of the command.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return cerrors.NewCommandError(fmt.Errorf("unexpected arguments: %v", args), cerrors.ExitPrecondition)
	}

	opts := resolveScanOptions(scanOptions, AppConfig, config.CredentialsFromEnv(os.Getenv))
	d := NewDriver(AppConfig, logger, cmd.OutOrStdout())
	return d.Run(cmd.Context(), opts)
}

// Driver orchestrates one scan: connect, walk, write.
type Driver struct {
	cfg     *config.Config
	logger  hclog.Logger
	out     io.Writer
	connect ConnectFunc
}

// NewDriver creates a Driver that connects to GitHub or a local working tree.
func NewDriver(cfg *config.Config, l hclog.Logger, out io.Writer) *Driver {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if l == nil {
		l = hclog.NewNullLogger()
	}
	d := &Driver{cfg: cfg, logger: l, out: out}
	d.connect = d.defaultConnect
	return d
}

// Run executes the scan. Missing configuration and connection failures are
// reported to the user before returning; the report is written only after the
// whole walk has completed.
func (d *Driver) Run(ctx context.Context, opts RunOptionsScan) error {
	if err := validateScanOptions(&opts); err != nil {
		d.reportConfigError(err)
		return cerrors.NewCommandError(err, cerrors.ExitPrecondition)
	}

	p, name, err := d.connect(ctx, opts)
	if err != nil {
		d.printf("Error connecting to GitHub or accessing the repository: %v\n", err)
		if opts.LocalPath == "" {
			d.printf("Please check your %s and %s environment variables.\n", config.EnvToken, config.EnvRepo)
		}
		return cerrors.NewCommandError(fmt.Errorf("failed to connect: %w", err), cerrors.ExitPrecondition)
	}
	d.printf("Scanning repository: %s\n", name)

	scanID := uuid.New().String()
	l := d.logger.With("scan_id", scanID)

	w := walker.New(l.Named("walker"))
	results, err := w.Walk(ctx, p)
	stats := w.Stats()
	l.Info("walk finished",
		"repository", name,
		"files", stats.FilesScanned,
		"directories", stats.DirectoriesListed,
		"submodules", stats.SubmodulesWalked,
		"errors", stats.Errors,
		"findings", len(results))
	if err != nil {
		l.Error("scan failed", "error", err)
		return cerrors.NewCommandError(fmt.Errorf("scan failed: %w", err), cerrors.ExitFailure)
	}

	if len(results) == 0 {
		d.printf("No potential hardcoded passwords found.\n")
		return nil
	}
	return d.writeReports(l, opts, scanID, results)
}

func (d *Driver) writeReports(l hclog.Logger, opts RunOptionsScan, scanID string, results []findings.Finding) error {
	path, err := report.NewXLSXWriter(opts.OutputPath, opts.Sheet).Write(results)
	if err != nil {
		l.Error("failed to write report", "error", err)
		d.printf("Error writing results: %v\n", err)
		return cerrors.NewCommandError(err, cerrors.ExitFailure)
	}
	d.printf("Results written to %s\n", path)

	if opts.SARIFPath != "" {
		sarifPath, err := (&report.SARIFWriter{Path: opts.SARIFPath, ScanID: scanID}).Write(results)
		if err != nil {
			l.Error("failed to write SARIF report", "error", err)
			d.printf("Error writing SARIF results: %v\n", err)
			return cerrors.NewCommandError(err, cerrors.ExitFailure)
		}
		d.printf("SARIF results written to %s\n", sarifPath)
	}
	return nil
}

func (d *Driver) printf(format string, a ...interface{}) {
	if d.out == nil {
		return
	}
	fmt.Fprintf(d.out, format, a...)
}

func init() {
	ScanCmd.Flags().StringVar(&scanOptions.Repo, "repo", "", "Repository to scan as OWNER/NAME or URL (default: $GITHUB_REPO).")
	ScanCmd.Flags().StringVar(&scanOptions.Ref, "ref", "", "Branch, tag or commit to scan (default: the repository's default branch).")
	ScanCmd.Flags().StringVarP(&scanOptions.OutputPath, "output", "o", "", "Path of the spreadsheet report (default: "+report.DefaultPath+").")
	ScanCmd.Flags().StringVar(&scanOptions.Sheet, "sheet", "", "Name of the report sheet (default: "+report.DefaultSheet+").")
	ScanCmd.Flags().StringVar(&scanOptions.SARIFPath, "sarif", "", "Also write a SARIF report to this path.")
	ScanCmd.Flags().StringVar(&scanOptions.LocalPath, "local", "", "Scan a local git working tree instead of GitHub.")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
}
