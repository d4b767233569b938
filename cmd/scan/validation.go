package scan

import (
	"errors"
	"fmt"

	"github.com/scan-io-git/credscan/internal/config"
	cerrors "github.com/scan-io-git/credscan/internal/errors"
	"github.com/scan-io-git/credscan/internal/repoid"
)

// validateScanOptions validates the inputs of a scan before any network call.
func validateScanOptions(options *RunOptionsScan) error {
	if options.LocalPath != "" {
		if options.Repo != "" {
			return fmt.Errorf("you cannot use both a remote repository and the 'local' flag at the same time")
		}
		return validateSheet(options.Sheet)
	}

	if options.Token == "" {
		return cerrors.NewConfigError(config.EnvToken,
			"Please set the GITHUB_TOKEN environment variable with your GitHub personal access token.\n"+
				"You can create a personal access token here: https://github.com/settings/tokens")
	}
	if options.Repo == "" {
		return cerrors.NewConfigError(config.EnvRepo,
			"Please set the GITHUB_REPO environment variable with the name of the repository to scan (e.g., 'your_username/your_repo_name').")
	}
	if _, err := repoid.Parse(options.Repo); err != nil {
		return fmt.Errorf("invalid repository %q: %w", options.Repo, err)
	}
	return validateSheet(options.Sheet)
}

func validateSheet(sheet string) error {
	if err := config.ValidateSheetName(sheet); err != nil {
		return fmt.Errorf("invalid 'sheet' flag: %w", err)
	}
	return nil
}

// reportConfigError prints an actionable message for a failed precondition.
func (d *Driver) reportConfigError(err error) {
	var cfgErr *cerrors.ConfigError
	if errors.As(err, &cfgErr) {
		d.printf("Error: %s.\n", cfgErr.Error())
		d.printf("%s\n", cfgErr.Hint)
		return
	}
	d.printf("Error: %v\n", err)
}
