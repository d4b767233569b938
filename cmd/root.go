package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/credscan/cmd/scan"
	"github.com/scan-io-git/credscan/cmd/version"
	"github.com/scan-io-git/credscan/internal/config"
	cerrors "github.com/scan-io-git/credscan/internal/errors"
	"github.com/scan-io-git/credscan/internal/logger"
)

var (
	cfgFile   string
	AppConfig *config.Config
	Logger    hclog.Logger
	rootCmd   = &cobra.Command{
		Use:                   "credscan [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Credscan finds hardcoded credentials in GitHub repositories.",
		Long: `Credscan walks the file tree of a repository, nested submodules included,
	and flags lines that look like hardcoded credentials.
	`,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CREDSCAN_CONFIG or config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(scan.ScanCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var cmdErr *cerrors.CommandError
		if errors.As(err, &cmdErr) {
			return cmdErr.ExitCode
		}
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return 1
	}
	return 0
}

func initConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Printf("failed to load .env file - %v \n", err)
	}

	if cfgFile == "" {
		cfgFile = os.Getenv(config.EnvConfig)
	}

	var err error
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Printf("initializing config file function is crashed - %v \n", err)
		return cerrors.NewCommandError(err, cerrors.ExitPrecondition)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Println(err)
		return cerrors.NewCommandError(err, cerrors.ExitPrecondition)
	}

	Logger = logger.NewLogger(AppConfig, "credscan")
	scan.Init(AppConfig, Logger)
	return nil
}
