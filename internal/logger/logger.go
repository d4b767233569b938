package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/credscan/internal/config"
)

// NewLogger creates a new hclog.Logger instance based on the YAML configuration and the provided name.
func NewLogger(cfg *config.Config, name string) hclog.Logger {
	return newLogger(cfg, name, os.Stdout, os.Getenv)
}

func newLogger(cfg *config.Config, name string, output io.Writer, lookup config.LookupFunc) hclog.Logger {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		DisableTime:     config.BoolValue(cfg.Logger.DisableTime, true),
		JSONFormat:      config.BoolValue(cfg.Logger.JSONFormat, false),
		IncludeLocation: config.BoolValue(cfg.Logger.IncludeLocation, false),
		Output:          output,
		Level:           determineLogLevel(cfg, lookup),
	})
}

// determineLogLevel returns a log level determined first by an environment variable, and if not set, by the provided configuration.
// If neither configuration nor environment variable specifies a log level, it defaults to INFO.
func determineLogLevel(cfg *config.Config, lookup config.LookupFunc) hclog.Level {
	if logLevelEnv := lookup(config.EnvLogLevel); logLevelEnv != "" {
		return parseLogLevel(strings.ToUpper(logLevelEnv))
	}
	return parseLogLevel(strings.ToUpper(cfg.Logger.Level))
}

// parseLogLevel converts a string level to hclog.Level.
func parseLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "", "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		hclog.New(&hclog.LoggerOptions{
			Level:       hclog.Warn,
			DisableTime: true,
			Output:      os.Stdout,
		}).Warn("Unrecognized log level, defaulting to INFO", "providedLevel", levelStr)
		return hclog.Info
	}
}
