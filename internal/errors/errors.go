// Package errors defines the error types that decide the process exit code.
package errors

import (
	"fmt"
)

// Exit codes returned by the scan command.
const (
	ExitOK           = 0
	ExitPrecondition = 1
	ExitFailure      = 2
)

// CommandError is returned by a command's RunE and carries the process exit code.
type CommandError struct {
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError wraps err with an exit code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{ExitCode: code, Err: err}
}

// ConfigError reports a mandatory setting that is missing or invalid.
type ConfigError struct {
	Name string
	Hint string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s environment variable not set", e.Name)
}

// NewConfigError creates a ConfigError for the named setting.
func NewConfigError(name, hint string) error {
	return &ConfigError{Name: name, Hint: hint}
}
