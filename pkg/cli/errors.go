package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitOK      = 0 // every document valid
	ExitInvalid = 1 // at least one document failed validation
	ExitError   = 2 // usage, configuration, schema or I/O error
)

// ConfigError reports a bad flag or configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config error: " + e.Message
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError wraps a failure of a subcommand.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// InvalidError is returned when validation ran but found errors. It maps
// to ExitInvalid rather than ExitError.
type InvalidError struct {
	Documents int
	Invalid   int
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("%d of %d documents failed validation", e.Invalid, e.Documents)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var invalid *InvalidError
	if errors.As(err, &invalid) {
		return ExitInvalid
	}
	return ExitError
}
