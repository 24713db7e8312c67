package errors

import (
	stderrors "errors"
	"fmt"
)

// Exit codes returned by the CLI.
const (
	ExitInvalidUsage = 1
	ExitRunFailed    = 2
	ExitCancelled    = 130
)

var (
	// ErrUserCancelled unwinds a whole remediation session, not just the current issue.
	ErrUserCancelled = stderrors.New("remediation cancelled by user")
	// ErrSessionActive is returned when a second session is started while one is running.
	ErrSessionActive = stderrors.New("a remediation session is already running")
)

// ConfigError reports a missing or invalid mandatory setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s is not set", e.Field)
}

// NewConfigError creates a ConfigError for a setting that is not set.
func NewConfigError(field string) error {
	return &ConfigError{Field: field}
}

// NetworkError wraps a transport or decoding failure while talking to the quality server.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NewNetworkError creates a NetworkError for the given operation.
func NewNetworkError(op string, err error) error {
	return &NetworkError{Op: op, Err: err}
}

// FileNotFoundError marks a finding whose component could not be mapped to a workspace file.
type FileNotFoundError struct {
	ComponentRef string
	Path         string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file for component %q not found at %q", e.ComponentRef, e.Path)
}

// AgentUnavailableError is raised when the fixing agent cannot be reached.
type AgentUnavailableError struct {
	Agent string
	Err   error
}

func (e *AgentUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fixing agent %q is not available", e.Agent)
	}
	return fmt.Sprintf("fixing agent %q is not available: %v", e.Agent, e.Err)
}

func (e *AgentUnavailableError) Unwrap() error { return e.Err }

// GitOperationError wraps a failed branch, commit or push operation.
type GitOperationError struct {
	Op  string
	Err error
}

func (e *GitOperationError) Error() string {
	return fmt.Sprintf("git %s failed: %v", e.Op, e.Err)
}

func (e *GitOperationError) Unwrap() error { return e.Err }

// NewGitOperationError creates a GitOperationError for the given operation.
func NewGitOperationError(op string, err error) error {
	return &GitOperationError{Op: op, Err: err}
}

// UnparsableRemoteError is returned when a remote URL does not identify a GitHub repository.
type UnparsableRemoteError struct {
	URL string
}

func (e *UnparsableRemoteError) Error() string {
	return fmt.Sprintf("unable to derive owner/repository from remote %q", e.URL)
}

// CommandError is returned by CLI commands and carries the process exit code.
type CommandError struct {
	ExitCode    int
	CommonError string
	Err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

func (e *CommandError) Unwrap() error { return e.Err }

// NewCommandError creates a new CommandError with the given exit code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Err:         err,
	}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if stderrors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	if stderrors.Is(err, ErrUserCancelled) {
		return ExitCancelled
	}
	var cfgErr *ConfigError
	if stderrors.As(err, &cfgErr) {
		return ExitInvalidUsage
	}
	return ExitRunFailed
}

// IsTolerated reports whether err only affects a single issue or degrades the run
// instead of aborting it.
func IsTolerated(err error) bool {
	var notFound *FileNotFoundError
	var unavailable *AgentUnavailableError
	return stderrors.As(err, &notFound) || stderrors.As(err, &unavailable)
}
