package model

import (
	"fmt"
	"strings"
	"time"
)

// LayoutPattern identifies where a repository keeps its worktrees.
//
// Detection logic (see worktree.DetectLayout):
//   - Parent directory name ends with -worktrees/-Worktrees/Worktrees → PatternSibling
//   - Otherwise → PatternNested (inside the repo, under .worktrees/ or worktrees/)
type LayoutPattern string

const (
	// PatternSibling places worktrees beside the repository root, inside a
	// container directory whose name carries a worktrees suffix.
	// Example: ~/code/MyProject-worktrees/{main,feature-auth}
	PatternSibling LayoutPattern = "sibling"

	// PatternNested places worktrees inside the repository root, under a
	// conventionally named subdirectory (.worktrees/ or worktrees/).
	PatternNested LayoutPattern = "nested"
)

// String returns the string representation of LayoutPattern.
func (p LayoutPattern) String() string {
	return string(p)
}

// IsValid checks whether the LayoutPattern value is one of the
// predefined valid patterns.
func (p LayoutPattern) IsValid() bool {
	switch p {
	case PatternSibling, PatternNested:
		return true
	default:
		return false
	}
}

// ParseLayoutPattern converts a string to a LayoutPattern.
// Returns an error if the string does not match any valid pattern.
func ParseLayoutPattern(s string) (LayoutPattern, error) {
	pattern := LayoutPattern(strings.ToLower(s))
	if !pattern.IsValid() {
		return "", fmt.Errorf("invalid layout pattern: %q (valid: sibling, nested)", s)
	}
	return pattern, nil
}

// Layout describes the resolved worktree convention for one repository.
// It is computed from a single filesystem probe per command invocation
// and is never cached across invocations.
type Layout struct {
	// Pattern is the detected worktree placement convention.
	Pattern LayoutPattern

	// Base is the directory worktrees live in. For PatternSibling this is
	// the absolute path of the container directory; for PatternNested it
	// is the subdirectory name relative to the repository root
	// (".worktrees" or "worktrees"). The directory need not exist yet.
	Base string
}

// SpawnResult holds the outcome of a single subagent invocation.
// It mirrors the subagent log contract: every invocation produces a
// result (success or failure) plus a verbatim transcript on disk.
type SpawnResult struct {
	// Success is true when the subagent process exited with code 0.
	Success bool `json:"success"`

	// Output is the subagent's final payload, extracted from between the
	// result delimiter markers. Falls back to full stdout when the
	// subagent did not emit markers.
	Output string `json:"output"`

	// Error is the failure description: stderr for a non-zero exit,
	// a distinct message for timeouts, or a precondition failure such as
	// a missing skill. Empty on success.
	Error string `json:"error"`

	// LogFile is the path of the persisted execution transcript.
	LogFile string `json:"log_file"`

	// Duration is how long the subagent ran.
	Duration time.Duration `json:"-"`

	// DurationSeconds mirrors Duration for JSON output.
	DurationSeconds float64 `json:"duration_s"`

	// ID is the short unique identifier for this invocation, also
	// embedded in the log file name and the artifact directory hint.
	ID string `json:"subagent_id"`
}

// ExitCode defines the CLI exit codes. These codes allow scripts and CI
// systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitSkillNotFound indicates the requested skill has no SKILL.md in
	// any of the searched locations.
	ExitSkillNotFound ExitCode = 2

	// ExitAgentError indicates the subagent binary was missing, failed,
	// or timed out.
	ExitAgentError ExitCode = 3

	// ExitGitError indicates a Git operation (worktree add/remove) failed.
	ExitGitError ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
