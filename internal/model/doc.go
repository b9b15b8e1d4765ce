// Package model defines the domain types and value objects for the
// agentree CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (Layout, SpawnResult, etc.) are transient representations
// derived from the filesystem at invocation time — there are no persistent
// state files.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
