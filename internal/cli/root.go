// Package cli implements the cobra-based commands for agentree.
//
// Each subcommand (create, list, remove, spawn, artifact, record) is
// defined in its own file within this package. This file defines the root
// command that serves as the parent for all subcommands and handles
// global flags and exit-code translation.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/agentree/internal/model"
)

// verbose enables detailed logging output for debugging.
// When true, additional information about operations is printed to stderr.
// Bound to the root command's persistent --verbose flag.
var verbose bool

// Version, Commit, and Date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself performs no action — invoked without a
// subcommand it prints help and fails, since every agentree operation is
// a subcommand.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "agentree",
		Short: "Git worktree and subagent automation for agent workflows",
		Long: `agentree automates the repetitive plumbing of an agent-orchestration
workflow: creating Git worktrees with auto-detected layout conventions,
spawning isolated subagent invocations of an external CLI tool, and
writing timestamped artifacts and activation logs to repo-relative paths.

Worktree layout is detected per repository: a parent directory named
*-worktrees (or *Worktrees) holds worktrees as siblings; otherwise they
nest inside the repository under .worktrees/.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically;
		// Execute formats them itself.
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		// Running the bare binary is always a usage error.
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return model.NewCLIError(model.ExitGeneralError, "a subcommand is required")
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewCreateCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewRemoveCommand())
	rootCmd.AddCommand(NewSpawnCommand())
	rootCmd.AddCommand(NewArtifactCommand())
	rootCmd.AddCommand(NewRecordCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// CLIError values carry their own exit codes; any other error exits
// with the general error code.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message to stderr.
func printError(message string, underlying error) {
	if underlying != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	}
}

// VerboseLog prints a message to stderr only when verbose mode is
// enabled. Used throughout the CLI for trace output that helps users
// understand what operations are being performed.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}
