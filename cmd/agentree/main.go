// Package main is the entry point for the agentree CLI.
//
// This binary provides automation helpers for an agent-orchestration
// workflow: Git worktree management with layout auto-detection, isolated
// subagent invocations of an external agent CLI, and repo-relative
// artifact and activation-log writing. It delegates all functionality to
// the internal/cli package, which defines cobra commands.
//
// Build-time variables (version, commit, date) are injected via ldflags
// during the release process. During development, they default to "dev",
// "none", and "unknown" respectively.
package main

import (
	"github.com/mmr-tortoise/agentree/internal/cli"
)

// version, commit, and date are set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Inject build-time version info into the CLI package. This keeps
	// the build system decoupled from the CLI framework.
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
