// Package worktree provides Git worktree management with automatic
// layout detection for the agentree CLI.
//
// All Git operations are performed via the git binary (through
// execx.CommandRunner), rather than using a Git library like go-git.
// This approach:
//   - Avoids CGO dependencies (libgit2)
//   - Uses the exact same Git behavior the user sees in their terminal
//   - Requires Git >= 2.15 (when worktree support matured)
//
// Layout detection classifies a repository as "sibling" (worktrees live
// beside the repo root in a *-worktrees container directory) or "nested"
// (worktrees live inside the repo under .worktrees/ or worktrees/).
// The classification is a pure function of current filesystem state.
package worktree
