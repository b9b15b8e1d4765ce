// Package cli — create.go implements the "agentree create" command.
//
// The create command is the primary worktree operation. It resolves the
// repository's worktree layout, creates a Git worktree on a new branch,
// keeps nested worktree bases out of version control, and optionally
// bootstraps the new worktree's environment and verifies its baseline.
//
// Orchestration steps:
//  1. Resolve the repository root
//  2. Sanitize the branch name and resolve the target path
//     (explicit --location override, or layout auto-detection)
//  3. For an auto-detected nested layout: ensure the base directory is
//     git-ignored, committing the .gitignore change best-effort
//  4. Run `git worktree add <path> -b <branch>` (fatal on failure)
//  5. Run the environment bootstrapper (unless --skip-setup)
//  6. Run baseline verification (unless --skip-verify)
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/agentree/internal/bootstrap"
	"github.com/mmr-tortoise/agentree/internal/execx"
	"github.com/mmr-tortoise/agentree/internal/model"
	"github.com/mmr-tortoise/agentree/internal/worktree"
)

// createFlags holds the flag values for the create command.
type createFlags struct {
	location   string // --location: explicit worktree base directory
	skipSetup  bool   // --skip-setup: skip dependency installation
	skipVerify bool   // --skip-verify: skip baseline test run
}

// NewCreateCommand creates the "create" cobra command.
func NewCreateCommand() *cobra.Command {
	flags := &createFlags{}

	cmd := &cobra.Command{
		Use:   "create <branch>",
		Short: "Create a worktree on a new branch with layout auto-detection",
		Long: `Create a Git worktree on a new branch.

The target directory is resolved from the repository's worktree layout:
a parent container directory (sibling pattern) or a .worktrees/ or
worktrees/ subdirectory (nested pattern). For the nested pattern the base
directory is added to .gitignore if git does not already ignore it.

After creation, project dependencies are installed based on detected
marker files (package.json, Cargo.toml, requirements.txt, pyproject.toml,
go.mod) and the project's test suite is run once to confirm a clean
baseline. Both steps are individually skippable.

Examples:
  agentree create feature-auth
  agentree create feature/api --location .worktrees
  agentree create demo --skip-setup --skip-verify`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.location, "location", "", "Directory to create the worktree in (default: auto-detect)")
	cmd.Flags().BoolVar(&flags.skipSetup, "skip-setup", false, "Skip project setup (npm install, etc.)")
	cmd.Flags().BoolVar(&flags.skipVerify, "skip-verify", false, "Skip baseline verification")

	return cmd
}

// runCreate is the main orchestration function for the create command.
func runCreate(ctx context.Context, branch string, flags *createFlags) error {
	runner := execx.NewRunner()
	wm := worktree.NewManager(runner)

	cwd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	root, err := wm.RepoRoot(ctx, cwd)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "not inside a Git repository", err)
	}
	VerboseLog("Repository root: %s", root)

	safe := worktree.SanitizeBranch(branch)
	target := resolveTarget(ctx, wm, root, safe, flags.location)

	fmt.Printf("\nCreating worktree at %s for branch %q...\n", target, branch)

	if _, statErr := os.Stat(target); statErr == nil {
		fmt.Printf("WARNING: Directory already exists: %s\n", target)
		fmt.Println("Git worktree add may fail. Consider removing it first.")
	}

	if addErr := wm.Add(ctx, root, branch, target); addErr != nil {
		fmt.Println("Failed to create worktree. The branch might already exist.")
		fmt.Printf("Try: git worktree add %s %s\n", target, branch)
		return model.WrapCLIError(model.ExitGeneralError, "failed to create worktree", addErr)
	}

	b := bootstrap.New(runner, os.Stdout)
	if !flags.skipSetup {
		b.Setup(ctx, target)
	}
	if !flags.skipVerify {
		b.Verify(ctx, target)
	}

	banner := strings.Repeat("=", 60)
	fmt.Printf("\n%s\n", banner)
	fmt.Printf("SUCCESS: Worktree ready at %s\n", target)
	fmt.Printf("To use it: cd %s\n", target)
	fmt.Println(banner)
	return nil
}

// resolveTarget computes the worktree target directory.
//
// An explicit location always resolves nested under the repository root
// and bypasses the gitignore guard — the user asked for that directory
// and may well want it tracked. Auto-detection follows the layout
// classifier; nested bases additionally get the gitignore treatment.
func resolveTarget(ctx context.Context, wm *worktree.Manager, root, safeBranch, location string) string {
	if location != "" {
		return filepath.Join(root, location, safeBranch)
	}

	layout := worktree.DetectLayout(root)
	if layout.Pattern == model.PatternSibling {
		fmt.Printf("Detected worktree container: %s\n", layout.Base)
		fmt.Println("Using sibling pattern.")
		return filepath.Join(layout.Base, safeBranch)
	}

	ensureBaseIgnored(ctx, wm, root, layout.Base)
	fmt.Printf("Using nested pattern in %s/\n", layout.Base)
	return filepath.Join(root, layout.Base, safeBranch)
}

// ensureBaseIgnored keeps a nested worktree base out of version control.
// The .gitignore append is surfaced as a warning if it fails, and the
// follow-up commit is strictly best-effort.
func ensureBaseIgnored(ctx context.Context, wm *worktree.Manager, root, base string) {
	if wm.IsIgnored(ctx, root, base) {
		return
	}
	fmt.Printf("Directory %q is NOT ignored by git.\n", base)
	fmt.Printf("Adding %q to .gitignore...\n", base+"/")

	added, err := worktree.AppendIgnoreRule(root, base)
	if err != nil {
		fmt.Printf("Warning: could not update .gitignore: %v\n", err)
		return
	}
	if !added {
		return
	}

	if err := wm.StageAndCommit(ctx, root, ".gitignore", worktree.IgnoreCommitMessage(base)); err != nil {
		fmt.Println("Warning: Could not commit .gitignore change. Please commit manually.")
		return
	}
	fmt.Println("Committed .gitignore update.")
}
