// Package cli — remove.go implements the "agentree remove" command.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/agentree/internal/execx"
	"github.com/mmr-tortoise/agentree/internal/model"
	"github.com/mmr-tortoise/agentree/internal/worktree"
)

// removeFlags holds the flag values for the remove command.
type removeFlags struct {
	force bool // --force: remove even with uncommitted changes
}

// NewRemoveCommand creates the "remove" cobra command.
func NewRemoveCommand() *cobra.Command {
	flags := &removeFlags{}

	cmd := &cobra.Command{
		Use:   "remove <path>",
		Short: "Remove a worktree",
		Long: `Remove the Git worktree at the given path.

Without --force, git refuses to remove worktrees that contain untracked
files or uncommitted changes.

Examples:
  agentree remove .worktrees/feature-auth
  agentree remove .worktrees/feature-auth --force`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "Force removal")

	return cmd
}

// runRemove resolves the repository root and removes the worktree.
func runRemove(ctx context.Context, path string, flags *removeFlags) error {
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

	if err := wm.Remove(ctx, root, path, flags.force); err != nil {
		fmt.Println("Failed to remove worktree. Try with --force if needed.")
		return model.WrapCLIError(model.ExitGeneralError, "failed to remove worktree", err)
	}

	fmt.Printf("Removed worktree: %s\n", path)
	return nil
}
