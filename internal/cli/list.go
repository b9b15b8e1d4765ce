// Package cli — list.go implements the "agentree list" command.
//
// The listing is a verbatim passthrough of `git worktree list` run at the
// repository root: git's own formatting is the contract, agentree adds
// nothing on top.
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

// NewListCommand creates the "list" cobra command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all worktrees",
		Long: `List all Git worktrees of the current repository.

The output is git's own "git worktree list" listing, printed verbatim.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context())
		},
	}
}

// runList resolves the repository root and prints the worktree listing.
func runList(ctx context.Context) error {
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

	output, err := wm.ListOutput(ctx, root)
	if err != nil {
		return err
	}

	fmt.Print(output)
	return nil
}
