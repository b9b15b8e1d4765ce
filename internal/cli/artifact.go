// Package cli — artifact.go implements the "agentree artifact" command.
//
// The command reads content from stdin and writes it to a repo-relative
// path, creating parent directories as needed. It prints the absolute
// path written so callers can reference the artifact.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/agentree/internal/artifact"
	"github.com/mmr-tortoise/agentree/internal/model"
)

// artifactFlags holds the flag values for the artifact command.
type artifactFlags struct {
	path string // --path: repo-relative destination
}

// NewArtifactCommand creates the "artifact" cobra command.
func NewArtifactCommand() *cobra.Command {
	flags := &artifactFlags{}

	cmd := &cobra.Command{
		Use:   "artifact --path REL_PATH",
		Short: "Write stdin to a repo-relative artifact file",
		Long: `Write content from stdin to a repo-relative path.

The repository root is the nearest ancestor directory containing .agent/
or .git/. Parent directories are created as needed and the absolute path
written is printed on success.

Example:
  echo "# Brainstorm" | agentree artifact --path artifacts/superpowers/brainstorm.md`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifact(flags)
		},
	}

	cmd.Flags().StringVar(&flags.path, "path", "", "Repo-relative path to write, e.g. artifacts/superpowers/brainstorm.md")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

// runArtifact writes stdin to the resolved artifact path.
func runArtifact(flags *artifactFlags) error {
	cwd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	repoRoot := artifact.FindRepoRoot(cwd)
	VerboseLog("Repository root: %s", repoRoot)

	outPath, err := artifact.Write(repoRoot, flags.path, os.Stdin)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to write artifact", err)
	}

	fmt.Println(outPath)
	return nil
}
