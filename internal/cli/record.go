// Package cli — record.go implements the "agentree record" command.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/agentree/internal/activation"
	"github.com/mmr-tortoise/agentree/internal/model"
)

// recordFlags holds the flag values for the record command.
type recordFlags struct {
	skill string // --skill: skill name being recorded
	runID string // --run-id: optional correlation id
}

// NewRecordCommand creates the "record" cobra command.
func NewRecordCommand() *cobra.Command {
	flags := &recordFlags{}

	cmd := &cobra.Command{
		Use:   "record --skill NAME",
		Short: "Append a skill activation to the activation log",
		Long: `Append a timestamped skill-activation line to the activation log.

The log lives at ` + activation.LogPath + ` under the repository root
(the nearest ancestor containing .agent/, .git/, or pyproject.toml).
Each line records a UTC timestamp, the skill name, and an optional run id.

Example:
  agentree record --skill tdd --run-id run-42`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(flags)
		},
	}

	cmd.Flags().StringVar(&flags.skill, "skill", "", "Skill name to record")
	cmd.Flags().StringVar(&flags.runID, "run-id", "", "Run identifier for correlation")
	_ = cmd.MarkFlagRequired("skill")

	return cmd
}

// runRecord appends the activation line.
func runRecord(flags *recordFlags) error {
	cwd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	repoRoot := activation.FindRepoRoot(cwd)
	VerboseLog("Repository root: %s", repoRoot)

	if err := activation.Record(repoRoot, flags.skill, flags.runID); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to record activation", err)
	}
	return nil
}
