// Package cli — spawn.go implements the "agentree spawn" command.
//
// Spawn launches one isolated subagent invocation of the configured
// external CLI tool, giving it a focused instruction payload composed
// from a skill's SKILL.md and the task text. The full execution
// transcript is persisted to a timestamped log file regardless of
// outcome.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/agentree/internal/agent"
	"github.com/mmr-tortoise/agentree/internal/config"
	"github.com/mmr-tortoise/agentree/internal/execx"
	"github.com/mmr-tortoise/agentree/internal/model"
)

// spawnFlags holds the flag values for the spawn command.
type spawnFlags struct {
	skill        string // --skill: skill name resolved to a SKILL.md
	task         string // --task: task description for the subagent
	noYolo       bool   // --no-yolo: disable unattended auto-approval
	outputFormat string // --output-format: text or json
}

// NewSpawnCommand creates the "spawn" cobra command.
func NewSpawnCommand() *cobra.Command {
	flags := &spawnFlags{}

	cmd := &cobra.Command{
		Use:   "spawn --skill NAME --task TEXT",
		Short: "Spawn an isolated subagent for focused task execution",
		Long: `Spawn an isolated subagent invocation of the external agent CLI.

The subagent receives a composed prompt (skill instructions plus task) on
stdin, runs with a bounded timeout, and is expected to emit its final
payload between literal result delimiter markers. The complete transcript
is written to a timestamped log file under the repository's artifact
directory.

Examples:
  agentree spawn --skill tdd --task "Add input validation to the parser"
  agentree spawn --skill review --task "Review the diff on this branch" --output-format json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpawn(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.skill, "skill", "", "Skill to use (e.g. tdd, debug, review)")
	cmd.Flags().StringVar(&flags.task, "task", "", "Task description for the subagent")
	cmd.Flags().BoolVar(&flags.noYolo, "no-yolo", false, "Disable auto-approval (interactive mode)")
	cmd.Flags().StringVar(&flags.outputFormat, "output-format", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("skill")
	_ = cmd.MarkFlagRequired("task")

	return cmd
}

// runSpawn resolves the workflow repository root, spawns the subagent,
// and prints the result in the requested format.
func runSpawn(ctx context.Context, flags *spawnFlags) error {
	if flags.outputFormat != "text" && flags.outputFormat != "json" {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid output format %q: valid values are text, json", flags.outputFormat))
	}

	cwd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}
	repoRoot := agent.FindRepoRoot(cwd)
	VerboseLog("Workflow repository root: %s", repoRoot)

	cfg, err := config.Load(repoRoot)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to load configuration", err)
	}

	if flags.outputFormat == "text" {
		fmt.Printf("Spawning subagent: %s\n", flags.skill)
		fmt.Printf("Task: %s\n", truncate(flags.task, 80))
	}

	spawner := agent.NewSpawner(execx.NewRunner(), cfg)
	result := spawner.Spawn(ctx, repoRoot, flags.skill, flags.task, !flags.noYolo)

	if flags.outputFormat == "json" {
		data, marshalErr := json.MarshalIndent(result, "", "  ")
		if marshalErr != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to encode result", marshalErr)
		}
		fmt.Println(string(data))
		if !result.Success {
			return spawnError(result)
		}
		return nil
	}

	status := "completed"
	if !result.Success {
		status = "FAILED"
	}
	fmt.Printf("\nSubagent %s in %.1fs\n", status, result.Duration.Seconds())
	fmt.Printf("Full log: %s\n", result.LogFile)

	banner := strings.Repeat("=", 60)
	if result.Success {
		fmt.Printf("\n%s\nRESULT:\n%s\n", banner, banner)
		fmt.Println(result.Output)
		return nil
	}

	fmt.Printf("\n%s\nERROR:\n%s\n", banner, banner)
	fmt.Println(result.Error)
	return spawnError(result)
}

// spawnError maps a failed SpawnResult to a CLIError. The message is
// already printed, so the error carries only the exit code context.
func spawnError(result model.SpawnResult) error {
	code := model.ExitAgentError
	if strings.HasPrefix(result.Error, "skill ") && strings.Contains(result.Error, "not found") {
		code = model.ExitSkillNotFound
	}
	return model.NewCLIError(code, "subagent failed")
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
