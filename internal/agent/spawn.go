package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmr-tortoise/agentree/internal/config"
	"github.com/mmr-tortoise/agentree/internal/execx"
	"github.com/mmr-tortoise/agentree/internal/model"
)

// Delimiters the subagent is instructed to wrap its final payload in.
const (
	ResultStartMarker = "---SUBAGENT-RESULT-START---"
	ResultEndMarker   = "---SUBAGENT-RESULT-END---"
)

// Spawner launches subagent processes and persists their transcripts.
type Spawner struct {
	runner execx.CommandRunner
	cfg    *config.Config

	// now and newID are swappable for deterministic tests.
	now   func() time.Time
	newID func() string
}

// NewSpawner creates a Spawner using the given runner and configuration.
func NewSpawner(runner execx.CommandRunner, cfg *config.Config) *Spawner {
	return &Spawner{
		runner: runner,
		cfg:    cfg,
		now:    time.Now,
		newID:  shortID,
	}
}

// shortID returns an 8-hex-character unique invocation ID.
func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Spawn runs one subagent with isolated context.
//
// The skill's SKILL.md is resolved and folded into a focused prompt along
// with the task; the prompt is fed to the subagent binary on stdin. The
// invocation is bounded by the configured timeout, and the full
// transcript (header, prompt, stdout, stderr, exit code, duration) is
// written verbatim to a timestamped log file under the repository's
// artifact directory.
//
// Spawn never returns an error: every outcome, including precondition
// failures like a missing skill, is reported through the SpawnResult so
// callers have a log path and error text to surface.
func (s *Spawner) Spawn(ctx context.Context, repoRoot, skill, task string, yolo bool) model.SpawnResult {
	id := s.newID()
	timestamp := s.now().Format("20060102-150405")

	logDir := filepath.Join(repoRoot, s.cfg.Agent.LogDir)
	logFile := filepath.Join(logDir, fmt.Sprintf("%s-%s-%s.log", skill, timestamp, id))

	result := model.SpawnResult{LogFile: logFile, ID: id}

	// Resolve skill instructions before touching the binary: an unknown
	// skill must never invoke the subagent.
	candidates := SkillCandidates(repoRoot, skill, s.cfg.Skills.Dirs)
	instructions := ""
	for _, candidate := range candidates {
		if instructions = LoadInstructions(candidate); instructions != "" {
			break
		}
	}
	if instructions == "" {
		result.Error = fmt.Sprintf("skill %q not found (checked: %s)", skill, strings.Join(candidates, ", "))
		return result
	}

	prompt := composePrompt(skill, task, instructions, id)

	binary, err := s.findBinary()
	if err != nil {
		result.Error = fmt.Sprintf("%s CLI not found: install it and ensure it is on your PATH", s.cfg.Agent.Binary)
		return result
	}

	args := []string{}
	if yolo {
		args = append(args, "--yolo")
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		result.Error = fmt.Sprintf("create log directory: %v", err)
		return result
	}

	log, err := os.Create(logFile)
	if err != nil {
		result.Error = fmt.Sprintf("create log file: %v", err)
		return result
	}
	defer func() { _ = log.Close() }()

	fmt.Fprintf(log, "=== SUBAGENT EXECUTION LOG ===\n")
	fmt.Fprintf(log, "Skill: %s\n", skill)
	fmt.Fprintf(log, "ID: %s\n", id)
	fmt.Fprintf(log, "Timestamp: %s\n", timestamp)
	fmt.Fprintf(log, "Task: %s\n\n", task)
	fmt.Fprintf(log, "=== PROMPT ===\n%s\n\n=== EXECUTION ===\n", prompt)

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout())
	defer cancel()

	start := s.now()
	// The binary path is fully resolved, so the subagent is always
	// invoked directly — never through a platform shell.
	stdout, stderr, runErr := s.runner.RunDirect(runCtx, repoRoot, strings.NewReader(prompt), binary, args...)
	result.Duration = s.now().Sub(start)
	result.DurationSeconds = result.Duration.Seconds()

	fmt.Fprintf(log, "\n=== STDOUT ===\n%s", stdout)
	fmt.Fprintf(log, "\n=== STDERR ===\n%s", stderr)

	if runCtx.Err() == context.DeadlineExceeded {
		fmt.Fprintf(log, "\n=== TIMED OUT AFTER %.0fs ===\n", result.Duration.Seconds())
		result.Error = fmt.Sprintf("subagent timed out after %.0fs", result.Duration.Seconds())
		return result
	}

	fmt.Fprintf(log, "\n=== EXIT CODE: %d ===\n", exitCode(runErr))
	fmt.Fprintf(log, "=== DURATION: %.2fs ===\n", result.Duration.Seconds())

	if runErr != nil {
		result.Error = strings.TrimSpace(string(stderr))
		if result.Error == "" {
			result.Error = runErr.Error()
		}
		return result
	}

	result.Success = true
	result.Output = ExtractResult(string(stdout))
	return result
}

// findBinary locates the subagent executable: first on PATH, then — on
// Windows — the npm global shim directory, which is commonly missing
// from PATH.
func (s *Spawner) findBinary() (string, error) {
	name := s.cfg.Agent.Binary
	if path, err := s.runner.LookPath(name); err == nil {
		return path, nil
	}

	if runtime.GOOS == "windows" {
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			shim := filepath.Join(appdata, "npm", name+".cmd")
			if _, err := os.Stat(shim); err == nil {
				return shim, nil
			}
		}
	}
	return "", fmt.Errorf("%s not found", name)
}

// composePrompt builds the isolated-context instruction payload.
func composePrompt(skill, task, instructions, id string) string {
	return fmt.Sprintf(`You are a specialized subagent focused on: %s

IMPORTANT: You have ISOLATED CONTEXT. Do not assume knowledge from other conversations.

Task:
%s

Skill Instructions:
%s

Requirements:
1. Follow the skill instructions exactly
2. Complete the task fully
3. Output ONLY the final result at the end
4. Do not include meta-commentary or thinking process in final output
5. Write any artifacts to artifacts/superpowers/subagent-%s/

When complete, output:
%s
[Your final result here]
%s
`, skill, task, instructions, id, ResultStartMarker, ResultEndMarker)
}

// ExtractResult pulls the subagent's final payload from between the
// result delimiter markers. When the markers are absent the full output
// is returned untouched.
func ExtractResult(output string) string {
	_, after, found := strings.Cut(output, ResultStartMarker)
	if !found {
		return output
	}
	payload, _, _ := strings.Cut(after, ResultEndMarker)
	return strings.TrimSpace(payload)
}

// exitCode extracts a process exit code from a command error.
// Returns 0 for nil and -1 when the process never ran or was killed.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
