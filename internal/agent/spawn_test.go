package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/agentree/internal/config"
	"github.com/mmr-tortoise/agentree/internal/execx"
)

// setupSkillRepo creates a workflow repository root with one installed
// skill and returns its path.
func setupSkillRepo(t *testing.T, skill, instructions string) string {
	t.Helper()

	root := t.TempDir()
	skillDir := filepath.Join(root, ".agent", "skills", "superpowers-"+skill)
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(instructions), 0o644))
	return root
}

// newTestSpawner builds a Spawner over a MockRunner with a resolvable
// agent binary and deterministic clock/ID.
func newTestSpawner(mock *execx.MockRunner) *Spawner {
	s := NewSpawner(mock, config.Default())
	s.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	s.newID = func() string { return "cafe0123" }
	return s
}

// TestSpawnUnknownSkill verifies that a missing skill yields a failure
// result whose error mentions "not found" and that the subagent binary is
// never invoked.
func TestSpawnUnknownSkill(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".agent", "skills"), 0o755))

	mock := execx.NewMockRunner()
	mock.Paths["gemini"] = "/usr/bin/gemini"
	s := newTestSpawner(mock)

	result := s.Spawn(context.Background(), root, "nonexistent-skill", "Test task", true)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not found")
	assert.Empty(t, mock.Calls(), "the subagent binary must never be invoked")
	assert.NotEmpty(t, result.LogFile)
	assert.Equal(t, "cafe0123", result.ID)
}

// TestSpawnMissingBinary verifies the failure result when the agent CLI
// is not installed.
func TestSpawnMissingBinary(t *testing.T) {
	root := setupSkillRepo(t, "tdd", "# TDD\nRed, green, refactor.")

	mock := execx.NewMockRunner() // no Paths entry: LookPath fails
	s := newTestSpawner(mock)

	result := s.Spawn(context.Background(), root, "tdd", "Test task", true)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "gemini CLI not found")
	assert.Empty(t, mock.Calls())
}

// TestSpawnSuccess verifies the full happy path: direct invocation of the
// resolved binary with --yolo, the composed prompt on stdin, payload
// extraction, and the persisted transcript.
func TestSpawnSuccess(t *testing.T) {
	root := setupSkillRepo(t, "tdd", "# TDD\nRed, green, refactor.")

	mock := execx.NewMockRunner()
	mock.Paths["gemini"] = "/usr/bin/gemini"
	mock.AddPrefixMatch("/usr/bin/gemini", nil, execx.MockResponse{
		Stdout: []byte("thinking...\n" + ResultStartMarker + "\nAll tests pass.\n" + ResultEndMarker + "\n"),
	})
	s := newTestSpawner(mock)

	result := s.Spawn(context.Background(), root, "tdd", "Add input validation", true)

	require.True(t, result.Success, "unexpected error: %s", result.Error)
	assert.Equal(t, "All tests pass.", result.Output)
	assert.Empty(t, result.Error)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Direct, "subagent must be invoked directly, never shell-wrapped")
	assert.Equal(t, "/usr/bin/gemini", calls[0].Name)
	assert.Equal(t, []string{"--yolo"}, calls[0].Args)
	assert.Equal(t, root, calls[0].Dir)

	// The composed prompt carries the task, the skill instructions, the
	// artifact directory hint, and the delimiter contract.
	assert.Contains(t, calls[0].Stdin, "Add input validation")
	assert.Contains(t, calls[0].Stdin, "Red, green, refactor.")
	assert.Contains(t, calls[0].Stdin, "subagent-cafe0123")
	assert.Contains(t, calls[0].Stdin, ResultStartMarker)

	// The transcript is persisted verbatim.
	assert.Equal(t, filepath.Join(root, "artifacts", "superpowers", "subagents", "tdd-20260830-120000-cafe0123.log"), result.LogFile)
	logData, err := os.ReadFile(result.LogFile)
	require.NoError(t, err)
	log := string(logData)
	assert.Contains(t, log, "=== SUBAGENT EXECUTION LOG ===")
	assert.Contains(t, log, "Skill: tdd")
	assert.Contains(t, log, "=== PROMPT ===")
	assert.Contains(t, log, "=== STDOUT ===")
	assert.Contains(t, log, "=== EXIT CODE: 0 ===")
}

// TestSpawnNoYolo verifies that disabling auto-approval drops the flag.
func TestSpawnNoYolo(t *testing.T) {
	root := setupSkillRepo(t, "review", "Review carefully.")

	mock := execx.NewMockRunner()
	mock.Paths["gemini"] = "/usr/bin/gemini"
	s := newTestSpawner(mock)

	result := s.Spawn(context.Background(), root, "review", "Review the diff", false)

	require.True(t, result.Success)
	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Args)
}

// TestSpawnProcessFailure verifies that a failing subagent reports its
// stderr as the error.
func TestSpawnProcessFailure(t *testing.T) {
	root := setupSkillRepo(t, "debug", "Find the bug.")

	mock := execx.NewMockRunner()
	mock.Paths["gemini"] = "/usr/bin/gemini"
	mock.AddPrefixMatch("/usr/bin/gemini", nil, execx.MockResponse{
		Stderr: []byte("quota exceeded\n"),
		Err:    errors.New("exit status 1"),
	})
	s := newTestSpawner(mock)

	result := s.Spawn(context.Background(), root, "debug", "Fix it", true)

	assert.False(t, result.Success)
	assert.Equal(t, "quota exceeded", result.Error)
}

// TestSpawnTimeout verifies that exceeding the deadline is reported
// distinctly from other failures.
func TestSpawnTimeout(t *testing.T) {
	root := setupSkillRepo(t, "tdd", "Red, green, refactor.")

	mock := execx.NewMockRunner()
	mock.Paths["gemini"] = "/usr/bin/gemini"
	s := newTestSpawner(mock)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	result := s.Spawn(ctx, root, "tdd", "Too slow", true)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "timed out")
}

// TestExtractResult pins the delimiter extraction rules.
func TestExtractResult(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "payload between markers",
			output: "noise\n" + ResultStartMarker + "\nanswer\n" + ResultEndMarker + "\ntrailer",
			want:   "answer",
		},
		{
			name:   "missing markers returns full output",
			output: "raw output with no markers",
			want:   "raw output with no markers",
		},
		{
			name:   "missing end marker returns rest",
			output: ResultStartMarker + "\nunterminated answer\n",
			want:   "unterminated answer",
		},
		{
			name:   "empty payload",
			output: ResultStartMarker + ResultEndMarker,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractResult(tt.output))
		})
	}
}
