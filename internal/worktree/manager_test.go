package worktree

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/agentree/internal/execx"
	"github.com/mmr-tortoise/agentree/internal/model"
)

// setupTestRepo creates a temporary directory with an initialized Git
// repository containing a single commit. Worktree commands require at
// least one commit, because a worktree needs a branch to point to.
//
// It configures a repo-local user identity so `git commit` works in CI
// environments without a global Git configuration.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	runTestGit(t, dir, "init")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")

	err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test Repo\n"), 0o644)
	require.NoError(t, err, "failed to create initial file")

	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")

	return dir
}

// runTestGit runs a git command in the given directory and fails the test
// immediately on a non-zero exit.
func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

func newTestManager() *Manager {
	return NewManager(execx.NewRunner())
}

// TestRepoRoot verifies top-level resolution from the root itself and
// from a nested subdirectory.
func TestRepoRoot(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager()
	ctx := context.Background()

	sub := filepath.Join(repo, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	for _, start := range []string{repo, sub} {
		root, err := m.RepoRoot(ctx, start)
		require.NoError(t, err)

		// Resolve symlinks on both sides; macOS TMPDIR is symlinked.
		wantResolved, err := filepath.EvalSymlinks(repo)
		require.NoError(t, err)
		gotResolved, err := filepath.EvalSymlinks(root)
		require.NoError(t, err)
		assert.Equal(t, wantResolved, gotResolved)
	}
}

// TestRepoRootOutsideRepo verifies the error path for a directory that is
// not inside any repository, and that it carries the git exit code.
func TestRepoRootOutsideRepo(t *testing.T) {
	m := newTestManager()

	_, err := m.RepoRoot(context.Background(), t.TempDir())
	require.Error(t, err)

	cliErr, ok := err.(*model.CLIError)
	require.True(t, ok, "expected a CLIError, got %T", err)
	assert.Equal(t, model.ExitGitError, cliErr.Code)
}

// TestAdd verifies that Add creates a worktree on a new branch.
func TestAdd(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager()
	ctx := context.Background()

	worktreePath := filepath.Join(t.TempDir(), "feature-branch")
	require.NoError(t, m.Add(ctx, repo, "feature-branch", worktreePath))

	_, statErr := os.Stat(worktreePath)
	assert.NoError(t, statErr, "worktree directory should exist after Add")

	branch := runTestGit(t, worktreePath, "rev-parse", "--abbrev-ref", "HEAD")
	assert.Equal(t, "feature-branch\n", branch)
}

// TestAddExistingBranch verifies that Add fails when the branch already
// exists: the command always passes -b, and the caller is expected to
// surface the remediation hint.
func TestAddExistingBranch(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager()
	ctx := context.Background()

	runTestGit(t, repo, "branch", "taken")

	err := m.Add(ctx, repo, "taken", filepath.Join(t.TempDir(), "taken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worktree add")
}

// TestListOutput verifies the verbatim listing passthrough: the output is
// exactly what git printed, including the trailing newline.
func TestListOutput(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager()
	ctx := context.Background()

	worktreePath := filepath.Join(t.TempDir(), "listed")
	require.NoError(t, m.Add(ctx, repo, "listed", worktreePath))

	output, err := m.ListOutput(ctx, repo)
	require.NoError(t, err)

	want := runTestGit(t, repo, "worktree", "list")
	assert.Equal(t, want, output)
	assert.Contains(t, output, "listed")
}

// TestRemove verifies worktree removal, including the --force path for a
// dirty worktree.
func TestRemove(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager()
	ctx := context.Background()

	worktreePath := filepath.Join(t.TempDir(), "doomed")
	require.NoError(t, m.Add(ctx, repo, "doomed", worktreePath))

	require.NoError(t, m.Remove(ctx, repo, worktreePath, false))
	_, statErr := os.Stat(worktreePath)
	assert.True(t, os.IsNotExist(statErr), "worktree directory should be gone")
}

func TestRemoveDirtyNeedsForce(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager()
	ctx := context.Background()

	worktreePath := filepath.Join(t.TempDir(), "dirty")
	require.NoError(t, m.Add(ctx, repo, "dirty", worktreePath))

	// An untracked file makes the worktree dirty.
	require.NoError(t, os.WriteFile(filepath.Join(worktreePath, "scratch.txt"), []byte("wip"), 0o644))

	assert.Error(t, m.Remove(ctx, repo, worktreePath, false))
	assert.NoError(t, m.Remove(ctx, repo, worktreePath, true))
}

// TestIsIgnored verifies the check-ignore probe against a real .gitignore.
func TestIsIgnored(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager()
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(repo, ".gitignore"), []byte(".worktrees/\n"), 0o644))

	assert.True(t, m.IsIgnored(ctx, repo, ".worktrees"))
	assert.False(t, m.IsIgnored(ctx, repo, "src"))
}

// TestStageAndCommit verifies the single-file commit helper.
func TestStageAndCommit(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager()
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(repo, ".gitignore"), []byte(".worktrees/\n"), 0o644))
	require.NoError(t, m.StageAndCommit(ctx, repo, ".gitignore", "chore: add .worktrees/ to .gitignore"))

	log := runTestGit(t, repo, "log", "-1", "--format=%s")
	assert.Equal(t, "chore: add .worktrees/ to .gitignore\n", log)
}

// TestManagerCommandShape verifies, against a fake runner, the exact git
// argv issued for worktree creation (directory via -C, branch via -b).
func TestManagerCommandShape(t *testing.T) {
	mock := execx.NewMockRunner()
	m := NewManager(mock)

	require.NoError(t, m.Add(context.Background(), "/repo", "feature/auth", "/repo/.worktrees/feature-auth"))

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "git", calls[0].Name)
	assert.Equal(t, []string{"-C", "/repo", "worktree", "add", "/repo/.worktrees/feature-auth", "-b", "feature/auth"}, calls[0].Args)
}
