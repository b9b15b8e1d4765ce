package worktree

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmr-tortoise/agentree/internal/execx"
	"github.com/mmr-tortoise/agentree/internal/model"
)

// Manager provides Git worktree operations by invoking the git CLI
// through an injected execx.CommandRunner. Injecting the runner lets
// tests substitute a fake without a real git installation; all other
// state is derived fresh from the repository on every call.
type Manager struct {
	runner execx.CommandRunner
}

// NewManager creates a Manager that executes git via the given runner.
func NewManager(runner execx.CommandRunner) *Manager {
	return &Manager{runner: runner}
}

// RepoRoot returns the absolute path to the top-level directory of the
// Git repository containing the given path.
//
// Uses `git rev-parse --show-toplevel`, which works for both the main
// working directory and worktrees — it returns the root of whichever
// working tree contains the path.
func (m *Manager) RepoRoot(ctx context.Context, path string) (string, error) {
	output, err := m.runGit(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// Add creates a new worktree at worktreePath on a new branch named branch,
// via `git worktree add <path> -b <branch>`. Git itself rejects the
// operation if the branch already exists; the caller surfaces the
// remediation hint for that case.
func (m *Manager) Add(ctx context.Context, repoRoot, branch, worktreePath string) error {
	_, err := m.runGit(ctx, repoRoot, "worktree", "add", worktreePath, "-b", branch)
	return err
}

// ListOutput runs `git worktree list` and returns git's output verbatim.
// The listing is a passthrough: agentree adds no parsing or reformatting.
func (m *Manager) ListOutput(ctx context.Context, repoRoot string) (string, error) {
	return m.runGit(ctx, repoRoot, "worktree", "list")
}

// Remove deletes the worktree at worktreePath. If force is true, --force
// is added so git removes worktrees with untracked files or uncommitted
// changes.
func (m *Manager) Remove(ctx context.Context, repoRoot, worktreePath string, force bool) error {
	args := []string{"worktree", "remove", worktreePath}
	if force {
		args = []string{"worktree", "remove", "--force", worktreePath}
	}
	_, err := m.runGit(ctx, repoRoot, args...)
	return err
}

// IsIgnored reports whether path is ignored by git within the repository.
// `git check-ignore -q` exits 0 when the path is ignored and 1 otherwise,
// so any error is treated as "not ignored".
func (m *Manager) IsIgnored(ctx context.Context, repoRoot, path string) bool {
	_, err := m.runGit(ctx, repoRoot, "check-ignore", "-q", path)
	return err == nil
}

// StageAndCommit stages a single file and commits it with the given
// message. Used for the best-effort .gitignore commit after a nested
// worktree base is excluded.
func (m *Manager) StageAndCommit(ctx context.Context, repoRoot, file, message string) error {
	if _, err := m.runGit(ctx, repoRoot, "add", file); err != nil {
		return err
	}
	_, err := m.runGit(ctx, repoRoot, "commit", "-m", message)
	return err
}

// runGit executes a git command in the given directory via the runner.
//
// The directory is passed with git's own -C flag rather than the process
// working directory, so every subcommand resolves paths the same way. On
// failure the returned error is a model.CLIError carrying ExitGitError
// with the trimmed stderr for diagnostics.
func (m *Manager) runGit(ctx context.Context, dir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)

	stdout, stderr, err := m.runner.Run(ctx, "", "git", fullArgs...)
	if err != nil {
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if s := strings.TrimSpace(string(stderr)); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}
	return string(stdout), nil
}
