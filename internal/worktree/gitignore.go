package worktree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AppendIgnoreRule ensures the nested worktree base directory is excluded
// from version control by appending a `<dir>/` rule to the repository's
// .gitignore. It reports whether the file was changed; an already-present
// rule is left alone.
//
// Committing the change is the caller's concern: the edit must land even
// when the follow-up commit fails (dirty index, hooks, missing identity),
// so the two steps are deliberately separate.
func AppendIgnoreRule(repoRoot, dir string) (bool, error) {
	gitignorePath := filepath.Join(repoRoot, ".gitignore")
	rule := dir + "/"

	if content, err := os.ReadFile(gitignorePath); err == nil {
		if gitignoreContains(string(content), rule) {
			return false, nil
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return false, fmt.Errorf("append to .gitignore: %w", err)
	}
	if _, err := fmt.Fprintf(f, "\n# Git worktrees\n%s\n", rule); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("append to .gitignore: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("append to .gitignore: %w", err)
	}
	return true, nil
}

// IgnoreCommitMessage returns the commit message used when the .gitignore
// exclusion for a worktree base directory is committed.
func IgnoreCommitMessage(dir string) string {
	return fmt.Sprintf("chore: add %s/ to .gitignore", dir)
}

// gitignoreContains reports whether the rule already appears as a full
// line in the .gitignore content.
func gitignoreContains(content, rule string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == rule {
			return true
		}
	}
	return false
}
