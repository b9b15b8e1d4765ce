package worktree

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mmr-tortoise/agentree/internal/model"
)

// containerSuffix matches directory names that act as worktree containers:
// "-worktrees", "-Worktrees", or a bare "Worktrees" suffix with no
// preceding dash (e.g. MyProjectWorktrees). The suffix must terminate the
// name — "worktrees-project" is not a container.
var containerSuffix = regexp.MustCompile(`(-[Ww]orktrees|Worktrees)$`)

// IsContainerDir reports whether the directory name at path marks a
// worktree container for the sibling layout.
func IsContainerDir(path string) bool {
	return containerSuffix.MatchString(filepath.Base(path))
}

// DetectLayout classifies the worktree convention for the repository
// rooted at root. It is a pure function of filesystem state with no
// caching and no mutation.
//
// Priority order:
//  1. Parent directory is a worktree container → sibling, base = parent.
//  2. An existing .worktrees/ under root → nested, base = ".worktrees".
//  3. An existing worktrees/ under root → nested, base = "worktrees".
//  4. Default → nested, base = ".worktrees" (need not exist yet).
func DetectLayout(root string) model.Layout {
	parent := filepath.Dir(root)

	if IsContainerDir(parent) {
		return model.Layout{Pattern: model.PatternSibling, Base: parent}
	}

	if dirExists(filepath.Join(root, ".worktrees")) {
		return model.Layout{Pattern: model.PatternNested, Base: ".worktrees"}
	}
	if dirExists(filepath.Join(root, "worktrees")) {
		return model.Layout{Pattern: model.PatternNested, Base: "worktrees"}
	}

	return model.Layout{Pattern: model.PatternNested, Base: ".worktrees"}
}

// SanitizeBranch converts a Git branch name into a directory-safe name
// by replacing path separators with dashes. The transformation is
// idempotent and total: names without separators pass through unchanged.
func SanitizeBranch(branch string) string {
	safe := strings.ReplaceAll(branch, "/", "-")
	return strings.ReplaceAll(safe, "\\", "-")
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
