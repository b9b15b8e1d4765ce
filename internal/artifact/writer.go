// Package artifact writes workflow artifacts to repo-relative paths.
//
// Artifacts are plain files (brainstorms, plans, subagent payloads)
// addressed relative to the repository root so that agents running in
// any subdirectory agree on where output lands.
package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FindRepoRoot returns the first ancestor of start (including start
// itself) containing a .agent/ or .git/ entry. When no marker exists the
// start directory itself is returned.
func FindRepoRoot(start string) string {
	curr, err := filepath.Abs(start)
	if err != nil {
		return start
	}

	for dir := curr; ; dir = filepath.Dir(dir) {
		if pathExists(filepath.Join(dir, ".agent")) || pathExists(filepath.Join(dir, ".git")) {
			return dir
		}
		if filepath.Dir(dir) == dir {
			return curr
		}
	}
}

// Write stores content read from r at the repo-relative path, creating
// parent directories as needed. It returns the absolute path written.
func Write(repoRoot, relPath string, r io.Reader) (string, error) {
	outPath, err := filepath.Abs(filepath.Join(repoRoot, relPath))
	if err != nil {
		return "", fmt.Errorf("resolve artifact path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("create artifact directory: %w", err)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read artifact content: %w", err)
	}

	if err := os.WriteFile(outPath, content, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return outPath, nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
