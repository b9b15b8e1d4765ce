// Package activation appends skill-activation events to a flat log file.
//
// The log is an append-only, tab-separated record of which skills were
// activated and when, used by end-to-end workflow demos to assert that a
// skill actually fired. There is no rotation and no locking: concurrent
// writers rely on O_APPEND semantics for whole-line writes.
package activation

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LogPath is the repo-relative location of the activation log.
var LogPath = filepath.Join("e2e_demo", "skill-activation.log")

// FindRepoRoot returns the first ancestor of start (including start
// itself) containing a .agent/, .git/, or pyproject.toml entry, falling
// back to start.
func FindRepoRoot(start string) string {
	curr, err := filepath.Abs(start)
	if err != nil {
		return start
	}

	for dir := curr; ; dir = filepath.Dir(dir) {
		for _, marker := range []string{".agent", ".git", "pyproject.toml"} {
			if _, statErr := os.Stat(filepath.Join(dir, marker)); statErr == nil {
				return dir
			}
		}
		if filepath.Dir(dir) == dir {
			return curr
		}
	}
}

// Record appends one activation line for the skill to the log under
// repoRoot, creating the log directory if needed. The line format is
//
//	<RFC3339 UTC timestamp>\tskill=<skill>\trun_id=<runID>\n
func Record(repoRoot, skill, runID string) error {
	return record(repoRoot, skill, runID, time.Now)
}

func record(repoRoot, skill, runID string, now func() time.Time) error {
	logPath := filepath.Join(repoRoot, LogPath)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("create activation log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open activation log: %w", err)
	}

	line := fmt.Sprintf("%s\tskill=%s\trun_id=%s\n", now().UTC().Format(time.RFC3339), skill, runID)
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append activation line: %w", err)
	}
	return f.Close()
}
