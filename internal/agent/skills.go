package agent

import (
	"os"
	"path/filepath"
)

// repoRootScanDepth bounds the upward walk when locating the repository
// root from an arbitrary working directory.
const repoRootScanDepth = 10

// SkillCandidates returns the paths probed for a skill's SKILL.md, in
// priority order. Extra directories from configuration come first, then
// the standard locations.
func SkillCandidates(repoRoot, skill string, extraDirs []string) []string {
	candidates := make([]string, 0, len(extraDirs)+3)
	for _, dir := range extraDirs {
		candidates = append(candidates, filepath.Join(repoRoot, dir, skill, "SKILL.md"))
	}
	candidates = append(candidates,
		filepath.Join(repoRoot, ".agent", "skills", "superpowers-"+skill, "SKILL.md"),
		filepath.Join(repoRoot, ".agent", "skills", skill, "SKILL.md"),
		filepath.Join(repoRoot, "skills", skill, "SKILL.md"),
	)
	return candidates
}

// LoadInstructions reads a skill instruction file. A missing or
// unreadable file yields an empty result rather than an error; the
// caller treats empty instructions as "skill not found".
func LoadInstructions(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

// FindRepoRoot walks upward from start looking for a directory containing
// .agent/, which marks the repository root for workflow commands. The
// walk is bounded; if no marker is found, start is returned unchanged.
func FindRepoRoot(start string) string {
	curr, err := filepath.Abs(start)
	if err != nil {
		return start
	}

	for i := 0; i < repoRootScanDepth; i++ {
		if info, statErr := os.Stat(filepath.Join(curr, ".agent")); statErr == nil && info.IsDir() {
			return curr
		}
		parent := filepath.Dir(curr)
		if parent == curr {
			break
		}
		curr = parent
	}
	return start
}
