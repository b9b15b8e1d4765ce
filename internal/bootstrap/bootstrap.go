// Package bootstrap prepares a freshly created worktree for use.
//
// Setup probes the worktree for project marker files (package.json,
// Cargo.toml, requirements.txt, pyproject.toml, go.mod) and runs the
// matching dependency installer for each marker found — a polyglot
// directory runs several installers. Verify probes for test-runner
// markers in priority order and runs at most one test command to confirm
// a clean baseline.
//
// Both phases are advisory: installer and test failures are reported but
// never abort worktree creation. The marker/action pairs are plain data,
// so supporting a new project type is a one-entry addition.
package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/agentree/internal/execx"
)

// InstallStep pairs a project marker file with the command that installs
// its dependencies. Command may return nil to skip with a notice (e.g.
// pyproject.toml present but no Python package manager installed).
type InstallStep struct {
	// Marker is the file name probed for in the worktree directory.
	Marker string

	// Label names the detected project type in progress output.
	Label string

	// Command resolves the installer argv for this step.
	Command func(b *Bootstrapper) []string
}

// VerifyStep pairs a test-runner probe with its test command.
// Unlike install steps, at most one verify step runs.
type VerifyStep struct {
	// Detect reports whether this runner applies to the directory.
	Detect func(b *Bootstrapper, dir string) bool

	// Command resolves the test argv.
	Command func(b *Bootstrapper) []string
}

// Bootstrapper runs installers and baseline verification in a worktree.
type Bootstrapper struct {
	runner execx.CommandRunner
	out    io.Writer
}

// New creates a Bootstrapper that executes commands via runner and writes
// progress output to out.
func New(runner execx.CommandRunner, out io.Writer) *Bootstrapper {
	return &Bootstrapper{runner: runner, out: out}
}

// installSteps is the ordered marker/installer table. Every matching step
// runs, in this order.
var installSteps = []InstallStep{
	{
		Marker:  "package.json",
		Label:   "Node.js",
		Command: func(*Bootstrapper) []string { return []string{"npm", "install"} },
	},
	{
		Marker:  "Cargo.toml",
		Label:   "Rust",
		Command: func(*Bootstrapper) []string { return []string{"cargo", "build"} },
	},
	{
		Marker: "requirements.txt",
		Label:  "Python",
		Command: func(b *Bootstrapper) []string {
			return []string{b.pythonExe(), "-m", "pip", "install", "-r", "requirements.txt"}
		},
	},
	{
		Marker: "pyproject.toml",
		Label:  "Python project",
		Command: func(b *Bootstrapper) []string {
			if b.onPath("poetry") {
				return []string{"poetry", "install"}
			}
			if b.onPath("uv") {
				return []string{"uv", "sync"}
			}
			return nil
		},
	},
	{
		Marker:  "go.mod",
		Label:   "Go",
		Command: func(*Bootstrapper) []string { return []string{"go", "mod", "download"} },
	},
}

// verifySteps is the ordered test-runner table. The first matching step
// runs; the rest are skipped.
var verifySteps = []VerifyStep{
	{
		Detect: func(b *Bootstrapper, dir string) bool {
			return hasTestScript(filepath.Join(dir, "package.json"))
		},
		Command: func(*Bootstrapper) []string { return []string{"npm", "test"} },
	},
	{
		Detect: func(b *Bootstrapper, dir string) bool {
			return fileExists(filepath.Join(dir, "Cargo.toml"))
		},
		Command: func(*Bootstrapper) []string { return []string{"cargo", "test"} },
	},
	{
		Detect: func(b *Bootstrapper, dir string) bool {
			return fileExists(filepath.Join(dir, "pytest.ini")) || dirExists(filepath.Join(dir, "tests"))
		},
		Command: func(b *Bootstrapper) []string { return []string{b.pythonExe(), "-m", "pytest"} },
	},
	{
		Detect: func(b *Bootstrapper, dir string) bool {
			return fileExists(filepath.Join(dir, "go.mod"))
		},
		Command: func(*Bootstrapper) []string { return []string{"go", "test", "./..."} },
	},
}

// Setup runs every matching dependency installer in dir. Installer
// failures are reported as warnings; the remaining steps still run.
func (b *Bootstrapper) Setup(ctx context.Context, dir string) {
	fmt.Fprintf(b.out, "Setting up project in %s...\n", dir)

	for _, step := range installSteps {
		if !fileExists(filepath.Join(dir, step.Marker)) {
			continue
		}

		argv := step.Command(b)
		if argv == nil {
			fmt.Fprintf(b.out, "Detected %s (%s) but no package manager found. Skipping.\n", step.Label, step.Marker)
			continue
		}

		fmt.Fprintf(b.out, "Detected %s project. Running '%s'...\n", step.Label, strings.Join(argv, " "))
		if _, stderr, err := b.runner.Run(ctx, dir, argv[0], argv[1:]...); err != nil {
			fmt.Fprintf(b.out, "Warning: '%s' failed: %v\n", strings.Join(argv, " "), err)
			if s := strings.TrimSpace(string(stderr)); s != "" {
				fmt.Fprintf(b.out, "Stderr: %s\n", s)
			}
		}
	}
}

// Verify runs the first matching baseline test command in dir and reports
// whether it passed. When no runner is detected the baseline is treated
// as clean. A failing baseline never halts the overall flow; the caller
// only gets the boolean.
func (b *Bootstrapper) Verify(ctx context.Context, dir string) bool {
	fmt.Fprintf(b.out, "Verifying baseline in %s...\n", dir)

	for _, step := range verifySteps {
		if !step.Detect(b, dir) {
			continue
		}

		argv := step.Command(b)
		fmt.Fprintf(b.out, "Running verification: %s\n", strings.Join(argv, " "))
		if _, stderr, err := b.runner.Run(ctx, dir, argv[0], argv[1:]...); err != nil {
			fmt.Fprintln(b.out, "Baseline verification FAILED!")
			if s := strings.TrimSpace(string(stderr)); s != "" {
				fmt.Fprintf(b.out, "Stderr: %s\n", s)
			}
			return false
		}
		fmt.Fprintln(b.out, "Baseline verification passed!")
		return true
	}

	fmt.Fprintln(b.out, "No test runner detected. Skipping verification.")
	return true
}

// pythonExe picks the Python interpreter name for the host: python3 where
// available, otherwise python (the usual name on Windows).
func (b *Bootstrapper) pythonExe() string {
	if b.onPath("python3") {
		return "python3"
	}
	return "python"
}

func (b *Bootstrapper) onPath(name string) bool {
	_, err := b.runner.LookPath(name)
	return err == nil
}

// packageScripts is the slice of package.json we care about.
type packageScripts struct {
	Scripts map[string]string `json:"scripts"`
}

// npmPlaceholderTest is the script `npm init` generates; running it always
// fails, so it does not count as a real test runner.
const npmPlaceholderTest = "no test specified"

// hasTestScript reports whether package.json declares a usable "test"
// script. The file is parsed tolerantly (JSONC) since editor tooling
// sometimes leaves comments in it; an unreadable or malformed file counts
// as no test script rather than an error.
func hasTestScript(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	var pkg packageScripts
	if err := json.Unmarshal(jsonc.ToJSON(data), &pkg); err != nil {
		return false
	}

	script, ok := pkg.Scripts["test"]
	if !ok || strings.TrimSpace(script) == "" {
		return false
	}
	return !strings.Contains(script, npmPlaceholderTest)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
