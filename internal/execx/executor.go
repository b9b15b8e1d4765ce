// Package execx provides a narrow abstraction over external command
// execution for testability.
//
// Production code uses Runner, which shells out via os/exec; tests inject
// a MockRunner that returns pre-recorded responses. All invocations are
// synchronous and blocking: one command completes before the next begins,
// and every command is attempted exactly once.
//
// Platform handling: on Windows, general commands are wrapped with
// `cmd /C` so that npm-style .cmd shims resolve the way they do in a
// terminal. RunDirect bypasses the wrapping for callers that have already
// resolved a full executable path (the subagent spawner does this). Unix
// never wraps.
package execx

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"runtime"
	"sync"
)

// CommandRunner abstracts external command execution.
// Production code uses Runner, tests use MockRunner.
type CommandRunner interface {
	// Run executes a command in dir and returns stdout, stderr, and any
	// error. On Windows the command is shell-wrapped for resolution.
	Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error)

	// RunDirect executes a command without shell wrapping on any
	// platform, feeding stdin to the process. Callers must pass a
	// resolved executable path (or a name valid for direct exec).
	RunDirect(ctx context.Context, dir string, stdin io.Reader, name string, args ...string) (stdout, stderr []byte, err error)

	// LookPath reports the full path of an executable, or an error if it
	// is not on PATH.
	LookPath(name string) (string, error)
}

// Runner executes commands using os/exec.
type Runner struct{}

// NewRunner returns a new Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes a command and returns stdout, stderr, and any error.
func (r *Runner) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, []byte, error) {
	name, args = shellWrap(name, args)
	return run(ctx, dir, nil, name, args)
}

// RunDirect executes a command with stdin attached and no shell wrapping.
func (r *Runner) RunDirect(ctx context.Context, dir string, stdin io.Reader, name string, args ...string) ([]byte, []byte, error) {
	return run(ctx, dir, stdin, name, args)
}

// LookPath reports the full path of an executable via exec.LookPath.
func (r *Runner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// shellWrap rewrites the command for the host shell where required.
// Windows resolves .cmd/.bat shims only through cmd.exe; everywhere else
// the argv is executed as-is.
func shellWrap(name string, args []string) (string, []string) {
	if runtime.GOOS != "windows" {
		return name, args
	}
	wrapped := make([]string, 0, len(args)+2)
	wrapped = append(wrapped, "/C", name)
	wrapped = append(wrapped, args...)
	return "cmd", wrapped
}

func run(ctx context.Context, dir string, stdin io.Reader, name string, args []string) ([]byte, []byte, error) {
	// #nosec G204 — argv is constructed internally, not from user input
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if stdin != nil {
		cmd.Stdin = stdin
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	return stdoutBuf.Bytes(), stderrBuf.Bytes(), err
}

// MockResponse defines the response for a mocked command.
type MockResponse struct {
	Stdout []byte
	Stderr []byte
	Err    error
}

// CommandMatcher decides whether a recorded invocation matches a rule.
type CommandMatcher func(dir, name string, args []string) bool

// MockRule pairs a matcher with its canned response.
type MockRule struct {
	Match    CommandMatcher
	Response MockResponse
}

// MockCall records a command invocation for verification.
type MockCall struct {
	Dir    string
	Name   string
	Args   []string
	Stdin  string
	Direct bool
}

// MockRunner returns pre-recorded responses for commands.
// Rules are matched in registration order; unmatched commands succeed
// with empty output so tests only describe the invocations they care about.
type MockRunner struct {
	mu    sync.Mutex
	rules []MockRule
	calls []MockCall

	// Paths maps executable names to resolved paths for LookPath.
	// Names absent from the map are reported as not found.
	Paths map[string]string
}

// NewMockRunner creates an empty MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{Paths: map[string]string{}}
}

// AddRule registers a matcher with its response.
func (m *MockRunner) AddRule(match CommandMatcher, response MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, MockRule{Match: match, Response: response})
}

// AddPrefixMatch registers a rule matching a command name plus leading args.
func (m *MockRunner) AddPrefixMatch(name string, prefixArgs []string, response MockResponse) {
	m.AddRule(func(dir, n string, a []string) bool {
		if n != name || len(a) < len(prefixArgs) {
			return false
		}
		for i, arg := range prefixArgs {
			if a[i] != arg {
				return false
			}
		}
		return true
	}, response)
}

// Run records the call and returns the first matching rule's response.
func (m *MockRunner) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, []byte, error) {
	return m.dispatch(dir, "", false, name, args)
}

// RunDirect records the call (with its stdin content) and dispatches it
// like Run.
func (m *MockRunner) RunDirect(ctx context.Context, dir string, stdin io.Reader, name string, args ...string) ([]byte, []byte, error) {
	input := ""
	if stdin != nil {
		data, _ := io.ReadAll(stdin)
		input = string(data)
	}
	return m.dispatch(dir, input, true, name, args)
}

// LookPath resolves names through the Paths map.
func (m *MockRunner) LookPath(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if path, ok := m.Paths[name]; ok {
		return path, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

func (m *MockRunner) dispatch(dir, stdin string, direct bool, name string, args []string) ([]byte, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{
		Dir:    dir,
		Name:   name,
		Args:   append([]string(nil), args...),
		Stdin:  stdin,
		Direct: direct,
	})

	for _, rule := range m.rules {
		if rule.Match(dir, name, args) {
			return rule.Response.Stdout, rule.Response.Stderr, rule.Response.Err
		}
	}
	return nil, nil, nil
}

// Calls returns a copy of all recorded invocations.
func (m *MockRunner) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CalledWith reports whether any recorded invocation used the given
// command name and leading arguments.
func (m *MockRunner) CalledWith(name string, prefixArgs ...string) bool {
	for _, call := range m.Calls() {
		if call.Name != name || len(call.Args) < len(prefixArgs) {
			continue
		}
		matched := true
		for i, arg := range prefixArgs {
			if call.Args[i] != arg {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}
