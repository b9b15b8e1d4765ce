// Package agent spawns isolated subagent invocations of an external
// CLI tool for focused task execution.
//
// Each invocation gets a short unique ID, a composed instruction prompt
// fed on stdin, a bounded runtime, and a verbatim execution transcript
// persisted under the repository's artifact directory. The subagent's
// final payload is extracted from between literal delimiter markers in
// its stdout.
//
// Skill instructions are plain SKILL.md files resolved from a fixed list
// of candidate locations under the repository root.
package agent
