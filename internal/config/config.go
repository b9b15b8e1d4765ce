// Package config loads optional repository-level settings for agentree.
//
// Settings live in a .agentree.yml file at the repository root. A missing
// file yields the defaults; a malformed file is an error so typos do not
// silently fall back.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file probed for at the repository root.
const FileName = ".agentree.yml"

// Config holds all agentree settings.
type Config struct {
	Agent  AgentConfig  `yaml:"agent"`
	Skills SkillsConfig `yaml:"skills"`
}

// AgentConfig configures the external subagent CLI.
type AgentConfig struct {
	// Binary is the subagent executable name looked up on PATH.
	Binary string `yaml:"binary"`

	// TimeoutMinutes bounds one subagent invocation. Exceeding it is
	// reported as a timeout, distinct from other failures.
	TimeoutMinutes int `yaml:"timeout_minutes"`

	// LogDir is the repo-relative directory for subagent transcripts.
	LogDir string `yaml:"log_dir"`
}

// SkillsConfig configures skill instruction lookup.
type SkillsConfig struct {
	// Dirs lists extra repo-relative directories searched for
	// <skill>/SKILL.md before the built-in locations.
	Dirs []string `yaml:"dirs"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			Binary:         "gemini",
			TimeoutMinutes: 10,
			LogDir:         filepath.Join("artifacts", "superpowers", "subagents"),
		},
	}
}

// Timeout returns the agent timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Agent.TimeoutMinutes) * time.Minute
}

// Load reads .agentree.yml from repoRoot, applying defaults for absent
// fields. A missing file is not an error.
func Load(repoRoot string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(repoRoot, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Re-apply defaults for fields the file zeroed or omitted.
	defaults := Default()
	if cfg.Agent.Binary == "" {
		cfg.Agent.Binary = defaults.Agent.Binary
	}
	if cfg.Agent.TimeoutMinutes <= 0 {
		cfg.Agent.TimeoutMinutes = defaults.Agent.TimeoutMinutes
	}
	if cfg.Agent.LogDir == "" {
		cfg.Agent.LogDir = defaults.Agent.LogDir
	}

	return cfg, nil
}
