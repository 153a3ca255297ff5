// Package config loads hubsync configuration: the hub repo location,
// policy defaults, backup settings and the agent roster. Configuration
// layers are Default -> file -> environment; CLI flags override
// individual fields for one invocation only. Every path default
// resolves under a single home root that is injected at startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/hubsync/hubsync/internal/model"
	"github.com/hubsync/hubsync/internal/util"
)

// Config is the complete hubsync configuration.
type Config struct {
	// Hub locates the canonical git-backed repo.
	Hub HubConfig `yaml:"hub"`

	// Defaults holds the global policy defaults.
	Defaults DefaultsConfig `yaml:"defaults"`

	// Backups configures backups taken before destructive replaces.
	Backups BackupsConfig `yaml:"backups"`

	// Agents is the roster of local consumers, keyed by agent name.
	Agents map[string]AgentConfig `yaml:"agents"`

	// home is the injected base root; never read from the environment
	// inside the engine.
	home string
}

// HubConfig locates the hub repo.
type HubConfig struct {
	// Path is the hub working tree location.
	Path string `yaml:"path"`
	// Remote is the upstream URL used by init when cloning.
	Remote string `yaml:"remote,omitempty"`
}

// DefaultsConfig holds global policy defaults.
type DefaultsConfig struct {
	// Conflict is the default conflict policy (prompt, repo-wins, local-wins).
	Conflict string `yaml:"conflict"`
	// InstallMode is how install materializes entries (symlink, copy).
	InstallMode string `yaml:"install_mode"`
	// SymlinkFallback is the behavior when symlink creation fails
	// (copy, error, prompt).
	SymlinkFallback string `yaml:"symlink_fallback"`
}

// BackupsConfig configures pre-replace backups.
type BackupsConfig struct {
	// Enabled turns backups on before any destructive replace.
	Enabled bool `yaml:"enabled"`
	// Dir is the backup root directory.
	Dir string `yaml:"dir"`
	// Max is how many timestamped backup trees to keep (0 = unlimited).
	Max int `yaml:"max"`
}

// TargetConfig configures one artifact type for an agent.
type TargetConfig struct {
	// Path is the install root; empty means not configured.
	Path string `yaml:"path"`
	// Include narrows entry names (empty = match everything).
	Include []string `yaml:"include,omitempty"`
	// Exclude removes entry names (empty = match nothing).
	Exclude []string `yaml:"exclude,omitempty"`
}

// AgentConfig configures one agent.
type AgentConfig struct {
	// Enabled defaults to true when omitted.
	Enabled *bool `yaml:"enabled,omitempty"`
	// Skills configures the skills install root and filters.
	Skills *TargetConfig `yaml:"skills,omitempty"`
	// Commands configures the commands install root and filters.
	Commands *TargetConfig `yaml:"commands,omitempty"`
}

// Default returns the default configuration for the given home root.
func Default(home string) *Config {
	return &Config{
		Hub: HubConfig{
			Path: util.DefaultHubPath(home),
		},
		Defaults: DefaultsConfig{
			Conflict:        string(model.PolicyPrompt),
			InstallMode:     string(model.ModeSymlink),
			SymlinkFallback: string(model.FallbackCopy),
		},
		Backups: BackupsConfig{
			Enabled: true,
			Dir:     util.DefaultBackupsPath(home),
			Max:     10,
		},
		Agents: map[string]AgentConfig{
			"claude": {
				Skills:   &TargetConfig{Path: "~/.claude/skills"},
				Commands: &TargetConfig{Path: "~/.claude/commands"},
			},
			"codex": {
				Skills:   &TargetConfig{Path: "~/.codex/skills"},
				Commands: &TargetConfig{Path: "~/.codex/prompts"},
			},
			"cursor": {
				Skills: &TargetConfig{Path: "~/.cursor/skills"},
			},
		},
		home: home,
	}
}

// Options controls configuration loading.
type Options struct {
	// Home is the base root every default resolves under. Required.
	Home string
	// Path overrides the config file location.
	Path string
}

// Load builds the effective configuration: defaults, then the config
// file if present, then environment overrides, then normalization.
func Load(opts Options) (*Config, error) {
	if opts.Home == "" {
		return nil, fmt.Errorf("config: home root is required")
	}

	cfg := Default(opts.Home)

	path := opts.Path
	if path == "" {
		path = util.DefaultConfigPath(opts.Home)
	}

	// #nosec G304 - path comes from the resolved home root or an explicit flag
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	cfg.home = opts.Home
	cfg.applyEnvironment()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvironment overlays HUBSYNC_* environment variables.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("HUBSYNC_HUB_PATH"); v != "" {
		c.Hub.Path = v
	}
	if v := os.Getenv("HUBSYNC_HUB_REMOTE"); v != "" {
		c.Hub.Remote = v
	}
	if v := os.Getenv("HUBSYNC_CONFLICT"); v != "" {
		c.Defaults.Conflict = v
	}
	if v := os.Getenv("HUBSYNC_INSTALL_MODE"); v != "" {
		c.Defaults.InstallMode = v
	}
	if v := os.Getenv("HUBSYNC_SYMLINK_FALLBACK"); v != "" {
		c.Defaults.SymlinkFallback = v
	}
	if v := os.Getenv("HUBSYNC_BACKUPS"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Backups.Enabled = enabled
		}
	}
}

// normalize expands every configured path under the home root.
func (c *Config) normalize() {
	if c.Hub.Path == "" {
		c.Hub.Path = util.DefaultHubPath(c.home)
	}
	if c.Backups.Dir == "" {
		c.Backups.Dir = util.DefaultBackupsPath(c.home)
	}
	c.Hub.Path = util.ExpandPath(c.Hub.Path, c.home)
	c.Backups.Dir = util.ExpandPath(c.Backups.Dir, c.home)

	for name, agent := range c.Agents {
		if agent.Skills != nil {
			agent.Skills.Path = util.ExpandPath(agent.Skills.Path, c.home)
		}
		if agent.Commands != nil {
			agent.Commands.Path = util.ExpandPath(agent.Commands.Path, c.home)
		}
		c.Agents[name] = agent
	}
}

// Validate checks the policy enumerations.
func (c *Config) Validate() error {
	if _, err := model.ParseConflictPolicy(c.Defaults.Conflict); err != nil {
		return fmt.Errorf("config: defaults.conflict: %w", err)
	}
	if _, err := model.ParseInstallMode(c.Defaults.InstallMode); err != nil {
		return fmt.Errorf("config: defaults.install_mode: %w", err)
	}
	if _, err := model.ParseSymlinkFallback(c.Defaults.SymlinkFallback); err != nil {
		return fmt.Errorf("config: defaults.symlink_fallback: %w", err)
	}
	return nil
}

// Save writes the configuration to the given path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config %q: %w", path, err)
	}
	return nil
}

// Home returns the injected home root.
func (c *Config) Home() string {
	return c.home
}

// ConflictPolicy returns the validated default conflict policy.
func (c *Config) ConflictPolicy() model.ConflictPolicy {
	return model.ConflictPolicy(c.Defaults.Conflict)
}

// InstallMode returns the validated default install mode.
func (c *Config) InstallMode() model.InstallMode {
	return model.InstallMode(c.Defaults.InstallMode)
}

// SymlinkFallback returns the validated default symlink fallback.
func (c *Config) SymlinkFallback() model.SymlinkFallback {
	return model.SymlinkFallback(c.Defaults.SymlinkFallback)
}

// Agent resolves one configured agent by name.
func (c *Config) Agent(name string) (model.Agent, error) {
	agentCfg, ok := c.Agents[name]
	if !ok {
		return model.Agent{}, fmt.Errorf("unknown agent %q", name)
	}
	return c.toAgent(name, agentCfg), nil
}

// EnabledAgents returns every enabled agent, sorted by name.
func (c *Config) EnabledAgents() []model.Agent {
	names := make([]string, 0, len(c.Agents))
	for name := range c.Agents {
		names = append(names, name)
	}
	sort.Strings(names)

	var agents []model.Agent
	for _, name := range names {
		agent := c.toAgent(name, c.Agents[name])
		if agent.Enabled {
			agents = append(agents, agent)
		}
	}
	return agents
}

func (c *Config) toAgent(name string, cfg AgentConfig) model.Agent {
	enabled := true
	if cfg.Enabled != nil {
		enabled = *cfg.Enabled
	}

	targets := make(map[model.ArtifactType]model.Target)
	if cfg.Skills != nil {
		targets[model.ArtifactSkills] = model.Target{
			Path: cfg.Skills.Path,
			Filters: model.Filters{
				Include: cfg.Skills.Include,
				Exclude: cfg.Skills.Exclude,
			},
		}
	}
	if cfg.Commands != nil {
		targets[model.ArtifactCommands] = model.Target{
			Path: cfg.Commands.Path,
			Filters: model.Filters{
				Include: cfg.Commands.Include,
				Exclude: cfg.Commands.Exclude,
			},
		}
	}

	return model.Agent{Name: name, Enabled: enabled, Targets: targets}
}
