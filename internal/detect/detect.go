// Package detect probes the filesystem for installed agents. It scans
// well-known directories and config files under the home root to
// suggest which agents the configuration should enable.
package detect

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/hubsync/hubsync/internal/logging"
)

// Detected describes one agent found on the system.
type Detected struct {
	// Agent is the agent name as used in the configuration.
	Agent string
	// Root is the directory whose presence identified the agent.
	Root string
	// Source is how the agent was identified: "directory" or "config_file".
	Source string
	// Confidence is 0.0-1.0; higher means a stronger signal.
	Confidence float64
}

// probe describes one detection rule for an agent.
type probe struct {
	agent string
	// dirs are directories whose presence suggests the agent.
	dirs []string
	// configFile is a config file whose presence (and parseability, for
	// TOML files) is a stronger signal than a bare directory.
	configFile string
}

// probes lists the built-in detection rules, relative to the home root.
var probes = []probe{
	{
		agent:      "claude",
		dirs:       []string{".claude/skills", ".claude/commands", ".claude"},
		configFile: ".claude/settings.json",
	},
	{
		agent:      "codex",
		dirs:       []string{".codex/skills", ".codex/prompts", ".codex"},
		configFile: ".codex/config.toml",
	},
	{
		agent: "cursor",
		dirs:  []string{".cursor/skills", ".cursor"},
	},
}

// All scans for every known agent under the given home root and
// returns the ones found, in probe order.
func All(home string) []Detected {
	var detected []Detected
	for _, p := range probes {
		if result, found := runProbe(home, p); found {
			detected = append(detected, result)
		}
	}
	return detected
}

// runProbe evaluates one detection rule.
func runProbe(home string, p probe) (Detected, bool) {
	if p.configFile != "" {
		path := filepath.Join(home, filepath.FromSlash(p.configFile))
		if conf, ok := checkConfigFile(path); ok {
			return Detected{
				Agent:      p.agent,
				Root:       filepath.Dir(path),
				Source:     "config_file",
				Confidence: conf,
			}, true
		}
	}

	for i, dir := range p.dirs {
		path := filepath.Join(home, filepath.FromSlash(dir))
		if dirExists(path) {
			// The first (most specific) directory is the strongest signal.
			confidence := 0.9
			if i > 0 {
				confidence = 0.7
			}
			return Detected{
				Agent:      p.agent,
				Root:       path,
				Source:     "directory",
				Confidence: confidence,
			}, true
		}
	}
	return Detected{}, false
}

// checkConfigFile reports whether a config file exists, with higher
// confidence when a TOML file actually parses.
func checkConfigFile(path string) (float64, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0, false
	}

	if filepath.Ext(path) == ".toml" {
		var raw map[string]any
		if _, err := toml.DecodeFile(path, &raw); err != nil {
			logging.Debug("config file present but unparseable",
				logging.Path(path),
				logging.Err(err),
			)
			return 0.8, true
		}
		return 1.0, true
	}
	return 0.95, true
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
