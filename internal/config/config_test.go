package config

import (
	"path/filepath"
	"testing"

	"github.com/hubsync/hubsync/internal/model"
	"github.com/hubsync/hubsync/internal/util"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()

	cfg, err := Load(Options{Home: home})
	util.AssertNoError(t, err)

	util.AssertEqual(t, cfg.Home(), home)
	util.AssertEqual(t, cfg.Hub.Path, filepath.Join(home, ".hubsync", "hub"))
	util.AssertEqual(t, cfg.ConflictPolicy(), model.PolicyPrompt)
	util.AssertEqual(t, cfg.InstallMode(), model.ModeSymlink)
	util.AssertEqual(t, cfg.SymlinkFallback(), model.FallbackCopy)
	util.AssertEqual(t, cfg.Backups.Enabled, true)

	claude, err := cfg.Agent("claude")
	util.AssertNoError(t, err)
	target, ok := claude.Target(model.ArtifactSkills)
	if !ok {
		t.Fatal("claude skills target should be configured")
	}
	util.AssertEqual(t, target.Path, filepath.Join(home, ".claude", "skills"))
}

func TestLoad_RequiresHome(t *testing.T) {
	if _, err := Load(Options{}); err == nil {
		t.Error("expected error when home is empty")
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	home := t.TempDir()
	util.WriteFile(t, filepath.Join(home, ".hubsync", "config.yaml"), `
hub:
  path: custom/hub
defaults:
  conflict: repo-wins
  install_mode: copy
agents:
  claude:
    enabled: false
    skills:
      path: ~/.claude/skills
      include: ["code-*"]
      exclude: ["code-experimental"]
`)

	cfg, err := Load(Options{Home: home})
	util.AssertNoError(t, err)

	util.AssertEqual(t, cfg.Hub.Path, filepath.Join(home, "custom", "hub"))
	util.AssertEqual(t, cfg.ConflictPolicy(), model.PolicyRepoWins)
	util.AssertEqual(t, cfg.InstallMode(), model.ModeCopy)

	claude, err := cfg.Agent("claude")
	util.AssertNoError(t, err)
	util.AssertEqual(t, claude.Enabled, false)

	target, _ := claude.Target(model.ArtifactSkills)
	if len(target.Filters.Include) != 1 || target.Filters.Include[0] != "code-*" {
		t.Errorf("unexpected include filters: %v", target.Filters.Include)
	}
}

func TestLoad_InvalidPolicy(t *testing.T) {
	home := t.TempDir()
	util.WriteFile(t, filepath.Join(home, ".hubsync", "config.yaml"), "defaults:\n  conflict: merge\n")

	if _, err := Load(Options{Home: home}); err == nil {
		t.Error("expected error for invalid conflict policy")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HUBSYNC_CONFLICT", "local-wins")
	t.Setenv("HUBSYNC_BACKUPS", "false")
	t.Setenv("HUBSYNC_HUB_PATH", "elsewhere/hub")

	cfg, err := Load(Options{Home: home})
	util.AssertNoError(t, err)

	util.AssertEqual(t, cfg.ConflictPolicy(), model.PolicyLocalWins)
	util.AssertEqual(t, cfg.Backups.Enabled, false)
	util.AssertEqual(t, cfg.Hub.Path, filepath.Join(home, "elsewhere", "hub"))
}

func TestEnabledAgents_SortedAndFiltered(t *testing.T) {
	home := t.TempDir()
	util.WriteFile(t, filepath.Join(home, ".hubsync", "config.yaml"), `
agents:
  codex:
    enabled: false
`)

	cfg, err := Load(Options{Home: home})
	util.AssertNoError(t, err)

	agents := cfg.EnabledAgents()
	if len(agents) != 2 {
		t.Fatalf("expected 2 enabled agents, got %d", len(agents))
	}
	util.AssertEqual(t, agents[0].Name, "claude")
	util.AssertEqual(t, agents[1].Name, "cursor")
}

func TestAgent_Unknown(t *testing.T) {
	cfg, err := Load(Options{Home: t.TempDir()})
	util.AssertNoError(t, err)

	if _, err := cfg.Agent("zed"); err == nil {
		t.Error("expected error for unknown agent")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	home := t.TempDir()
	cfg := Default(home)
	cfg.Defaults.Conflict = string(model.PolicyRepoWins)

	path := filepath.Join(home, ".hubsync", "config.yaml")
	util.AssertNoError(t, cfg.Save(path))

	loaded, err := Load(Options{Home: home})
	util.AssertNoError(t, err)
	util.AssertEqual(t, loaded.ConflictPolicy(), model.PolicyRepoWins)
}
