package e2e

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/hubsync/hubsync/internal/gitrepo"
	"github.com/hubsync/hubsync/internal/util"
)

// SeedHubEntry writes a hub entry directly into the hub working tree.
func (h *Harness) SeedHubEntry(t *testing.T, artifactType, name, content string) string {
	t.Helper()
	path := h.Path(".hubsync", "hub", artifactType, name)
	util.WriteFile(t, filepath.Join(path, "SKILL.md"), content)
	return path
}

// SeedLocalEntry writes an entry into an agent's default target
// directory for the given artifact type.
func (h *Harness) SeedLocalEntry(t *testing.T, agent, artifactType, name, content string) string {
	t.Helper()
	dir := artifactType
	if agent == "codex" && artifactType == "commands" {
		dir = "prompts"
	}
	path := h.Path("."+agent, dir, name)
	util.WriteFile(t, filepath.Join(path, "SKILL.md"), content)
	return path
}

// WriteConfig writes a hubsync config file under the harness home.
func (h *Harness) WriteConfig(t *testing.T, content string) {
	t.Helper()
	util.WriteFile(t, h.Path(".hubsync", "config.yaml"), content)
}

// InitHub initializes the hub repo with git identity configured,
// skipping the test when git is unavailable.
func (h *Harness) InitHub(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	r := h.Run("init")
	if r.Err != nil {
		t.Fatalf("init failed: %v\n%s", r.Err, r.Stdout)
	}

	ctx := context.Background()
	repo, err := gitrepo.Open(h.Path(".hubsync", "hub"))
	util.AssertNoError(t, err)
	util.AssertNoError(t, repo.Config(ctx, "user.email", "test@example.com"))
	util.AssertNoError(t, repo.Config(ctx, "user.name", "test"))
}
