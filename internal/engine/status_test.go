package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hubsync/hubsync/internal/model"
	"github.com/hubsync/hubsync/internal/util"
)

func TestStatus_Classifications(t *testing.T) {
	f := newFixture(t)
	skillsDir := f.targetDir(t, "claude", model.ArtifactSkills)

	linked := f.hubEntry(t, model.ArtifactSkills, "linked", "# linked\n")
	util.Symlink(t, linked, filepath.Join(skillsDir, "linked"))

	f.hubEntry(t, model.ArtifactSkills, "copied", "# copied\n")
	f.localEntry(t, "claude", model.ArtifactSkills, "copied", "# copied\n")

	f.hubEntry(t, model.ArtifactSkills, "diverged", "hub\n")
	f.localEntry(t, "claude", model.ArtifactSkills, "diverged", "local\n")

	f.hubEntry(t, model.ArtifactSkills, "remote-only", "# remote\n")

	f.hubEntry(t, model.ArtifactSkills, "dangling", "# dangling\n")
	util.Symlink(t, filepath.Join(f.home, "nowhere"), filepath.Join(skillsDir, "dangling"))

	f.localEntry(t, "claude", model.ArtifactSkills, "local-only", "# local\n")

	report, err := f.eng.Status(context.Background(), claudeSkills())
	util.AssertNoError(t, err)

	types := report["claude"]
	if len(types) != 1 {
		t.Fatalf("expected 1 type status, got %d", len(types))
	}
	entries := types[0].Entries

	util.AssertEqual(t, entries["linked"].State, StateOKSymlink)
	util.AssertEqual(t, entries["copied"].State, StateOKCopy)
	util.AssertEqual(t, entries["diverged"].State, StateDiverged)
	util.AssertEqual(t, entries["remote-only"].State, StateRemoteOnly)
	util.AssertEqual(t, entries["dangling"].State, StateBrokenSymlink)

	if entries["diverged"].RepoIdentity == "" || entries["diverged"].LocalIdentity == "" {
		t.Error("diverged entries should carry both identity labels")
	}

	if len(types[0].LocalOnly) != 1 || types[0].LocalOnly[0] != "local-only" {
		t.Errorf("local only = %v, want [local-only]", types[0].LocalOnly)
	}
}

func TestStatus_UnconfiguredTargetReportsRemoteOnly(t *testing.T) {
	f := newFixture(t)
	f.hubEntry(t, model.ArtifactCommands, "cmd-a", "# a\n")

	// The default cursor agent has no commands root; the hub entry is
	// still part of its report, as remote-only.
	report, err := f.eng.Status(context.Background(), Selection{
		Agents: []string{"cursor"},
		Types:  []model.ArtifactType{model.ArtifactCommands},
	})
	util.AssertNoError(t, err)

	types := report["cursor"]
	if len(types) != 1 {
		t.Fatalf("expected 1 type status for the unconfigured target, got %d", len(types))
	}
	util.AssertEqual(t, types[0].Type, model.ArtifactCommands)
	util.AssertEqual(t, types[0].Entries["cmd-a"].State, StateRemoteOnly)
	if len(types[0].LocalOnly) != 0 {
		t.Errorf("no local root means no local-only entries, got %v", types[0].LocalOnly)
	}
}

func TestStatus_SymlinkToWrongHubEntryIsBroken(t *testing.T) {
	f := newFixture(t)
	f.hubEntry(t, model.ArtifactSkills, "a", "# a\n")
	other := f.hubEntry(t, model.ArtifactSkills, "b", "# b\n")
	util.Symlink(t, other, filepath.Join(f.targetDir(t, "claude", model.ArtifactSkills), "a"))

	report, err := f.eng.Status(context.Background(), claudeSkills())
	util.AssertNoError(t, err)

	util.AssertEqual(t, report["claude"][0].Entries["a"].State, StateBrokenSymlink)
}

func TestStatus_HubLinksNeverCountAsLocalOnly(t *testing.T) {
	f := newFixture(t)
	// The local link points into the hub but its hub-side name is
	// filtered out, so it has no counterpart in the listing.
	src := f.hubEntry(t, model.ArtifactSkills, "excluded", "# x\n")
	util.Symlink(t, src, filepath.Join(f.targetDir(t, "claude", model.ArtifactSkills), "alias"))
	f.cfg.Agents["claude"].Skills.Exclude = []string{"excluded"}

	report, err := f.eng.Status(context.Background(), claudeSkills())
	util.AssertNoError(t, err)

	if len(report["claude"][0].LocalOnly) != 0 {
		t.Errorf("hub-pointing links must not be local only, got %v", report["claude"][0].LocalOnly)
	}
}

func TestStatus_NeverPromptsOrMutates(t *testing.T) {
	f := newFixture(t)
	f.hubEntry(t, model.ArtifactSkills, "diverged", "hub\n")
	local := f.localEntry(t, "claude", model.ArtifactSkills, "diverged", "local\n")

	_, err := f.eng.Status(context.Background(), claudeSkills())
	util.AssertNoError(t, err)

	if f.prompter.selectCalls != 0 || f.prompter.confirmCalls != 0 {
		t.Error("status must never prompt")
	}
	util.AssertEqual(t, util.ReadFile(t, filepath.Join(local, "SKILL.md")), "local\n")
	util.AssertNotExists(t, f.cfg.Backups.Dir)
}
