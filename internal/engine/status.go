package engine

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/hubsync/hubsync/internal/filter"
	"github.com/hubsync/hubsync/internal/hub"
	"github.com/hubsync/hubsync/internal/identity"
	"github.com/hubsync/hubsync/internal/logging"
	"github.com/hubsync/hubsync/internal/model"
)

// State classifies one hub entry relative to one agent target.
type State string

const (
	// StateRemoteOnly: the entry exists in the hub but not locally.
	StateRemoteOnly State = "remote_only"
	// StateOKSymlink: the local entry is a symlink resolving to the hub entry.
	StateOKSymlink State = "ok_symlink"
	// StateBrokenSymlink: the local entry is a symlink that does not
	// resolve to the hub entry (dangling or pointing elsewhere).
	StateBrokenSymlink State = "broken_symlink"
	// StateOKCopy: the local entry is a content-identical copy.
	StateOKCopy State = "ok_copy"
	// StateDiverged: the local entry exists but differs from the hub.
	StateDiverged State = "diverged"
)

// EntryStatus describes one hub entry for one agent target.
type EntryStatus struct {
	State State `json:"state"`

	// RepoIdentity and LocalIdentity are human-readable identity labels,
	// populated for diverged entries.
	RepoIdentity  string `json:"repo_identity,omitempty"`
	LocalIdentity string `json:"local_identity,omitempty"`
}

// TypeStatus reports one artifact type for one agent.
type TypeStatus struct {
	Type model.ArtifactType `json:"type"`

	// Entries maps hub entry names to their classification.
	Entries map[string]EntryStatus `json:"entries"`

	// LocalOnly lists filtered-in local entries with no hub counterpart.
	LocalOnly []string `json:"local_only,omitempty"`
}

// Report is the full status report, keyed by agent name.
type Report map[string][]TypeStatus

// Status computes the read-only reconciliation report. It never
// mutates the filesystem and never prompts.
func (e *Engine) Status(ctx context.Context, sel Selection) (Report, error) {
	defer logging.Timer("status")()

	agents, types, err := e.resolveSelection(sel)
	if err != nil {
		return nil, err
	}

	report := make(Report)
	for _, agent := range agents {
		for _, artifactType := range types {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			ts, err := e.statusType(agent, artifactType)
			if err != nil {
				return report, err
			}
			if ts != nil {
				report[agent.Name] = append(report[agent.Name], *ts)
			}
		}
	}
	return report, nil
}

func (e *Engine) statusType(agent model.Agent, artifactType model.ArtifactType) (*TypeStatus, error) {
	hubDir := e.layout.Dir(artifactType)

	// An agent with no local root for this type still sees every hub
	// entry as remote-only; nothing can exist locally.
	target, ok := agent.Target(artifactType)
	if !ok {
		hubNames, err := hub.ListEntries(hubDir)
		if err != nil {
			return nil, err
		}
		ts := &TypeStatus{
			Type:    artifactType,
			Entries: make(map[string]EntryStatus, len(hubNames)),
		}
		for _, name := range hubNames {
			ts.Entries[name] = EntryStatus{State: StateRemoteOnly}
		}
		return ts, nil
	}

	hubNames, err := hub.ListEntries(hubDir)
	if err != nil {
		return nil, err
	}
	hubNames = filter.Apply(hubNames, target.Filters)

	ts := &TypeStatus{
		Type:    artifactType,
		Entries: make(map[string]EntryStatus, len(hubNames)),
	}

	inHub := make(map[string]bool, len(hubNames))
	for _, name := range hubNames {
		inHub[name] = true
		src := e.layout.EntryPath(artifactType, name)
		dst := filepath.Join(target.Path, name)
		ts.Entries[name] = classifyEntry(src, dst)
	}

	localNames, err := hub.ListEntries(target.Path)
	if err != nil {
		return nil, err
	}
	localNames = filter.Apply(localNames, target.Filters)

	for _, name := range localNames {
		if inHub[name] {
			continue
		}
		// Symlinks into the hub that the current filters exclude on the
		// hub side are leftovers of a previous install, not local-only
		// content.
		if pointsInto(filepath.Join(target.Path, name), hubDir) {
			continue
		}
		ts.LocalOnly = append(ts.LocalOnly, name)
	}
	return ts, nil
}

// classifyEntry decides the state of one hub entry at one local path.
func classifyEntry(src, dst string) EntryStatus {
	local := identity.Classify(dst)

	switch local.Kind {
	case identity.KindMissing:
		return EntryStatus{State: StateRemoteOnly}

	case identity.KindSymlink:
		// Dangling links classify as symlinks too; LinkedTo fails for
		// them, so they report broken rather than absent.
		if identity.LinkedTo(dst, src) {
			return EntryStatus{State: StateOKSymlink}
		}
		return EntryStatus{State: StateBrokenSymlink}
	}

	repo := identity.Classify(src)
	if identity.Equal(repo, local) {
		return EntryStatus{State: StateOKCopy}
	}
	return EntryStatus{
		State:         StateDiverged,
		RepoIdentity:  repo.Label(),
		LocalIdentity: local.Label(),
	}
}

// pointsInto reports whether path is a symlink resolving somewhere
// under root.
func pointsInto(path, root string) bool {
	if identity.Classify(path).Kind != identity.KindSymlink {
		return false
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(resolvedRoot, resolved)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}
