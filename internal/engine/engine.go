// Package engine implements the reconciliation drivers: install
// (hub -> local), collect (local -> hub), the read-only status report,
// and the push/pull orchestration over the git provider. Entries are
// processed one at a time; an abort unwinds immediately, leaving
// already-materialized entries in place.
package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hubsync/hubsync/internal/config"
	"github.com/hubsync/hubsync/internal/hub"
	"github.com/hubsync/hubsync/internal/logging"
	"github.com/hubsync/hubsync/internal/materialize"
	"github.com/hubsync/hubsync/internal/model"
	"github.com/hubsync/hubsync/internal/prompt"
	"github.com/hubsync/hubsync/internal/resolve"
	"github.com/hubsync/hubsync/internal/ui"
)

// Engine runs reconciliation drivers against one configuration.
type Engine struct {
	cfg      *config.Config
	layout   hub.Layout
	resolver *resolve.Resolver
	prompter prompt.Prompter
	out      io.Writer

	// link creates a symlink at dst pointing at src. Tests swap it out
	// to exercise the fallback escalation.
	link func(src, dst string) error
}

// New creates an engine over the given configuration and prompter.
// Output defaults to stdout.
func New(cfg *config.Config, prompter prompt.Prompter, out io.Writer) *Engine {
	if out == nil {
		out = os.Stdout
	}
	resolver := resolve.New(prompter)
	resolver.Out = out

	return &Engine{
		cfg:      cfg,
		layout:   hub.NewLayout(cfg.Hub.Path),
		resolver: resolver,
		prompter: prompter,
		out:      out,
		link:     materialize.CreateLink,
	}
}

// Layout exposes the hub layout the engine operates on.
func (e *Engine) Layout() hub.Layout {
	return e.layout
}

// Selection narrows a driver run to specific agents and artifact types.
// Empty means every enabled agent / every type.
type Selection struct {
	Agents []string
	Types  []model.ArtifactType
}

// resolveSelection turns a selection into concrete agents and types.
// Unknown or disabled agent names are precondition failures.
func (e *Engine) resolveSelection(sel Selection) ([]model.Agent, []model.ArtifactType, error) {
	var agents []model.Agent
	if len(sel.Agents) == 0 {
		agents = e.cfg.EnabledAgents()
	} else {
		for _, name := range sel.Agents {
			agent, err := e.cfg.Agent(name)
			if err != nil {
				return nil, nil, err
			}
			if !agent.Enabled {
				return nil, nil, fmt.Errorf("agent %q is disabled", name)
			}
			agents = append(agents, agent)
		}
	}

	types := sel.Types
	if len(types) == 0 {
		types = model.AllArtifactTypes()
	}
	for _, t := range types {
		if !t.IsValid() {
			return nil, nil, fmt.Errorf("unknown artifact type %q", t)
		}
	}
	return agents, types, nil
}

// backupRoot returns the backup directory for one side ("hub" or an
// agent name).
func (e *Engine) backupRoot(side string) string {
	return filepath.Join(e.cfg.Backups.Dir, side)
}

// removeDestination clears a destination before a replace, taking a
// backup first when backups are enabled. Backups happen only on this
// destructive path, never for skips.
func (e *Engine) removeDestination(dst, side string) error {
	if !e.cfg.Backups.Enabled {
		return materialize.Remove(dst)
	}

	root := e.backupRoot(side)
	backupPath, err := materialize.BackupThenRemove(dst, root)
	if err != nil {
		return err
	}
	if err := materialize.PruneBackups(root, e.cfg.Backups.Max); err != nil {
		logging.Warn("backup pruning failed", logging.Path(root), logging.Err(err))
	}
	fmt.Fprintf(e.out, "  %s\n", ui.Dim("backed up to "+backupPath))
	return nil
}

// printOutcome writes one per-entry console line.
func (e *Engine) printOutcome(o Outcome, detail string) {
	label := fmt.Sprintf("%s/%s/%s", o.Agent, o.Type, o.Name)
	if o.Agent == "" {
		label = fmt.Sprintf("%s/%s", o.Type, o.Name)
	}
	if detail != "" {
		detail = " " + ui.Dim("("+detail+")")
	}

	prefix := ""
	if o.DryRun {
		prefix = ui.Warning("[dry-run]") + " "
	}

	switch o.Action {
	case resolve.ActionProceed, resolve.ActionReplace:
		verb := "created"
		if o.Action == resolve.ActionReplace {
			verb = "replaced"
		}
		if o.DryRun {
			verb = "would be " + verb
		}
		fmt.Fprintf(e.out, "%s%s %s%s\n", prefix, ui.StatusSuccess(label), verb, detail)
	case resolve.ActionSkip:
		if o.Reason == resolve.ReasonLinked {
			fmt.Fprintf(e.out, "%s%s already linked\n", prefix, ui.StatusLinked(label))
		} else {
			fmt.Fprintf(e.out, "%s%s skipped %s\n", prefix, ui.StatusSkipped(label), ui.Dim(string(o.Reason)))
		}
	case resolve.ActionAbort:
		fmt.Fprintf(e.out, "%s%s\n", prefix, ui.StatusError("aborted at "+label))
	}
}
