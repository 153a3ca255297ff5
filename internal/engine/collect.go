package engine

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/hubsync/hubsync/internal/filter"
	"github.com/hubsync/hubsync/internal/hub"
	"github.com/hubsync/hubsync/internal/identity"
	"github.com/hubsync/hubsync/internal/logging"
	"github.com/hubsync/hubsync/internal/materialize"
	"github.com/hubsync/hubsync/internal/model"
	"github.com/hubsync/hubsync/internal/resolve"
)

// CollectOptions configures the collect driver.
type CollectOptions struct {
	Selection

	// DryRun logs decisions without touching the hub.
	DryRun bool
	// Force replaces diverged hub copies and imports extras without
	// prompting.
	Force bool
	// ImportExtras imports local-only entries without asking.
	ImportExtras bool
	// Policy is the effective conflict policy.
	Policy model.ConflictPolicy
	// Only restricts collection to the named entries. Empty means every
	// filtered-in local entry.
	Only []string
}

// Collect gathers local entries from each selected agent back into the
// hub. Entries are always materialized into the hub as plain trees:
// symlinks inside an entry are dereferenced so the hub stays
// self-contained.
func (e *Engine) Collect(ctx context.Context, opts CollectOptions) (*Result, error) {
	defer logging.Timer("collect")()

	agents, types, err := e.resolveSelection(opts.Selection)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, agent := range agents {
		for _, artifactType := range types {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if err := e.collectType(agent, artifactType, opts, result); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}

func (e *Engine) collectType(agent model.Agent, artifactType model.ArtifactType, opts CollectOptions, result *Result) error {
	target, ok := agent.Target(artifactType)
	if !ok {
		logging.Debug("target not configured",
			logging.Agent(agent.Name),
			logging.Type(artifactType.String()),
		)
		return nil
	}

	names, err := hub.ListEntries(target.Path)
	if err != nil {
		return err
	}
	names = filter.Apply(names, target.Filters)

	for _, name := range names {
		if len(opts.Only) > 0 && !slices.Contains(opts.Only, name) {
			continue
		}

		src := filepath.Join(target.Path, name)
		dst := e.layout.EntryPath(artifactType, name)

		// A local entry that is just a symlink back into the hub is the
		// product of a previous install, not new content to collect.
		if identity.LinkedTo(src, dst) {
			logging.Debug("skipping hub-linked entry",
				logging.Agent(agent.Name),
				logging.Entry(name),
			)
			continue
		}

		extra := identity.Classify(dst).Kind == identity.KindMissing

		decision, err := e.resolver.Resolve(resolve.Request{
			Name:         name,
			SourcePath:   src,
			DestPath:     dst,
			Direction:    resolve.DirectionCollect,
			Policy:       opts.Policy,
			Force:        opts.Force,
			Extra:        extra,
			ImportExtras: opts.ImportExtras,
		})
		if err != nil {
			return err
		}

		outcome := Outcome{
			Agent:  agent.Name,
			Type:   artifactType,
			Name:   name,
			Action: decision.Action,
			Reason: decision.Reason,
			DryRun: opts.DryRun,
		}

		switch decision.Action {
		case resolve.ActionAbort:
			result.add(outcome)
			e.printOutcome(outcome, "")
			return resolve.ErrAborted

		case resolve.ActionSkip:
			result.add(outcome)
			e.printOutcome(outcome, "")

		case resolve.ActionProceed, resolve.ActionReplace:
			if !opts.DryRun {
				if decision.Action == resolve.ActionReplace {
					if err := e.removeDestination(dst, "hub"); err != nil {
						return err
					}
				}
				if err := materialize.CopyDereference(src, dst); err != nil {
					return err
				}
			}
			result.add(outcome)
			e.printOutcome(outcome, "")
		}
	}
	return nil
}
