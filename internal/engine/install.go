package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hubsync/hubsync/internal/filter"
	"github.com/hubsync/hubsync/internal/hub"
	"github.com/hubsync/hubsync/internal/logging"
	"github.com/hubsync/hubsync/internal/materialize"
	"github.com/hubsync/hubsync/internal/model"
	"github.com/hubsync/hubsync/internal/prompt"
	"github.com/hubsync/hubsync/internal/resolve"
)

// InstallOptions configures the install driver.
type InstallOptions struct {
	Selection

	// DryRun logs decisions without touching the filesystem.
	DryRun bool
	// Force replaces diverged local copies without prompting.
	Force bool
	// Policy is the effective conflict policy.
	Policy model.ConflictPolicy
	// Mode is how entries are materialized locally.
	Mode model.InstallMode
	// Fallback is the behavior when symlink creation fails.
	Fallback model.SymlinkFallback
}

// Install reconciles hub entries into each selected agent's local
// directories.
func (e *Engine) Install(ctx context.Context, opts InstallOptions) (*Result, error) {
	defer logging.Timer("install")()

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
			if err := e.installType(agent, artifactType, opts, result); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}

func (e *Engine) installType(agent model.Agent, artifactType model.ArtifactType, opts InstallOptions, result *Result) error {
	target, ok := agent.Target(artifactType)
	if !ok {
		logging.Debug("target not configured",
			logging.Agent(agent.Name),
			logging.Type(artifactType.String()),
		)
		return nil
	}

	names, err := hub.ListEntries(e.layout.Dir(artifactType))
	if err != nil {
		return err
	}
	names = filter.Apply(names, target.Filters)

	for _, name := range names {
		src := e.layout.EntryPath(artifactType, name)
		dst := filepath.Join(target.Path, name)

		decision, err := e.resolver.Resolve(resolve.Request{
			Name:       name,
			SourcePath: src,
			DestPath:   dst,
			Direction:  resolve.DirectionInstall,
			Policy:     opts.Policy,
			Force:      opts.Force,
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
			if decision.Reason == resolve.ReasonPolicy && opts.Policy == model.PolicyLocalWins {
				result.LocalWins = append(result.LocalWins, outcome)
			}
			result.add(outcome)
			e.printOutcome(outcome, "")

		case resolve.ActionProceed, resolve.ActionReplace:
			if !opts.DryRun {
				if decision.Action == resolve.ActionReplace {
					if err := e.removeDestination(dst, agent.Name); err != nil {
						return err
					}
				}
				if err := e.installEntry(src, dst, opts); err != nil {
					return err
				}
			}
			result.add(outcome)
			e.printOutcome(outcome, opts.Mode.String())
		}
	}
	return nil
}

// installEntry materializes one entry per the install mode, escalating
// per the symlink fallback policy when link creation fails.
func (e *Engine) installEntry(src, dst string, opts InstallOptions) error {
	if opts.Mode == model.ModeCopy {
		return materialize.Copy(src, dst)
	}

	linkErr := e.link(src, dst)
	if linkErr == nil {
		return nil
	}

	switch opts.Fallback {
	case model.FallbackError:
		return linkErr

	case model.FallbackCopy:
		logging.Warn("symlink creation failed, copying instead",
			logging.Path(dst),
			logging.Err(linkErr),
		)
		return materialize.Copy(src, dst)

	default: // model.FallbackPrompt
		ok, err := e.prompter.Confirm(
			fmt.Sprintf("Symlink creation failed for %q. Fall back to copy?", dst), true)
		if err != nil {
			if errors.Is(err, prompt.ErrCancelled) {
				return resolve.ErrAborted
			}
			return err
		}
		if !ok {
			return resolve.ErrAborted
		}
		return materialize.Copy(src, dst)
	}
}
