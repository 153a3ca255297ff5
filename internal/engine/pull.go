package engine

import (
	"context"
	"fmt"

	"github.com/hubsync/hubsync/internal/gitrepo"
	"github.com/hubsync/hubsync/internal/logging"
	"github.com/hubsync/hubsync/internal/ui"
)

// PullOptions configures the pull orchestration.
type PullOptions struct {
	Install InstallOptions

	// Rebase integrates remote changes with git pull --rebase.
	Rebase bool
}

// PullResult reports what pull did.
type PullResult struct {
	Install *Result

	// Updated reports whether the pull moved the hub HEAD.
	Updated bool

	// Summary lists the files the pull changed in the hub.
	Summary gitrepo.ChangeSummary
}

// Pull updates the hub from its upstream and then reinstalls: fetch,
// pull, install. A dirty hub working tree stops the run before any
// network traffic so collected-but-unpushed work is never clobbered.
func (e *Engine) Pull(ctx context.Context, opts PullOptions) (*PullResult, error) {
	defer logging.Timer("pull")()

	repo, err := gitrepo.Open(e.cfg.Hub.Path)
	if err != nil {
		return nil, err
	}

	dirty, err := repo.Dirty(ctx)
	if err != nil {
		return nil, err
	}
	if dirty {
		return nil, fmt.Errorf("hub has uncommitted changes; run 'hubsync push' or clean it up first")
	}

	result := &PullResult{}

	if opts.Install.DryRun {
		fmt.Fprintln(e.out, ui.Warning("[dry-run]")+" skipping fetch and pull")
	} else {
		before, err := repo.Head(ctx)
		if err != nil {
			return result, err
		}

		if err := repo.Fetch(ctx); err != nil {
			return result, err
		}
		if err := repo.Pull(ctx, opts.Rebase); err != nil {
			return result, err
		}

		after, err := repo.Head(ctx)
		if err != nil {
			return result, err
		}
		result.Updated = before != after

		if result.Updated && before != "" {
			summary, err := repo.ChangedFiles(ctx, before, after)
			if err != nil {
				logging.Warn("failed to summarize pull", logging.Err(err))
			} else {
				result.Summary = summary
			}
		}

		if result.Updated {
			fmt.Fprintln(e.out, ui.StatusSuccess("hub updated"))
			e.printSummary(result.Summary)
		} else {
			fmt.Fprintln(e.out, "hub already up to date")
		}
	}

	installed, err := e.Install(ctx, opts.Install)
	result.Install = installed
	return result, err
}
