package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hubsync/hubsync/internal/gitrepo"
	"github.com/hubsync/hubsync/internal/logging"
	"github.com/hubsync/hubsync/internal/ui"
)

// PushOptions configures the push orchestration.
type PushOptions struct {
	Collect CollectOptions

	// Message overrides the generated commit message.
	Message string
}

// PushResult reports what push did.
type PushResult struct {
	Collect *Result

	// Committed reports whether a commit was created.
	Committed bool
	// Pushed reports whether the commit reached the upstream.
	Pushed bool

	// Summary lists the files the created commit touched.
	Summary gitrepo.ChangeSummary
}

// Push runs collect and then commits and publishes the hub changes:
// collect, stage everything, commit, push. Steps run sequentially and
// the first failure is terminal.
func (e *Engine) Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	defer logging.Timer("push")()

	collected, err := e.Collect(ctx, opts.Collect)
	if err != nil {
		return &PushResult{Collect: collected}, err
	}
	result := &PushResult{Collect: collected}

	repo, err := gitrepo.Open(e.cfg.Hub.Path)
	if err != nil {
		return result, err
	}

	if opts.Collect.DryRun {
		paths, err := repo.Porcelain(ctx)
		if err != nil {
			return result, err
		}
		if len(paths) == 0 {
			fmt.Fprintln(e.out, "hub is clean, nothing to push")
			return result, nil
		}
		fmt.Fprintln(e.out, ui.Warning("[dry-run]")+" would commit:")
		for _, path := range paths {
			fmt.Fprintf(e.out, "  %s\n", path)
		}
		return result, nil
	}

	dirty, err := repo.Dirty(ctx)
	if err != nil {
		return result, err
	}
	if !dirty {
		fmt.Fprintln(e.out, "hub is clean, nothing to push")
		return result, nil
	}

	before, err := repo.Head(ctx)
	if err != nil {
		return result, err
	}

	if err := repo.AddAll(ctx); err != nil {
		return result, err
	}
	message := opts.Message
	if message == "" {
		message = fmt.Sprintf("hubsync: collect %s", time.Now().Format("2006-01-02 15:04:05"))
	}
	if err := repo.Commit(ctx, message); err != nil {
		return result, err
	}
	result.Committed = true

	after, err := repo.Head(ctx)
	if err != nil {
		return result, err
	}
	if before != "" {
		summary, err := repo.ChangedFiles(ctx, before, after)
		if err != nil {
			logging.Warn("failed to summarize commit", logging.Err(err))
		} else {
			result.Summary = summary
		}
	}

	if !repo.HasUpstream(ctx) {
		logging.Warn("hub has no upstream, commit kept local")
		fmt.Fprintln(e.out, ui.Warning("committed locally; no upstream configured, skipping push"))
		e.printSummary(result.Summary)
		return result, nil
	}

	if err := repo.Push(ctx); err != nil {
		return result, err
	}
	result.Pushed = true

	fmt.Fprintln(e.out, ui.StatusSuccess("pushed hub changes"))
	e.printSummary(result.Summary)
	return result, nil
}

// printSummary writes a file-level change summary.
func (e *Engine) printSummary(summary gitrepo.ChangeSummary) {
	if summary.Empty() {
		return
	}
	for _, path := range summary.Added {
		fmt.Fprintf(e.out, "  %s %s\n", ui.Success("A"), path)
	}
	for _, path := range summary.Updated {
		fmt.Fprintf(e.out, "  %s %s\n", ui.Info("M"), path)
	}
	for _, path := range summary.Deleted {
		fmt.Fprintf(e.out, "  %s %s\n", ui.Error("D"), path)
	}
}
