// Package cli command definitions for the reconciliation drivers.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/hubsync/hubsync/internal/engine"
	"github.com/hubsync/hubsync/internal/model"
	"github.com/hubsync/hubsync/internal/prompt"
	"github.com/hubsync/hubsync/internal/ui"
)

// engine builds the reconciliation engine over the loaded config.
func (a *App) engine() *engine.Engine {
	return engine.New(a.cfg, a.Prompter, a.Out)
}

// selectionFlags are shared by every driver command.
func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "agent",
			Aliases: []string{"a"},
			Usage:   "Restrict to the named agent(s)",
		},
		&cli.StringSliceFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Usage:   "Restrict to an artifact type (skills, commands)",
		},
	}
}

// parseSelection reads the shared selection flags.
func parseSelection(cmd *cli.Command) (engine.Selection, error) {
	sel := engine.Selection{Agents: cmd.StringSlice("agent")}
	for _, s := range cmd.StringSlice("type") {
		t, err := model.ParseArtifactType(s)
		if err != nil {
			return engine.Selection{}, err
		}
		sel.Types = append(sel.Types, t)
	}
	return sel, nil
}

// parsePolicy resolves the effective conflict policy: the --conflict
// flag when given, the configured default otherwise.
func (a *App) parsePolicy(cmd *cli.Command) (model.ConflictPolicy, error) {
	if s := cmd.String("conflict"); s != "" {
		return model.ParseConflictPolicy(s)
	}
	return a.cfg.ConflictPolicy(), nil
}

func (a *App) installCommand() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Materialize hub entries into each agent's local directories",
		Flags: append(selectionFlags(),
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview changes without modifying files",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Replace diverged local copies without prompting",
			},
			&cli.StringFlag{
				Name:  "conflict",
				Usage: "Conflict policy for this run (prompt, repo-wins, local-wins)",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Install mode for this run (symlink, copy)",
			},
			&cli.StringFlag{
				Name:  "fallback",
				Usage: "Symlink fallback for this run (copy, error, prompt)",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := a.installOptions(cmd)
			if err != nil {
				return err
			}

			eng := a.engine()
			result, err := eng.Install(ctx, opts)
			if err != nil {
				return err
			}
			a.printCounts("install", result, opts.DryRun)

			return a.offerCollectBack(ctx, eng, result, opts)
		},
	}
}

// installOptions assembles install options from flags and config.
func (a *App) installOptions(cmd *cli.Command) (engine.InstallOptions, error) {
	sel, err := parseSelection(cmd)
	if err != nil {
		return engine.InstallOptions{}, err
	}
	policy, err := a.parsePolicy(cmd)
	if err != nil {
		return engine.InstallOptions{}, err
	}

	mode := a.cfg.InstallMode()
	if s := cmd.String("mode"); s != "" {
		if mode, err = model.ParseInstallMode(s); err != nil {
			return engine.InstallOptions{}, err
		}
	}
	fallback := a.cfg.SymlinkFallback()
	if s := cmd.String("fallback"); s != "" {
		if fallback, err = model.ParseSymlinkFallback(s); err != nil {
			return engine.InstallOptions{}, err
		}
	}

	return engine.InstallOptions{
		Selection: sel,
		DryRun:    cmd.Bool("dry-run"),
		Force:     cmd.Bool("force"),
		Policy:    policy,
		Mode:      mode,
		Fallback:  fallback,
	}, nil
}

// offerCollectBack asks whether entries kept by local-wins decisions
// should be collected into the hub, and collects them on consent. Only
// interactive, non-dry-run runs under the prompt policy ask.
func (a *App) offerCollectBack(ctx context.Context, eng *engine.Engine, result *engine.Result, opts engine.InstallOptions) error {
	if len(result.LocalWins) == 0 || opts.DryRun || opts.Policy != model.PolicyPrompt {
		return nil
	}

	agentSet := make(map[string]bool)
	var names []string
	for _, o := range result.LocalWins {
		agentSet[o.Agent] = true
		names = append(names, o.Name)
	}
	agents := make([]string, 0, len(agentSet))
	for agent := range agentSet {
		agents = append(agents, agent)
	}
	sort.Strings(agents)

	ok, err := a.Prompter.Confirm(
		fmt.Sprintf("%d diverged entr%s kept the local copy. Collect them into the hub now?",
			len(names), pluralY(len(names))), false)
	if err != nil {
		if errors.Is(err, prompt.ErrCancelled) {
			return nil
		}
		return err
	}
	if !ok {
		return nil
	}

	_, err = eng.Collect(ctx, engine.CollectOptions{
		Selection: engine.Selection{Agents: agents, Types: opts.Types},
		Policy:    model.PolicyLocalWins,
		Only:      names,
	})
	return err
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func (a *App) collectCommand() *cli.Command {
	return &cli.Command{
		Name:      "collect",
		Usage:     "Gather local entries from agents back into the hub",
		UsageText: "hubsync collect [options] [entry...]",
		Flags: append(selectionFlags(),
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview changes without modifying the hub",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Replace diverged hub copies and import extras without prompting",
			},
			&cli.BoolFlag{
				Name:  "import-extras",
				Usage: "Import local-only entries without asking",
			},
			&cli.StringFlag{
				Name:  "conflict",
				Usage: "Conflict policy for this run (prompt, repo-wins, local-wins)",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := a.collectOptions(cmd)
			if err != nil {
				return err
			}

			result, err := a.engine().Collect(ctx, opts)
			if err != nil {
				return err
			}
			a.printCounts("collect", result, opts.DryRun)
			return nil
		},
	}
}

func (a *App) collectOptions(cmd *cli.Command) (engine.CollectOptions, error) {
	sel, err := parseSelection(cmd)
	if err != nil {
		return engine.CollectOptions{}, err
	}
	policy, err := a.parsePolicy(cmd)
	if err != nil {
		return engine.CollectOptions{}, err
	}

	return engine.CollectOptions{
		Selection:    sel,
		DryRun:       cmd.Bool("dry-run"),
		Force:        cmd.Bool("force"),
		ImportExtras: cmd.Bool("import-extras"),
		Policy:       policy,
		Only:         cmd.Args().Slice(),
	}, nil
}

func (a *App) statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Report how local directories relate to the hub, without changing anything",
		Flags: append(selectionFlags(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit the report as JSON",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sel, err := parseSelection(cmd)
			if err != nil {
				return err
			}

			report, err := a.engine().Status(ctx, sel)
			if err != nil {
				return err
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(a.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			a.printReport(report)
			return nil
		},
	}
}

// printReport renders the status report as indented text.
func (a *App) printReport(report engine.Report) {
	agents := make([]string, 0, len(report))
	for agent := range report {
		agents = append(agents, agent)
	}
	sort.Strings(agents)

	for _, agent := range agents {
		fmt.Fprintln(a.Out, ui.Header(agent))
		for _, ts := range report[agent] {
			fmt.Fprintf(a.Out, "  %s\n", ui.Bold(ts.Type.String()))

			names := make([]string, 0, len(ts.Entries))
			for name := range ts.Entries {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				entry := ts.Entries[name]
				fmt.Fprintf(a.Out, "    %s %s\n", stateSymbol(entry.State), name)
				if entry.State == engine.StateDiverged {
					fmt.Fprintf(a.Out, "      %s\n", ui.Dim("hub:   "+entry.RepoIdentity))
					fmt.Fprintf(a.Out, "      %s\n", ui.Dim("local: "+entry.LocalIdentity))
				}
			}
			for _, name := range ts.LocalOnly {
				fmt.Fprintf(a.Out, "    %s %s %s\n", ui.Warning(ui.SymbolWarning), name, ui.Dim("(local only)"))
			}
		}
	}
}

func stateSymbol(state engine.State) string {
	switch state {
	case engine.StateOKSymlink, engine.StateOKCopy:
		return ui.Success(ui.SymbolSuccess)
	case engine.StateBrokenSymlink, engine.StateDiverged:
		return ui.Error(ui.SymbolError)
	case engine.StateRemoteOnly:
		return ui.Dim(ui.SymbolSkipped)
	default:
		return "?"
	}
}

func (a *App) pushCommand() *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: "Collect local changes, commit them to the hub, and push upstream",
		Flags: append(selectionFlags(),
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview what would be collected and committed",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Replace diverged hub copies and import extras without prompting",
			},
			&cli.BoolFlag{
				Name:  "import-extras",
				Usage: "Import local-only entries without asking",
			},
			&cli.StringFlag{
				Name:  "conflict",
				Usage: "Conflict policy for this run (prompt, repo-wins, local-wins)",
			},
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "Commit message (default: generated)",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := a.collectOptions(cmd)
			if err != nil {
				return err
			}

			_, err = a.engine().Push(ctx, engine.PushOptions{
				Collect: opts,
				Message: cmd.String("message"),
			})
			return err
		},
	}
}

func (a *App) pullCommand() *cli.Command {
	return &cli.Command{
		Name:  "pull",
		Usage: "Update the hub from its upstream, then reinstall",
		Flags: append(selectionFlags(),
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview the install without fetching or modifying files",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Replace diverged local copies without prompting",
			},
			&cli.BoolFlag{
				Name:  "rebase",
				Usage: "Integrate remote changes with git pull --rebase",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "conflict",
				Usage: "Conflict policy for this run (prompt, repo-wins, local-wins)",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Install mode for this run (symlink, copy)",
			},
			&cli.StringFlag{
				Name:  "fallback",
				Usage: "Symlink fallback for this run (copy, error, prompt)",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := a.installOptions(cmd)
			if err != nil {
				return err
			}

			eng := a.engine()
			result, err := eng.Pull(ctx, engine.PullOptions{
				Install: opts,
				Rebase:  cmd.Bool("rebase"),
			})
			if err != nil {
				return err
			}
			a.printCounts("install", result.Install, opts.DryRun)

			return a.offerCollectBack(ctx, eng, result.Install, opts)
		},
	}
}

// printCounts writes the one-line summary every driver run ends with.
func (a *App) printCounts(op string, result *engine.Result, dryRun bool) {
	created, replaced, skipped := result.Counts()
	prefix := ""
	if dryRun {
		prefix = ui.Warning("[dry-run]") + " "
	}
	fmt.Fprintf(a.Out, "%s%s: %d created, %d replaced, %d skipped\n",
		prefix, op, created, replaced, skipped)
}
