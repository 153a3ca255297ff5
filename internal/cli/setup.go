// Package cli commands for one-time setup and introspection.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/hubsync/hubsync/internal/detect"
	"github.com/hubsync/hubsync/internal/gitrepo"
	"github.com/hubsync/hubsync/internal/hub"
	"github.com/hubsync/hubsync/internal/logging"
	"github.com/hubsync/hubsync/internal/model"
	"github.com/hubsync/hubsync/internal/ui"
	"github.com/hubsync/hubsync/internal/util"
)

func (a *App) initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize the hub repo (clone it when a remote is configured)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "remote",
				Usage: "Clone the hub from this URL instead of creating an empty repo",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return a.runInit(ctx, cmd.String("remote"))
		},
	}
}

func (a *App) runInit(ctx context.Context, remote string) error {
	if remote == "" {
		remote = a.cfg.Hub.Remote
	}

	layout := hub.NewLayout(a.cfg.Hub.Path)

	if _, err := gitrepo.Open(a.cfg.Hub.Path); err == nil {
		fmt.Fprintf(a.Out, "hub already initialized at %s\n", a.cfg.Hub.Path)
		return layout.Ensure()
	}

	var repo *gitrepo.Repo
	var err error
	if remote != "" {
		fmt.Fprintf(a.Out, "cloning %s into %s\n", remote, a.cfg.Hub.Path)
		repo, err = gitrepo.Clone(ctx, remote, a.cfg.Hub.Path)
	} else {
		fmt.Fprintf(a.Out, "creating hub repo at %s\n", a.cfg.Hub.Path)
		repo, err = gitrepo.Init(ctx, a.cfg.Hub.Path)
	}
	if err != nil {
		return err
	}

	if err := layout.Ensure(); err != nil {
		return err
	}

	// Keep the empty type directories tracked so a fresh hub has
	// something to commit and push.
	if remote == "" {
		for _, t := range model.AllArtifactTypes() {
			keep := filepath.Join(layout.Dir(t), ".gitkeep")
			if err := os.WriteFile(keep, nil, 0o600); err != nil {
				return fmt.Errorf("failed to write %q: %w", keep, err)
			}
		}
		if err := repo.AddAll(ctx); err != nil {
			return err
		}
		// Commit identity may not be configured yet; the layout is still
		// usable and push will surface the problem with git's own message.
		if err := repo.Commit(ctx, "hubsync: initialize hub"); err != nil {
			logging.Warn("initial commit failed", logging.Err(err))
			fmt.Fprintln(a.Out, ui.StatusWarning("could not create the initial commit; commit manually or run 'hubsync push' later"))
		}
	}

	if err := a.writeDefaultConfig(); err != nil {
		return err
	}

	fmt.Fprintln(a.Out, ui.StatusSuccess("hub ready"))
	return nil
}

// writeDefaultConfig saves the effective configuration as a starting
// point, but never overwrites an existing config file.
func (a *App) writeDefaultConfig() error {
	path := util.DefaultConfigPath(a.cfg.Home())
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	fmt.Fprintf(a.Out, "writing config to %s\n", path)
	return a.cfg.Save(path)
}

func (a *App) agentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "agents",
		Usage: "Inspect the agent roster",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List configured agents and their targets",
				Action: func(_ context.Context, _ *cli.Command) error {
					a.printAgents()
					return nil
				},
			},
			{
				Name:  "detect",
				Usage: "Probe the filesystem for installed agents",
				Action: func(_ context.Context, _ *cli.Command) error {
					a.printDetected()
					return nil
				},
			},
		},
	}
}

func (a *App) printAgents() {
	names := make([]string, 0, len(a.cfg.Agents))
	for name := range a.cfg.Agents {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		agent, err := a.cfg.Agent(name)
		if err != nil {
			continue
		}

		state := ui.Success("enabled")
		if !agent.Enabled {
			state = ui.Dim("disabled")
		}
		fmt.Fprintf(a.Out, "%s (%s)\n", ui.Bold(name), state)

		for _, t := range model.AllArtifactTypes() {
			target, ok := agent.Target(t)
			if !ok {
				continue
			}
			line := fmt.Sprintf("  %s: %s", t, target.Path)
			if len(target.Filters.Include) > 0 || len(target.Filters.Exclude) > 0 {
				line += " " + ui.Dim(fmt.Sprintf("(include=%v exclude=%v)",
					target.Filters.Include, target.Filters.Exclude))
			}
			fmt.Fprintln(a.Out, line)
		}
	}
}

func (a *App) printDetected() {
	detected := detect.All(a.cfg.Home())
	if len(detected) == 0 {
		fmt.Fprintln(a.Out, "no agents detected")
		return
	}
	for _, d := range detected {
		fmt.Fprintf(a.Out, "%s %s %s\n",
			ui.StatusSuccess(d.Agent),
			d.Root,
			ui.Dim(fmt.Sprintf("(%s, confidence %.2f)", d.Source, d.Confidence)),
		)
	}
}

func (a *App) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display the effective configuration",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Fprintf(a.Out, "%s %s\n", ui.Dim("# config file:"), util.DefaultConfigPath(a.cfg.Home()))
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = a.Out.Write(data)
			return err
		},
	}
}

func (a *App) versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Display version and build information",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Fprintf(a.Out, "hubsync version %s\n", Version)
			fmt.Fprintf(a.Out, "  commit: %s\n", Commit)
			fmt.Fprintf(a.Out, "  built: %s\n", BuildDate)
			return nil
		},
	}
}
