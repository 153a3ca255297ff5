// Package cli provides the command-line interface for hubsync.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hubsync/hubsync/internal/config"
	"github.com/hubsync/hubsync/internal/logging"
	"github.com/hubsync/hubsync/internal/prompt"
	"github.com/hubsync/hubsync/internal/ui"
	"github.com/hubsync/hubsync/internal/util"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

// App bundles the dependencies commands need. Tests inject their own
// prompter and output.
type App struct {
	// Prompter handles interactive prompts. Defaults to prompt.New().
	Prompter prompt.Prompter
	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer

	cfg *config.Config
}

// Run executes the CLI with the default interactive dependencies.
func Run(ctx context.Context, args []string) error {
	return (&App{}).Run(ctx, args)
}

// Run executes the CLI application with the given context and arguments.
func (a *App) Run(ctx context.Context, args []string) error {
	if a.Out == nil {
		a.Out = os.Stdout
	}

	app := &cli.Command{
		Name:    "hubsync",
		Usage:   "Synchronize skills and commands between a hub repo and local agents",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.StringFlag{
				Name:  "home",
				Usage: "Override the home root every default path resolves under",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Override the config file location",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			configureColors(cmd)
			if err := configureLogging(cmd); err != nil {
				return ctx, err
			}
			return ctx, a.loadConfig(cmd)
		},
		Commands: []*cli.Command{
			a.initCommand(),
			a.installCommand(),
			a.collectCommand(),
			a.statusCommand(),
			a.pushCommand(),
			a.pullCommand(),
			a.agentsCommand(),
			a.configCommand(),
			a.versionCommand(),
		},
	}
	return app.Run(ctx, args)
}

// loadConfig resolves the home root once and loads the layered
// configuration. Everything downstream reads paths from the config,
// never from the environment.
func (a *App) loadConfig(cmd *cli.Command) error {
	home := cmd.String("home")
	if home == "" {
		home = os.Getenv("HUBSYNC_HOME")
	}
	if home == "" {
		home = util.HomeDir()
	}
	if home == "" {
		return fmt.Errorf("cannot determine home directory; pass --home")
	}

	cfg, err := config.Load(config.Options{Home: home, Path: cmd.String("config")})
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.Prompter == nil {
		a.Prompter = prompt.New()
	}
	return nil
}

// configureColors sets up color output based on CLI flags.
func configureColors(cmd *cli.Command) {
	if cmd.Bool("no-color") {
		ui.DisableColors()
	}
}

// configureLogging sets up the logging level based on CLI flags.
func configureLogging(cmd *cli.Command) error {
	opts := logging.DefaultOptions()

	if cmd.Bool("debug") {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	} else if cmd.Bool("verbose") {
		opts.Level = slog.LevelInfo
	}

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logging.Debug("logging configured", slog.String("level", opts.Level.String()))

	return nil
}
