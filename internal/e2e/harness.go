// Package e2e provides end-to-end testing infrastructure for the
// hubsync CLI: an in-process harness with an isolated home directory,
// fixture seeding, and output assertions.
package e2e

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hubsync/hubsync/internal/cli"
	"github.com/hubsync/hubsync/internal/prompt"
	"github.com/hubsync/hubsync/internal/resolve"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the exit code main would produce: 0 for success,
	// 130 for a user abort, 1 otherwise.
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness runs CLI commands in-process against an isolated home
// directory.
type Harness struct {
	t       *testing.T
	homeDir string
}

// NewHarness creates a harness over a fresh temporary home. Every
// default path (hub, config, backups, agent targets) resolves under it
// via the --home flag, so nothing touches the real user environment.
func NewHarness(t *testing.T) *Harness {
	t.Helper()
	return &Harness{t: t, homeDir: t.TempDir()}
}

// HomeDir returns the isolated home directory for this harness.
func (h *Harness) HomeDir() string {
	return h.homeDir
}

// Path joins path elements under the harness home.
func (h *Harness) Path(elem ...string) string {
	return filepath.Join(append([]string{h.homeDir}, elem...)...)
}

// Run executes a CLI command and captures its output. Prompts are
// answered from the empty stream, so any prompt cancels.
func (h *Harness) Run(args ...string) *Result {
	return h.RunWithStdin("", args...)
}

// RunWithStdin executes a CLI command, answering prompts from the
// given input.
func (h *Harness) RunWithStdin(stdin string, args ...string) *Result {
	h.t.Helper()

	var out bytes.Buffer
	app := &cli.App{
		Prompter: prompt.NewStdin(strings.NewReader(stdin), &out),
		Out:      &out,
	}

	full := append([]string{"hubsync", "--home", h.homeDir, "--no-color"}, args...)
	err := app.Run(context.Background(), full)

	exitCode := 0
	switch {
	case errors.Is(err, resolve.ErrAborted), errors.Is(err, prompt.ErrCancelled):
		exitCode = 130
	case err != nil:
		exitCode = 1
	}

	return &Result{
		Stdout:   out.String(),
		Err:      err,
		ExitCode: exitCode,
	}
}
