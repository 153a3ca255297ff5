// Package prompt provides the interactive prompt provider used by the
// reconciliation engine. Cancellation (EOF, ctrl+c, esc) is signalled
// distinctly from a normal answer via ErrCancelled.
package prompt

import (
	"errors"
	"os"

	"golang.org/x/term"
)

// ErrCancelled is returned when the user cancels a prompt instead of
// answering it. Callers treat this as an immediate abort.
var ErrCancelled = errors.New("prompt cancelled")

// Option is one selectable choice.
type Option struct {
	// Value is the machine-readable result returned on selection.
	Value string
	// Label is the human-readable text shown to the user.
	Label string
}

// Prompter presents interactive prompts and returns the chosen values.
type Prompter interface {
	// Select presents a single-select prompt and returns the chosen
	// option's value.
	Select(title string, options []Option) (string, error)

	// MultiSelect presents a multi-select prompt and returns the chosen
	// options' values.
	MultiSelect(title string, options []Option) ([]string, error)

	// Confirm presents a yes/no prompt with a default.
	Confirm(message string, def bool) (bool, error)

	// Input presents a free-text prompt with a default.
	Input(message, def string) (string, error)
}

// New returns the prompter appropriate for the current environment:
// the full-screen picker on a terminal, the line-based stdin prompter
// otherwise (pipes, tests, CI).
func New() Prompter {
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return NewPicker()
	}
	return NewStdin(os.Stdin, os.Stdout)
}
