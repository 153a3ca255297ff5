// Package resolve implements the conflict-resolution state machine at
// the heart of reconciliation. One Resolve function serves both sync
// directions; it is parameterized by direction and extra-ness rather
// than duplicated per driver.
package resolve

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/hubsync/hubsync/internal/identity"
	"github.com/hubsync/hubsync/internal/logging"
	"github.com/hubsync/hubsync/internal/model"
	"github.com/hubsync/hubsync/internal/prompt"
	"github.com/hubsync/hubsync/internal/ui"
)

// ErrAborted signals that the user aborted the whole operation. It
// propagates uncaught to the command boundary; entries already
// materialized stay materialized.
var ErrAborted = errors.New("operation aborted")

// Direction states which side is authoritative for the current driver.
type Direction int

const (
	// DirectionInstall pushes hub entries to local directories; the hub
	// is authoritative under repo-wins.
	DirectionInstall Direction = iota

	// DirectionCollect pushes local entries into the hub; the local
	// side is authoritative under local-wins.
	DirectionCollect
)

// String returns the direction name.
func (d Direction) String() string {
	if d == DirectionCollect {
		return "collect"
	}
	return "install"
}

// Action is the resolver's verdict for one entry.
type Action string

const (
	// ActionProceed creates the destination; nothing is there to replace.
	ActionProceed Action = "proceed"
	// ActionSkip leaves the destination untouched.
	ActionSkip Action = "skip"
	// ActionReplace removes the destination (after backup) and recreates it.
	ActionReplace Action = "replace"
	// ActionAbort terminates the whole operation immediately.
	ActionAbort Action = "abort"
)

// Reason records why the resolver reached its action.
type Reason string

const (
	// ReasonCreate: the destination was missing.
	ReasonCreate Reason = "create"
	// ReasonIdentical: source and destination identities are equal.
	ReasonIdentical Reason = "identical"
	// ReasonLinked: the destination is a symlink resolving to the source.
	ReasonLinked Reason = "linked"
	// ReasonPolicy: a non-interactive policy decided.
	ReasonPolicy Reason = "policy"
	// ReasonPrompt: the user decided interactively.
	ReasonPrompt Reason = "prompt"
	// ReasonForced: the force flag decided.
	ReasonForced Reason = "forced"
	// ReasonExtra: the entry exists only on the authoritative side.
	ReasonExtra Reason = "extra"
)

// Decision is the resolver's full answer for one entry.
type Decision struct {
	Action Action
	Reason Reason
}

// Request describes one pairing to resolve. SourcePath is the
// authoritative side being pushed; DestPath is the side being written.
type Request struct {
	Name       string
	SourcePath string
	DestPath   string
	Direction  Direction
	Policy     model.ConflictPolicy

	// Force replaces diverged destinations without prompting and
	// imports extras unconditionally. It never overrides the identical
	// or correctly-linked skips.
	Force bool

	// Extra marks a collect pairing whose hub side has no entry.
	Extra bool

	// ImportExtras imports extras without asking.
	ImportExtras bool
}

// Resolver decides actions, escalating to the prompter when the policy
// requires it.
type Resolver struct {
	Prompter prompt.Prompter
	// Out receives diff output during the show-diff loop. Defaults to
	// os.Stdout.
	Out io.Writer
}

// New creates a resolver around the given prompter.
func New(prompter prompt.Prompter) *Resolver {
	return &Resolver{Prompter: prompter, Out: os.Stdout}
}

// Resolve runs the state machine for one pairing. Prompts still run
// under dry-run; the caller is responsible for not materializing.
func (r *Resolver) Resolve(req Request) (Decision, error) {
	dst := identity.Classify(req.DestPath)

	// Destination missing: plain create, except collect extras which
	// need an explicit opt-in.
	if dst.Kind == identity.KindMissing {
		if req.Extra && req.Direction == DirectionCollect {
			return r.resolveExtra(req)
		}
		return Decision{ActionProceed, ReasonCreate}, nil
	}

	// A destination already linked to the source is satisfied no matter
	// what the content comparison would say.
	if identity.LinkedTo(req.DestPath, req.SourcePath) {
		return Decision{ActionSkip, ReasonLinked}, nil
	}

	src := identity.Classify(req.SourcePath)
	if identity.Equal(src, dst) {
		return Decision{ActionSkip, ReasonIdentical}, nil
	}

	// Diverged.
	if req.Force {
		return Decision{ActionReplace, ReasonForced}, nil
	}

	switch req.Policy {
	case model.PolicyRepoWins:
		if req.Direction == DirectionInstall {
			return Decision{ActionReplace, ReasonPolicy}, nil
		}
		return Decision{ActionSkip, ReasonPolicy}, nil

	case model.PolicyLocalWins:
		if req.Direction == DirectionCollect {
			return Decision{ActionReplace, ReasonPolicy}, nil
		}
		return Decision{ActionSkip, ReasonPolicy}, nil

	default:
		return r.promptConflict(req)
	}
}

// resolveExtra handles a collect pairing that exists only locally.
// Force imports without asking, the same way it silences conflict
// prompts.
func (r *Resolver) resolveExtra(req Request) (Decision, error) {
	if req.ImportExtras || req.Force {
		return Decision{ActionProceed, ReasonExtra}, nil
	}

	if req.Policy == model.PolicyPrompt {
		ok, err := r.Prompter.Confirm(
			fmt.Sprintf("%q exists only locally. Import it into the hub?", req.Name), false)
		if err != nil {
			if errors.Is(err, prompt.ErrCancelled) {
				return Decision{ActionAbort, ReasonPrompt}, nil
			}
			return Decision{}, err
		}
		if ok {
			return Decision{ActionProceed, ReasonPrompt}, nil
		}
		return Decision{ActionSkip, ReasonPrompt}, nil
	}

	return Decision{ActionSkip, ReasonExtra}, nil
}

// Prompt option values for the conflict loop.
const (
	choiceReplace = "replace"
	choiceSkip    = "skip"
	choiceAbort   = "abort"
	choiceDiff    = "diff"
)

// promptConflict runs the interactive loop. The show-diff choice is a
// self-loop: it prints a unified diff and re-prompts without consuming
// the decision.
func (r *Resolver) promptConflict(req Request) (Decision, error) {
	srcText, dstText, textual := readTextPair(req.SourcePath, req.DestPath)

	var overwritten string
	if req.Direction == DirectionInstall {
		overwritten = "local copy"
	} else {
		overwritten = "hub copy"
	}

	options := []prompt.Option{
		{Value: choiceReplace, Label: fmt.Sprintf("Replace the %s", overwritten)},
		{Value: choiceSkip, Label: fmt.Sprintf("Keep the %s (skip)", overwritten)},
		{Value: choiceAbort, Label: "Abort the operation"},
	}
	if textual {
		options = append(options, prompt.Option{Value: choiceDiff, Label: "Show diff"})
	}

	title := fmt.Sprintf("Conflict: %q differs between hub and local", req.Name)
	for {
		choice, err := r.Prompter.Select(title, options)
		if err != nil {
			if errors.Is(err, prompt.ErrCancelled) {
				return Decision{ActionAbort, ReasonPrompt}, nil
			}
			return Decision{}, err
		}

		switch choice {
		case choiceReplace:
			return Decision{ActionReplace, ReasonPrompt}, nil
		case choiceSkip:
			return Decision{ActionSkip, ReasonPrompt}, nil
		case choiceAbort:
			return Decision{ActionAbort, ReasonPrompt}, nil
		case choiceDiff:
			r.showDiff(req, srcText, dstText)
		default:
			logging.Warn("unknown conflict choice", logging.Action(choice))
		}
	}
}

func (r *Resolver) showDiff(req Request, srcText, dstText string) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	// Destination first: applying the source turns it into the source.
	diff := ui.UnifiedDiff(req.DestPath, req.SourcePath, dstText, srcText)
	fmt.Fprintln(out, ui.ColorizeDiff(diff))
}

// maxDiffSize bounds how much file content the diff loop will load.
const maxDiffSize = 1 << 20

// readTextPair loads both sides when they are plain text files small
// enough to diff. The show-diff option is only offered when it reports
// true.
func readTextPair(srcPath, dstPath string) (srcText, dstText string, ok bool) {
	src, ok := readText(srcPath)
	if !ok {
		return "", "", false
	}
	dst, ok := readText(dstPath)
	if !ok {
		return "", "", false
	}
	return src, dst, true
}

func readText(path string) (string, bool) {
	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() > maxDiffSize {
		return "", false
	}
	// #nosec G304 - path comes from directory enumeration of trusted roots
	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(content) || bytes.IndexByte(content, 0) >= 0 {
		return "", false
	}
	return string(content), true
}
