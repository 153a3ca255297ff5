package engine

import (
	"github.com/hubsync/hubsync/internal/model"
	"github.com/hubsync/hubsync/internal/resolve"
)

// Outcome records what happened (or, under dry-run, what would have
// happened) for one entry.
type Outcome struct {
	Agent  string
	Type   model.ArtifactType
	Name   string
	Action resolve.Action
	Reason resolve.Reason
	DryRun bool
}

// Result aggregates the outcomes of one driver run.
type Result struct {
	Outcomes []Outcome

	// LocalWins lists install entries whose local copy was kept because
	// the policy favored it. Callers may offer to collect these back
	// into the hub.
	LocalWins []Outcome
}

func (r *Result) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Counts tallies outcomes by action.
func (r *Result) Counts() (created, replaced, skipped int) {
	for _, o := range r.Outcomes {
		switch o.Action {
		case resolve.ActionProceed:
			created++
		case resolve.ActionReplace:
			replaced++
		case resolve.ActionSkip:
			skipped++
		}
	}
	return created, replaced, skipped
}

// Mutated reports whether any entry was (or would be) written.
func (r *Result) Mutated() bool {
	created, replaced, _ := r.Counts()
	return created+replaced > 0
}
