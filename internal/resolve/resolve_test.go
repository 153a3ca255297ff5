package resolve

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hubsync/hubsync/internal/model"
	"github.com/hubsync/hubsync/internal/prompt"
	"github.com/hubsync/hubsync/internal/util"
)

// scriptedPrompter answers prompts from queued responses and records
// what was asked.
type scriptedPrompter struct {
	selects  []string
	confirms []bool
	cancel   bool

	selectCalls  int
	confirmCalls int
}

func (s *scriptedPrompter) Select(_ string, _ []prompt.Option) (string, error) {
	if s.cancel {
		return "", prompt.ErrCancelled
	}
	if s.selectCalls >= len(s.selects) {
		return "", prompt.ErrCancelled
	}
	v := s.selects[s.selectCalls]
	s.selectCalls++
	return v, nil
}

func (s *scriptedPrompter) MultiSelect(_ string, _ []prompt.Option) ([]string, error) {
	return nil, prompt.ErrCancelled
}

func (s *scriptedPrompter) Confirm(_ string, _ bool) (bool, error) {
	if s.cancel {
		return false, prompt.ErrCancelled
	}
	if s.confirmCalls >= len(s.confirms) {
		return false, prompt.ErrCancelled
	}
	v := s.confirms[s.confirmCalls]
	s.confirmCalls++
	return v, nil
}

func (s *scriptedPrompter) Input(_, def string) (string, error) {
	return def, nil
}

// pair builds a diverged source/destination file pair.
func pair(t *testing.T, srcContent, dstContent string) (src, dst string) {
	t.Helper()
	dir := t.TempDir()
	src = filepath.Join(dir, "hub", "foo")
	dst = filepath.Join(dir, "local", "foo")
	if srcContent != "" {
		util.WriteFile(t, src, srcContent)
	}
	if dstContent != "" {
		util.WriteFile(t, dst, dstContent)
	}
	return src, dst
}

func TestResolve_DestinationMissing(t *testing.T) {
	src, dst := pair(t, "repo\n", "")
	r := New(&scriptedPrompter{})

	got, err := r.Resolve(Request{Name: "foo", SourcePath: src, DestPath: dst, Direction: DirectionInstall, Policy: model.PolicyPrompt})
	util.AssertNoError(t, err)
	util.AssertEqual(t, got, Decision{ActionProceed, ReasonCreate})
}

func TestResolve_IdenticalAlwaysSkips(t *testing.T) {
	for _, policy := range model.AllConflictPolicies() {
		for _, force := range []bool{false, true} {
			src, dst := pair(t, "same\n", "same\n")
			p := &scriptedPrompter{}
			r := New(p)

			got, err := r.Resolve(Request{Name: "foo", SourcePath: src, DestPath: dst, Direction: DirectionInstall, Policy: policy, Force: force})
			util.AssertNoError(t, err)
			util.AssertEqual(t, got, Decision{ActionSkip, ReasonIdentical})
			if p.selectCalls != 0 || p.confirmCalls != 0 {
				t.Errorf("identical entries must never prompt (policy=%s force=%v)", policy, force)
			}
		}
	}
}

func TestResolve_LinkedSkipsBeforeIdentityCheck(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hub", "foo")
	util.WriteFile(t, filepath.Join(src, "SKILL.md"), "# foo\n")
	dst := filepath.Join(dir, "local", "foo")
	util.Symlink(t, src, dst)

	// Identities differ (directory vs symlink) but the link resolves to
	// the source, so the linked skip takes precedence.
	r := New(&scriptedPrompter{})
	got, err := r.Resolve(Request{Name: "foo", SourcePath: src, DestPath: dst, Direction: DirectionInstall, Policy: model.PolicyRepoWins, Force: true})
	util.AssertNoError(t, err)
	util.AssertEqual(t, got, Decision{ActionSkip, ReasonLinked})
}

func TestResolve_DivergedPolicyMatrix(t *testing.T) {
	tests := []struct {
		name      string
		policy    model.ConflictPolicy
		direction Direction
		want      Action
	}{
		{"repoWins install replaces", model.PolicyRepoWins, DirectionInstall, ActionReplace},
		{"repoWins collect skips", model.PolicyRepoWins, DirectionCollect, ActionSkip},
		{"localWins install skips", model.PolicyLocalWins, DirectionInstall, ActionSkip},
		{"localWins collect replaces", model.PolicyLocalWins, DirectionCollect, ActionReplace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst := pair(t, "repo\n", "local\n")
			r := New(&scriptedPrompter{})

			got, err := r.Resolve(Request{Name: "foo", SourcePath: src, DestPath: dst, Direction: tt.direction, Policy: tt.policy})
			util.AssertNoError(t, err)
			util.AssertEqual(t, got, Decision{tt.want, ReasonPolicy})
		})
	}
}

func TestResolve_ForceReplacesWithoutPrompting(t *testing.T) {
	src, dst := pair(t, "repo\n", "local\n")
	p := &scriptedPrompter{}
	r := New(p)

	got, err := r.Resolve(Request{Name: "foo", SourcePath: src, DestPath: dst, Direction: DirectionInstall, Policy: model.PolicyPrompt, Force: true})
	util.AssertNoError(t, err)
	util.AssertEqual(t, got, Decision{ActionReplace, ReasonForced})
	if p.selectCalls != 0 {
		t.Error("force must bypass the prompt")
	}
}

func TestResolve_PromptDecisions(t *testing.T) {
	tests := []struct {
		choice string
		want   Action
	}{
		{"replace", ActionReplace},
		{"skip", ActionSkip},
		{"abort", ActionAbort},
	}

	for _, tt := range tests {
		t.Run(tt.choice, func(t *testing.T) {
			src, dst := pair(t, "repo\n", "local\n")
			r := New(&scriptedPrompter{selects: []string{tt.choice}})

			got, err := r.Resolve(Request{Name: "foo", SourcePath: src, DestPath: dst, Direction: DirectionInstall, Policy: model.PolicyPrompt})
			util.AssertNoError(t, err)
			util.AssertEqual(t, got, Decision{tt.want, ReasonPrompt})
		})
	}
}

func TestResolve_ShowDiffReprompts(t *testing.T) {
	src, dst := pair(t, "repo\n", "local\n")
	p := &scriptedPrompter{selects: []string{"diff", "replace"}}
	r := New(p)
	var out bytes.Buffer
	r.Out = &out

	got, err := r.Resolve(Request{Name: "foo", SourcePath: src, DestPath: dst, Direction: DirectionInstall, Policy: model.PolicyPrompt})
	util.AssertNoError(t, err)
	util.AssertEqual(t, got, Decision{ActionReplace, ReasonPrompt})

	if p.selectCalls != 2 {
		t.Errorf("show diff should re-prompt, got %d select calls", p.selectCalls)
	}
	diff := out.String()
	if !strings.Contains(diff, "-local") || !strings.Contains(diff, "+repo") {
		t.Errorf("unexpected diff output:\n%s", diff)
	}
}

func TestResolve_DiffNotOfferedForBinary(t *testing.T) {
	src, dst := pair(t, "repo\x00binary", "local\n")
	// Only one scripted answer: if diff were offered and chosen the test
	// would consume it; instead assert the option list lacks diff.
	var sawDiff bool
	p := &optionInspector{answer: "skip", inspect: func(options []prompt.Option) {
		for _, o := range options {
			if o.Value == "diff" {
				sawDiff = true
			}
		}
	}}
	r := New(p)

	_, err := r.Resolve(Request{Name: "foo", SourcePath: src, DestPath: dst, Direction: DirectionInstall, Policy: model.PolicyPrompt})
	util.AssertNoError(t, err)
	if sawDiff {
		t.Error("diff must only be offered for text file pairs")
	}
}

// optionInspector records the options offered to Select.
type optionInspector struct {
	answer  string
	inspect func([]prompt.Option)
}

func (o *optionInspector) Select(_ string, options []prompt.Option) (string, error) {
	o.inspect(options)
	return o.answer, nil
}
func (o *optionInspector) MultiSelect(_ string, _ []prompt.Option) ([]string, error) {
	return nil, prompt.ErrCancelled
}
func (o *optionInspector) Confirm(_ string, def bool) (bool, error) { return def, nil }
func (o *optionInspector) Input(_, def string) (string, error)      { return def, nil }

func TestResolve_CancelDuringPromptAborts(t *testing.T) {
	src, dst := pair(t, "repo\n", "local\n")
	r := New(&scriptedPrompter{cancel: true})

	got, err := r.Resolve(Request{Name: "foo", SourcePath: src, DestPath: dst, Direction: DirectionInstall, Policy: model.PolicyPrompt})
	util.AssertNoError(t, err)
	util.AssertEqual(t, got.Action, ActionAbort)
}

func TestResolve_CollectExtras(t *testing.T) {
	newReq := func(src, dst string) Request {
		return Request{Name: "local-only", SourcePath: src, DestPath: dst, Direction: DirectionCollect, Extra: true}
	}

	t.Run("skipped without opt-in regardless of policy", func(t *testing.T) {
		for _, policy := range []model.ConflictPolicy{model.PolicyRepoWins, model.PolicyLocalWins} {
			src, dst := pair(t, "local\n", "")
			r := New(&scriptedPrompter{})
			req := newReq(src, dst)
			req.Policy = policy

			got, err := r.Resolve(req)
			util.AssertNoError(t, err)
			util.AssertEqual(t, got, Decision{ActionSkip, ReasonExtra})
		}
	})

	t.Run("imported with import-extras", func(t *testing.T) {
		src, dst := pair(t, "local\n", "")
		r := New(&scriptedPrompter{})
		req := newReq(src, dst)
		req.Policy = model.PolicyLocalWins
		req.ImportExtras = true

		got, err := r.Resolve(req)
		util.AssertNoError(t, err)
		util.AssertEqual(t, got, Decision{ActionProceed, ReasonExtra})
	})

	t.Run("force imports without prompting even under prompt policy", func(t *testing.T) {
		src, dst := pair(t, "local\n", "")
		p := &scriptedPrompter{}
		r := New(p)
		req := newReq(src, dst)
		req.Policy = model.PolicyPrompt
		req.Force = true

		got, err := r.Resolve(req)
		util.AssertNoError(t, err)
		util.AssertEqual(t, got, Decision{ActionProceed, ReasonExtra})
		if p.confirmCalls != 0 {
			t.Error("force must not prompt for extras")
		}
	})

	t.Run("prompt policy asks", func(t *testing.T) {
		src, dst := pair(t, "local\n", "")
		r := New(&scriptedPrompter{confirms: []bool{true}})
		req := newReq(src, dst)
		req.Policy = model.PolicyPrompt

		got, err := r.Resolve(req)
		util.AssertNoError(t, err)
		util.AssertEqual(t, got, Decision{ActionProceed, ReasonPrompt})

		src, dst = pair(t, "local\n", "")
		r = New(&scriptedPrompter{confirms: []bool{false}})
		req = newReq(src, dst)
		req.Policy = model.PolicyPrompt

		got, err = r.Resolve(req)
		util.AssertNoError(t, err)
		util.AssertEqual(t, got, Decision{ActionSkip, ReasonPrompt})
	})

	t.Run("cancel during extra prompt aborts", func(t *testing.T) {
		src, dst := pair(t, "local\n", "")
		r := New(&scriptedPrompter{cancel: true})
		req := newReq(src, dst)
		req.Policy = model.PolicyPrompt

		got, err := r.Resolve(req)
		util.AssertNoError(t, err)
		util.AssertEqual(t, got.Action, ActionAbort)
	})
}
