package model

import "fmt"

// ConflictPolicy governs the default resolution when the repo and local
// copies of an entry have diverged.
type ConflictPolicy string

const (
	// PolicyPrompt escalates each conflict to an interactive choice.
	PolicyPrompt ConflictPolicy = "prompt"

	// PolicyRepoWins resolves conflicts in favor of the hub repo.
	PolicyRepoWins ConflictPolicy = "repo-wins"

	// PolicyLocalWins resolves conflicts in favor of the local copy.
	PolicyLocalWins ConflictPolicy = "local-wins"
)

// AllConflictPolicies returns every supported conflict policy.
func AllConflictPolicies() []ConflictPolicy {
	return []ConflictPolicy{PolicyPrompt, PolicyRepoWins, PolicyLocalWins}
}

// ParseConflictPolicy converts a string into a ConflictPolicy.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	p := ConflictPolicy(s)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown conflict policy %q (valid: prompt, repo-wins, local-wins)", s)
	}
	return p, nil
}

// IsValid reports whether the policy is a known value.
func (p ConflictPolicy) IsValid() bool {
	switch p {
	case PolicyPrompt, PolicyRepoWins, PolicyLocalWins:
		return true
	}
	return false
}

// String returns the string representation of the policy.
func (p ConflictPolicy) String() string {
	return string(p)
}

// Description returns a human-readable description for help output.
func (p ConflictPolicy) Description() string {
	switch p {
	case PolicyPrompt:
		return "Ask interactively for each conflicting entry"
	case PolicyRepoWins:
		return "The hub repo copy replaces diverged local copies"
	case PolicyLocalWins:
		return "Diverged local copies are kept untouched"
	default:
		return "Unknown policy"
	}
}

// InstallMode controls how the materializer installs entries from the
// hub repo into an agent's local directory.
type InstallMode string

const (
	// ModeSymlink installs entries as symbolic links into the hub repo.
	ModeSymlink InstallMode = "symlink"

	// ModeCopy installs entries as full copies.
	ModeCopy InstallMode = "copy"
)

// ParseInstallMode converts a string into an InstallMode.
func ParseInstallMode(s string) (InstallMode, error) {
	m := InstallMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown install mode %q (valid: symlink, copy)", s)
	}
	return m, nil
}

// IsValid reports whether the mode is a known value.
func (m InstallMode) IsValid() bool {
	return m == ModeSymlink || m == ModeCopy
}

// String returns the string representation of the mode.
func (m InstallMode) String() string {
	return string(m)
}

// SymlinkFallback controls behavior when symlink creation fails, for
// example on platforms that restrict symlink privileges.
type SymlinkFallback string

const (
	// FallbackCopy silently falls back to copying the entry.
	FallbackCopy SymlinkFallback = "copy"

	// FallbackError surfaces the symlink failure as fatal.
	FallbackError SymlinkFallback = "error"

	// FallbackPrompt asks the user whether to copy instead or abort.
	FallbackPrompt SymlinkFallback = "prompt"
)

// ParseSymlinkFallback converts a string into a SymlinkFallback.
func ParseSymlinkFallback(s string) (SymlinkFallback, error) {
	f := SymlinkFallback(s)
	if !f.IsValid() {
		return "", fmt.Errorf("unknown symlink fallback %q (valid: copy, error, prompt)", s)
	}
	return f, nil
}

// IsValid reports whether the fallback is a known value.
func (f SymlinkFallback) IsValid() bool {
	switch f {
	case FallbackCopy, FallbackError, FallbackPrompt:
		return true
	}
	return false
}

// String returns the string representation of the fallback.
func (f SymlinkFallback) String() string {
	return string(f)
}
