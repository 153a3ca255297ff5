// Package model defines the core domain types shared across hubsync:
// artifact types, agents, and the policy enumerations that govern
// reconciliation behavior.
package model

import "fmt"

// ArtifactType identifies a category of artifacts managed by the hub.
// Each type maps to one subdirectory of the hub repo and one install
// root per agent.
type ArtifactType string

const (
	// ArtifactSkills are skill directories (typically name/SKILL.md plus
	// supporting files).
	ArtifactSkills ArtifactType = "skills"

	// ArtifactCommands are command definitions (single files or small
	// directories).
	ArtifactCommands ArtifactType = "commands"
)

// AllArtifactTypes returns every supported artifact type.
func AllArtifactTypes() []ArtifactType {
	return []ArtifactType{ArtifactSkills, ArtifactCommands}
}

// ParseArtifactType converts a string into an ArtifactType.
func ParseArtifactType(s string) (ArtifactType, error) {
	t := ArtifactType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown artifact type %q (valid: skills, commands)", s)
	}
	return t, nil
}

// IsValid reports whether the artifact type is a known value.
func (t ArtifactType) IsValid() bool {
	switch t {
	case ArtifactSkills, ArtifactCommands:
		return true
	}
	return false
}

// String returns the string representation of the artifact type.
func (t ArtifactType) String() string {
	return string(t)
}
